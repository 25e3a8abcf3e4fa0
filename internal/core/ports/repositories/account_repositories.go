package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	// Missing ids return apperrors.ErrNotFound.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids
	// are simply absent from the map; the caller decides whether that matters.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details and balance.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account. Returns false when the id does not
	// exist. Transactions referencing the account are left in place; readers
	// must tolerate dangling references.
	DeleteAccount(ctx context.Context, accountID string) (bool, error)

	// SaveReconciliation persists a reconciled account together with the
	// adjustment transaction recording the delta, atomically. The balance
	// write is guarded on observed, the balance the caller read before
	// reconciling; apperrors.ErrConflict reports a concurrent change and the
	// caller re-reads and retries.
	SaveReconciliation(ctx context.Context, account domain.Account, observed decimal.Decimal, adjustment domain.Transaction) error
}

// AccountRepository combines all account-related repository operations.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
