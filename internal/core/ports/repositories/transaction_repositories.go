package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// BalanceChange pairs an account's new state with the balance the caller read
// before computing it. Writers use the observed value as a guard so a stale
// computation never overwrites a concurrent one.
type BalanceChange struct {
	Account  domain.Account
	Observed decimal.Decimal
}

// TransactionFilter narrows bulk transaction retrieval. Zero values mean "no
// constraint"; DateFrom/DateTo are inclusive day bounds.
type TransactionFilter struct {
	Status          domain.TransactionStatus
	AccountID       string // matches either side of the movement
	TransactionType domain.TransactionType
	DateFrom        *time.Time
	DateTo          *time.Time
}

// TransactionReader defines read operations for transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction; missing ids return
	// apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves transactions matching the filter, newest
	// first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transaction data.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction updates an existing transaction.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes a transaction at any status. Returns false
	// when the id does not exist. Deleting a completed transaction does NOT
	// reverse its balance effect: balances are stored running values.
	DeleteTransaction(ctx context.Context, transactionID string) (bool, error)

	// MarkExecuted commits an executed transaction and the resulting account
	// balances in one atomic write. The status flip is conditional on the row
	// still being pending, so a concurrent double-execute applies the balance
	// effect exactly once; apperrors.ErrValidation reports the lost race.
	// Each balance write is guarded on the balance the caller observed;
	// apperrors.ErrConflict rolls the whole write back when an account moved
	// underneath, and the caller re-reads and retries.
	MarkExecuted(ctx context.Context, txn domain.Transaction, changes []BalanceChange) error
}

// TransactionRepository combines all transaction-related repository
// operations.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
