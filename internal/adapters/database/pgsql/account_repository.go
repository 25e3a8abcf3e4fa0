package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/models"
)

type PgxAccountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

// NewPgxAccountRepository creates a new repository for account data.
func NewPgxAccountRepository(store *Store) *PgxAccountRepository {
	return &PgxAccountRepository{store: store}
}

const accountColumns = `account_id, name, account_type, currency, balance, credit_limit, is_savings, created_at, last_updated_at`

func toAccountModel(a domain.Account) models.Account {
	return models.Account{
		AccountID:   a.AccountID,
		Name:        a.Name,
		AccountType: models.AccountType(a.AccountType),
		Currency:    a.Currency,
		Balance:     a.Balance,
		CreditLimit: a.CreditLimit,
		IsSavings:   a.IsSavings,
		AuditFields: models.AuditFields{
			CreatedAt:     a.CreatedAt,
			LastUpdatedAt: a.LastUpdatedAt,
		},
	}
}

func toAccountDomain(m models.Account) domain.Account {
	return domain.Account{
		AccountID:   m.AccountID,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
		Currency:    m.Currency,
		Balance:     m.Balance,
		CreditLimit: m.CreditLimit,
		IsSavings:   m.IsSavings,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.AccountType,
		&m.Currency,
		&m.Balance,
		&m.CreditLimit,
		&m.IsSavings,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toAccountModel(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.store.pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.AccountType,
		m.Currency,
		m.Balance,
		m.CreditLimit,
		m.IsSavings,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.store.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := toAccountDomain(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing ids are
// absent from the result rather than an error.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.store.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result[m.AccountID] = toAccountDomain(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating account rows: %w", err)
	}
	return result, nil
}

// ListAccounts retrieves all accounts ordered by creation time.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return listAccounts(ctx, r.store)
}

func listAccounts(ctx context.Context, store *Store) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at;`
	rows, err := store.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, toAccountDomain(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount updates an existing account's details and balance.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toAccountModel(account)
	query := `
		UPDATE accounts
		SET name = $2, account_type = $3, currency = $4, balance = $5, credit_limit = $6, is_savings = $7, last_updated_at = $8
		WHERE account_id = $1;
	`
	tag, err := r.store.pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.AccountType,
		m.Currency,
		m.Balance,
		m.CreditLimit,
		m.IsSavings,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAccount removes an account. Transactions referencing it remain and
// carry dangling account ids readers must tolerate.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaveReconciliation persists the reconciled balance and the adjustment
// transaction recording the delta in one database transaction. The balance
// UPDATE is conditional on the value the caller observed, so a reconciliation
// computed off a stale read never lands.
func (r *PgxAccountRepository) SaveReconciliation(ctx context.Context, account domain.Account, observed decimal.Decimal, adjustment domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toAccountModel(account)
	return r.store.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET balance = $2, last_updated_at = $3 WHERE account_id = $1 AND balance = $4;`,
			m.AccountID, m.Balance, m.LastUpdatedAt, observed,
		)
		if err != nil {
			return fmt.Errorf("failed to update reconciled balance for account %s: %w", m.AccountID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s moved during reconciliation", apperrors.ErrConflict, m.AccountID)
		}
		if err := insertTransactionTx(ctx, tx, adjustment); err != nil {
			return err
		}
		return nil
	})
}
