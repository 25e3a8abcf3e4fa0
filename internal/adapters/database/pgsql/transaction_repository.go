package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/models"
)

type PgxTransactionRepository struct {
	store *Store
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

// NewPgxTransactionRepository creates a new repository for transaction data.
func NewPgxTransactionRepository(store *Store) *PgxTransactionRepository {
	return &PgxTransactionRepository{store: store}
}

const transactionColumns = `transaction_id, date, amount, description, transaction_type, from_account_id, to_account_id, status, category, currency, created_at, last_updated_at`

func toTransactionModel(t domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   t.TransactionID,
		Date:            t.Date,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionType: string(t.TransactionType),
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Status:          string(t.Status),
		Category:        t.Category,
		Currency:        t.Currency,
		AuditFields: models.AuditFields{
			CreatedAt:     t.CreatedAt,
			LastUpdatedAt: t.LastUpdatedAt,
		},
	}
}

func toTransactionDomain(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		Date:            m.Date,
		Amount:          m.Amount,
		Description:     m.Description,
		TransactionType: domain.TransactionType(m.TransactionType),
		FromAccountID:   m.FromAccountID,
		ToAccountID:     m.ToAccountID,
		Status:          domain.TransactionStatus(m.Status),
		Category:        m.Category,
		Currency:        m.Currency,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

// nullable converts an empty-string account reference to a SQL NULL.
func nullable(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var fromID, toID sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.Date,
		&m.Amount,
		&m.Description,
		&m.TransactionType,
		&fromID,
		&toID,
		&m.Status,
		&m.Category,
		&m.Currency,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	m.FromAccountID = fromID.String
	m.ToAccountID = toID.String
	return m, err
}

// insertTransactionTx inserts a transaction row inside an existing database
// transaction. Shared with the account and debt repositories for their
// combined writes.
func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	m := toTransactionModel(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.Date,
		m.Amount,
		m.Description,
		m.TransactionType,
		nullable(m.FromAccountID),
		nullable(m.ToAccountID),
		m.Status,
		m.Category,
		m.Currency,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// SaveTransaction persists a new transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.withTx(ctx, func(tx pgx.Tx) error {
		return insertTransactionTx(ctx, tx, txn)
	})
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.store.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	txn := toTransactionDomain(m)
	return &txn, nil
}

// ListTransactions retrieves transactions matching the filter, newest first.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	idx := 1
	addArg := func(clause string, value any) {
		query += fmt.Sprintf(" AND "+clause, idx)
		args = append(args, value)
		idx++
	}

	if filter.Status != "" {
		addArg("status = $%d", string(filter.Status))
	}
	if filter.TransactionType != "" {
		addArg("transaction_type = $%d", string(filter.TransactionType))
	}
	if filter.AccountID != "" {
		query += fmt.Sprintf(" AND (from_account_id = $%d OR to_account_id = $%d)", idx, idx)
		args = append(args, filter.AccountID)
		idx++
	}
	if filter.DateFrom != nil {
		addArg("date >= $%d", domain.Day(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		// inclusive day bound
		addArg("date < $%d", domain.Day(*filter.DateTo).AddDate(0, 0, 1))
	}
	query += ` ORDER BY date DESC, created_at DESC;`

	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toTransactionDomain(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating transaction rows: %w", err)
	}
	return txns, nil
}

// UpdateTransaction updates an existing transaction.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toTransactionModel(txn)
	query := `
		UPDATE transactions
		SET date = $2, amount = $3, description = $4, transaction_type = $5, from_account_id = $6, to_account_id = $7, status = $8, category = $9, currency = $10, last_updated_at = $11
		WHERE transaction_id = $1;
	`
	tag, err := r.store.pool.Exec(ctx, query,
		m.TransactionID,
		m.Date,
		m.Amount,
		m.Description,
		m.TransactionType,
		nullable(m.FromAccountID),
		nullable(m.ToAccountID),
		m.Status,
		m.Category,
		m.Currency,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction regardless of status. Balances are
// never rewound; a completed transaction's effect stays in the accounts.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkExecuted flips the transaction to completed and writes the new account
// balances, all inside one database transaction. The status UPDATE is
// conditional on the row still being pending so the balance write happens at
// most once; each balance UPDATE is conditional on the balance the caller
// observed so a stale computation never clobbers a concurrent execute.
func (r *PgxTransactionRepository) MarkExecuted(ctx context.Context, txn domain.Transaction, changes []portsrepo.BalanceChange) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE transactions SET status = $2, last_updated_at = $3 WHERE transaction_id = $1 AND status = $4;`,
			txn.TransactionID, string(domain.StatusCompleted), txn.LastUpdatedAt, string(domain.StatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to complete transaction %s: %w", txn.TransactionID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrValidation, txn.TransactionID)
		}

		for _, ch := range changes {
			acc := ch.Account
			tag, err := tx.Exec(ctx,
				`UPDATE accounts SET balance = $2, last_updated_at = $3 WHERE account_id = $1 AND balance = $4;`,
				acc.AccountID, acc.Balance, acc.LastUpdatedAt, ch.Observed,
			)
			if err != nil {
				return fmt.Errorf("failed to update balance for account %s: %w", acc.AccountID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: account %s moved while executing transaction %s", apperrors.ErrConflict, acc.AccountID, txn.TransactionID)
			}
		}
		return nil
	})
}
