package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/models"
)

type PgxDebtRepository struct {
	store *Store
}

var _ portsrepo.DebtRepository = (*PgxDebtRepository)(nil)

// NewPgxDebtRepository creates a new repository for debt data.
func NewPgxDebtRepository(store *Store) *PgxDebtRepository {
	return &PgxDebtRepository{store: store}
}

const debtColumns = `debt_id, description, amount, due_date, is_receivable, linked_account_id, status, currency, payment_history, created_at, last_updated_at`

func toDebtModel(d domain.Debt) models.Debt {
	history := make([]models.PaymentRecord, 0, len(d.PaymentHistory))
	for _, p := range d.PaymentHistory {
		history = append(history, models.PaymentRecord{
			Date:   p.Date.Format(domain.DateFormat),
			Amount: p.Amount,
			Notes:  p.Notes,
		})
	}
	return models.Debt{
		DebtID:          d.DebtID,
		Description:     d.Description,
		Amount:          d.Amount,
		DueDate:         d.DueDate,
		IsReceivable:    d.IsReceivable,
		LinkedAccountID: d.LinkedAccountID,
		Status:          string(d.Status),
		Currency:        d.Currency,
		PaymentHistory:  history,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			LastUpdatedAt: d.LastUpdatedAt,
		},
	}
}

func toDebtDomain(m models.Debt) (domain.Debt, error) {
	history := make([]domain.PaymentRecord, 0, len(m.PaymentHistory))
	for _, p := range m.PaymentHistory {
		date, err := time.ParseInLocation(domain.DateFormat, p.Date, time.UTC)
		if err != nil {
			return domain.Debt{}, fmt.Errorf("invalid payment date %q on debt %s: %w", p.Date, m.DebtID, err)
		}
		history = append(history, domain.PaymentRecord{
			Date:   date,
			Amount: p.Amount,
			Notes:  p.Notes,
		})
	}
	return domain.Debt{
		DebtID:          m.DebtID,
		Description:     m.Description,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		IsReceivable:    m.IsReceivable,
		LinkedAccountID: m.LinkedAccountID,
		Status:          domain.DebtStatus(m.Status),
		Currency:        m.Currency,
		PaymentHistory:  history,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}, nil
}

func marshalHistory(history []models.PaymentRecord) ([]byte, error) {
	if history == nil {
		history = []models.PaymentRecord{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment history: %w", err)
	}
	return raw, nil
}

func scanDebt(row pgx.Row) (models.Debt, error) {
	var m models.Debt
	var linkedID *string
	var rawHistory []byte
	err := row.Scan(
		&m.DebtID,
		&m.Description,
		&m.Amount,
		&m.DueDate,
		&m.IsReceivable,
		&linkedID,
		&m.Status,
		&m.Currency,
		&rawHistory,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return m, err
	}
	if linkedID != nil {
		m.LinkedAccountID = *linkedID
	}
	if len(rawHistory) > 0 {
		if err := json.Unmarshal(rawHistory, &m.PaymentHistory); err != nil {
			return m, fmt.Errorf("failed to unmarshal payment history for debt %s: %w", m.DebtID, err)
		}
	}
	return m, nil
}

// SaveDebt inserts a new debt.
func (r *PgxDebtRepository) SaveDebt(ctx context.Context, debt domain.Debt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toDebtModel(debt)
	raw, err := marshalHistory(m.PaymentHistory)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = r.store.pool.Exec(ctx, query,
		m.DebtID,
		m.Description,
		m.Amount,
		m.DueDate,
		m.IsReceivable,
		nullable(m.LinkedAccountID),
		m.Status,
		m.Currency,
		raw,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: debt %s already exists", apperrors.ErrDuplicate, m.DebtID)
		}
		return fmt.Errorf("failed to save debt %s: %w", m.DebtID, err)
	}
	return nil
}

// FindDebtByID retrieves a debt including its payment history.
func (r *PgxDebtRepository) FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + debtColumns + ` FROM debts WHERE debt_id = $1;`
	m, err := scanDebt(r.store.pool.QueryRow(ctx, query, debtID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find debt by ID %s: %w", debtID, err)
	}
	debt, err := toDebtDomain(m)
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

// ListDebts retrieves debts matching the filter, earliest due date first.
func (r *PgxDebtRepository) ListDebts(ctx context.Context, filter portsrepo.DebtFilter) ([]domain.Debt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return listDebts(ctx, r.store, filter)
}

func listDebts(ctx context.Context, store *Store, filter portsrepo.DebtFilter) ([]domain.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}
	if filter.IsReceivable != nil {
		query += fmt.Sprintf(" AND is_receivable = $%d", idx)
		args = append(args, *filter.IsReceivable)
		idx++
	}
	query += ` ORDER BY due_date;`

	rows, err := store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		m, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt row: %w", err)
		}
		debt, err := toDebtDomain(m)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating debt rows: %w", err)
	}
	return debts, nil
}

// UpdateDebt updates an existing debt including its payment history.
func (r *PgxDebtRepository) UpdateDebt(ctx context.Context, debt domain.Debt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.updateDebt(ctx, r.store.pool, debt, nil)
}

// updateDebt writes the full debt row through any pgx executor (pool or tx).
// With a non-nil readAt the UPDATE is conditional on last_updated_at still
// holding that value, and a lost race reports apperrors.ErrConflict.
func (r *PgxDebtRepository) updateDebt(ctx context.Context, exec interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}, debt domain.Debt, readAt *time.Time) error {
	m := toDebtModel(debt)
	raw, err := marshalHistory(m.PaymentHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE debts
		SET description = $2, amount = $3, due_date = $4, is_receivable = $5, linked_account_id = $6, status = $7, currency = $8, payment_history = $9, last_updated_at = $10
		WHERE debt_id = $1`
	args := []any{
		m.DebtID,
		m.Description,
		m.Amount,
		m.DueDate,
		m.IsReceivable,
		nullable(m.LinkedAccountID),
		m.Status,
		m.Currency,
		raw,
		m.LastUpdatedAt,
	}
	if readAt != nil {
		query += ` AND last_updated_at = $11`
		args = append(args, *readAt)
	}
	query += `;`

	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update debt %s: %w", m.DebtID, err)
	}
	if tag.RowsAffected() == 0 {
		if readAt != nil {
			return fmt.Errorf("%w: debt %s changed since it was read", apperrors.ErrConflict, m.DebtID)
		}
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDebt removes a debt and its embedded payment history.
func (r *PgxDebtRepository) DeleteDebt(ctx context.Context, debtID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM debts WHERE debt_id = $1;`, debtID)
	if err != nil {
		return false, fmt.Errorf("failed to delete debt %s: %w", debtID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SavePayment persists the mutated debt and the pending transaction it
// emitted in one database transaction. txn is nil when the debt has no
// linked account; then only the debt row is written. The debt write is
// guarded on the last_updated_at value the caller read, so two overlapping
// payments validated against the same remaining amount cannot both land.
func (r *PgxDebtRepository) SavePayment(ctx context.Context, debt domain.Debt, readAt time.Time, txn *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.withTx(ctx, func(tx pgx.Tx) error {
		if err := r.updateDebt(ctx, tx, debt, &readAt); err != nil {
			return err
		}
		if txn != nil {
			if err := insertTransactionTx(ctx, tx, *txn); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkOverdue flips pending debts past their due date to overdue. Partial
// debts keep their status; the paid fraction already tells the story.
func (r *PgxDebtRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, err := r.store.pool.Exec(ctx,
		`UPDATE debts SET status = $1, last_updated_at = $2 WHERE status = $3 AND due_date < $4;`,
		string(domain.DebtOverdue), time.Now().UTC(), string(domain.DebtPending), domain.Day(today),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue debts: %w", err)
	}
	return tag.RowsAffected(), nil
}
