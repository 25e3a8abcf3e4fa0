package repositories

import (
	"context"
	"time"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// DebtFilter narrows bulk debt retrieval. Zero values mean "no constraint".
type DebtFilter struct {
	Status       domain.DebtStatus
	IsReceivable *bool
}

// DebtReader defines read operations for debt data.
type DebtReader interface {
	// FindDebtByID retrieves a debt including its payment history; missing
	// ids return apperrors.ErrNotFound.
	FindDebtByID(ctx context.Context, debtID string) (*domain.Debt, error)

	// ListDebts retrieves debts matching the filter, earliest due date first.
	ListDebts(ctx context.Context, filter DebtFilter) ([]domain.Debt, error)
}

// DebtWriter defines write operations for debt data.
type DebtWriter interface {
	// SaveDebt persists a new debt.
	SaveDebt(ctx context.Context, debt domain.Debt) error

	// UpdateDebt updates an existing debt including its payment history.
	UpdateDebt(ctx context.Context, debt domain.Debt) error

	// DeleteDebt removes a debt and its payment history. Returns false when
	// the id does not exist.
	DeleteDebt(ctx context.Context, debtID string) (bool, error)

	// SavePayment persists a debt mutated by a payment together with the
	// pending transaction it emitted, atomically. txn may be nil when the
	// debt has no linked account. The debt write is guarded on readAt, the
	// last_updated_at value the caller read; apperrors.ErrConflict reports a
	// concurrent change and the caller re-reads and retries, so overlapping
	// payments never drop a history entry.
	SavePayment(ctx context.Context, debt domain.Debt, readAt time.Time, txn *domain.Transaction) error

	// MarkOverdue flips every pending debt with a due date before today to
	// overdue and returns the number of rows updated. Idempotent.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

// DebtRepository combines all debt-related repository operations.
type DebtRepository interface {
	DebtReader
	DebtWriter
}
