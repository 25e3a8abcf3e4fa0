package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

type DebtService struct {
	DebtRepository portsrepo.DebtRepository
}

func NewDebtService(repo portsrepo.DebtRepository) *DebtService {
	return &DebtService{DebtRepository: repo}
}

// CreateDebt creates a new debt in pending state.
func (s *DebtService) CreateDebt(ctx context.Context, req dto.CreateDebtRequest) (*domain.Debt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: debt amount must be positive", apperrors.ErrValidation)
	}
	dueDate, err := time.ParseInLocation(domain.DateFormat, req.DueDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due date %q", apperrors.ErrValidation, req.DueDate)
	}

	curr := req.Currency
	if curr == "" {
		curr = DefaultCurrency
	}

	now := time.Now().UTC()
	debt := domain.Debt{
		DebtID:          uuid.NewString(),
		Description:     req.Description,
		Amount:          req.Amount,
		DueDate:         dueDate,
		IsReceivable:    req.IsReceivable,
		LinkedAccountID: req.LinkedAccountID,
		Status:          domain.DebtPending,
		Currency:        curr,
		PaymentHistory:  []domain.PaymentRecord{},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.DebtRepository.SaveDebt(ctx, debt); err != nil {
		logger.Error("Failed to save debt in repository", slog.String("error", err.Error()), slog.String("debt_id", debt.DebtID))
		return nil, err
	}

	logger.Info("Debt created", slog.String("debt_id", debt.DebtID))
	return &debt, nil
}

// GetDebtByID retrieves a single debt.
func (s *DebtService) GetDebtByID(ctx context.Context, debtID string) (*domain.Debt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	debt, err := s.DebtRepository.FindDebtByID(ctx, debtID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find debt by ID in repository", slog.String("error", err.Error()), slog.String("debt_id", debtID))
		}
		return nil, err
	}
	return debt, nil
}

// ListDebts retrieves debts matching the filter.
func (s *DebtService) ListDebts(ctx context.Context, filter portsrepo.DebtFilter) ([]domain.Debt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	debts, err := s.DebtRepository.ListDebts(ctx, filter)
	if err != nil {
		logger.Error("Failed to list debts from repository", slog.String("error", err.Error()))
		return nil, err
	}
	return debts, nil
}

// UpdateDebt applies a partial update. The total amount and payment history
// only change through payment operations.
func (s *DebtService) UpdateDebt(ctx context.Context, debtID string, req dto.UpdateDebtRequest) (*domain.Debt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	debt, err := s.DebtRepository.FindDebtByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		debt.Description = *req.Description
	}
	if req.DueDate != nil {
		dueDate, err := time.ParseInLocation(domain.DateFormat, *req.DueDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid due date %q", apperrors.ErrValidation, *req.DueDate)
		}
		debt.DueDate = dueDate
	}
	if req.LinkedAccountID != nil {
		debt.LinkedAccountID = *req.LinkedAccountID
	}
	debt.LastUpdatedAt = time.Now().UTC()

	if err := s.DebtRepository.UpdateDebt(ctx, *debt); err != nil {
		logger.Error("Failed to update debt in repository", slog.String("error", err.Error()), slog.String("debt_id", debtID))
		return nil, err
	}
	return debt, nil
}

// DeleteDebt removes a debt; its payment history goes with it.
func (s *DebtService) DeleteDebt(ctx context.Context, debtID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	deleted, err := s.DebtRepository.DeleteDebt(ctx, debtID)
	if err != nil {
		logger.Error("Failed to delete debt in repository", slog.String("error", err.Error()), slog.String("debt_id", debtID))
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	logger.Info("Debt deleted", slog.String("debt_id", debtID))
	return nil
}

// MakePartialPayment records a payment against a debt and persists the
// pending transaction the payment emits against the linked account. The
// transaction still needs explicit execution to move money. The write is
// guarded on the debt state read here; a concurrent payment re-runs the
// read so the remaining amount is re-validated and no history entry drops.
func (s *DebtService) MakePartialPayment(ctx context.Context, debtID string, amount decimal.Decimal, date time.Time, notes string) (*domain.Debt, *domain.Transaction, error) {
	var (
		debt *domain.Debt
		txn  *domain.Transaction
	)
	err := retryOnConflict(conflictRetryLimit, func() error {
		var err error
		debt, txn, err = s.payOnce(ctx, debtID, amount, date, notes)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return debt, txn, nil
}

func (s *DebtService) payOnce(ctx context.Context, debtID string, amount decimal.Decimal, date time.Time, notes string) (*domain.Debt, *domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	debt, err := s.DebtRepository.FindDebtByID(ctx, debtID)
	if err != nil {
		return nil, nil, err
	}
	readAt := debt.LastUpdatedAt

	txn, err := debt.ApplyPayment(amount, date, notes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	now := time.Now().UTC()
	debt.LastUpdatedAt = now
	if txn != nil {
		txn.TransactionID = uuid.NewString()
		txn.CreatedAt = now
		txn.LastUpdatedAt = now
	}

	if err := s.DebtRepository.SavePayment(ctx, *debt, readAt, txn); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to save debt payment", slog.String("error", err.Error()), slog.String("debt_id", debtID))
		}
		return nil, nil, err
	}

	logger.Info("Debt payment recorded",
		slog.String("debt_id", debtID),
		slog.String("amount", amount.String()),
		slog.String("status", string(debt.Status)),
	)
	return debt, txn, nil
}

// MarkDebtPaid settles the remaining balance in one shot. Already-paid debts
// are a no-op.
func (s *DebtService) MarkDebtPaid(ctx context.Context, debtID string, date time.Time) (*domain.Debt, *domain.Transaction, error) {
	var (
		debt *domain.Debt
		txn  *domain.Transaction
	)
	err := retryOnConflict(conflictRetryLimit, func() error {
		var err error
		debt, txn, err = s.markPaidOnce(ctx, debtID, date)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return debt, txn, nil
}

func (s *DebtService) markPaidOnce(ctx context.Context, debtID string, date time.Time) (*domain.Debt, *domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	debt, err := s.DebtRepository.FindDebtByID(ctx, debtID)
	if err != nil {
		return nil, nil, err
	}
	readAt := debt.LastUpdatedAt

	wasPaid := debt.Status == domain.DebtPaid
	txn, err := debt.MarkPaid(date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if wasPaid {
		return debt, nil, nil
	}

	now := time.Now().UTC()
	debt.LastUpdatedAt = now
	if txn != nil {
		txn.TransactionID = uuid.NewString()
		txn.CreatedAt = now
		txn.LastUpdatedAt = now
	}

	if err := s.DebtRepository.SavePayment(ctx, *debt, readAt, txn); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to save debt settlement", slog.String("error", err.Error()), slog.String("debt_id", debtID))
		}
		return nil, nil, err
	}

	logger.Info("Debt marked paid", slog.String("debt_id", debtID))
	return debt, txn, nil
}

// SweepOverdue flips pending debts past their due date to overdue and
// returns the number flipped. Safe to call on every dashboard read.
func (s *DebtService) SweepOverdue(ctx context.Context, today time.Time) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	count, err := s.DebtRepository.MarkOverdue(ctx, today)
	if err != nil {
		logger.Error("Failed to sweep overdue debts", slog.String("error", err.Error()))
		return 0, err
	}
	if count > 0 {
		logger.Info("Debts marked overdue", slog.Int64("count", count))
	}
	return count, nil
}
