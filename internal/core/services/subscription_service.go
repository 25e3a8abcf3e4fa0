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

type SubscriptionService struct {
	SubscriptionRepository portsrepo.SubscriptionRepository
}

func NewSubscriptionService(repo portsrepo.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{SubscriptionRepository: repo}
}

// CreateSubscription creates a new subscription in active state.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: subscription amount must be positive", apperrors.ErrValidation)
	}
	nextDate, err := time.ParseInLocation(domain.DateFormat, req.NextPaymentDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid next payment date %q", apperrors.ErrValidation, req.NextPaymentDate)
	}

	curr := req.Currency
	if curr == "" {
		curr = DefaultCurrency
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		SubscriptionID:  uuid.NewString(),
		Name:            req.Name,
		Amount:          req.Amount,
		Frequency:       domain.Frequency(req.Frequency),
		NextPaymentDate: nextDate,
		LinkedAccountID: req.LinkedAccountID,
		Status:          domain.SubscriptionActive,
		Currency:        curr,
		Category:        req.Category,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.SubscriptionRepository.SaveSubscription(ctx, sub); err != nil {
		logger.Error("Failed to save subscription in repository", slog.String("error", err.Error()), slog.String("subscription_id", sub.SubscriptionID))
		return nil, err
	}

	logger.Info("Subscription created", slog.String("subscription_id", sub.SubscriptionID))
	return &sub, nil
}

// GetSubscriptionByID retrieves a single subscription.
func (s *SubscriptionService) GetSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	sub, err := s.SubscriptionRepository.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find subscription by ID in repository", slog.String("error", err.Error()), slog.String("subscription_id", subscriptionID))
		}
		return nil, err
	}
	return sub, nil
}

// ListSubscriptions retrieves subscriptions, optionally filtered by status.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, status domain.SubscriptionStatus) ([]domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	subs, err := s.SubscriptionRepository.ListSubscriptions(ctx, status)
	if err != nil {
		logger.Error("Failed to list subscriptions from repository", slog.String("error", err.Error()))
		return nil, err
	}
	return subs, nil
}

// UpdateSubscription applies a partial update.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, subscriptionID string, req dto.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sub, err := s.SubscriptionRepository.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: subscription amount must be positive", apperrors.ErrValidation)
		}
		sub.Amount = *req.Amount
	}
	if req.Frequency != nil {
		sub.Frequency = domain.Frequency(*req.Frequency)
	}
	if req.NextPaymentDate != nil {
		nextDate, err := time.ParseInLocation(domain.DateFormat, *req.NextPaymentDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid next payment date %q", apperrors.ErrValidation, *req.NextPaymentDate)
		}
		sub.NextPaymentDate = nextDate
	}
	if req.LinkedAccountID != nil {
		sub.LinkedAccountID = *req.LinkedAccountID
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	sub.LastUpdatedAt = time.Now().UTC()

	if err := s.SubscriptionRepository.UpdateSubscription(ctx, *sub); err != nil {
		logger.Error("Failed to update subscription in repository", slog.String("error", err.Error()), slog.String("subscription_id", subscriptionID))
		return nil, err
	}
	return sub, nil
}

// DeleteSubscription removes a subscription.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	deleted, err := s.SubscriptionRepository.DeleteSubscription(ctx, subscriptionID)
	if err != nil {
		logger.Error("Failed to delete subscription in repository", slog.String("error", err.Error()), slog.String("subscription_id", subscriptionID))
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	logger.Info("Subscription deleted", slog.String("subscription_id", subscriptionID))
	return nil
}

// PauseSubscription suspends billing. Only active subscriptions pause.
func (s *SubscriptionService) PauseSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	return s.transition(ctx, subscriptionID, domain.SubscriptionActive, domain.SubscriptionPaused)
}

// ResumeSubscription reactivates a paused subscription. Canceled
// subscriptions stay canceled.
func (s *SubscriptionService) ResumeSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	return s.transition(ctx, subscriptionID, domain.SubscriptionPaused, domain.SubscriptionActive)
}

// CancelSubscription terminates a subscription. Cancellation is terminal and
// allowed from any non-canceled state.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sub, err := s.SubscriptionRepository.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == domain.SubscriptionCanceled {
		return sub, nil
	}
	sub.Status = domain.SubscriptionCanceled
	sub.LastUpdatedAt = time.Now().UTC()

	if err := s.SubscriptionRepository.UpdateSubscription(ctx, *sub); err != nil {
		logger.Error("Failed to cancel subscription", slog.String("error", err.Error()), slog.String("subscription_id", subscriptionID))
		return nil, err
	}
	logger.Info("Subscription canceled", slog.String("subscription_id", subscriptionID))
	return sub, nil
}

func (s *SubscriptionService) transition(ctx context.Context, subscriptionID string, from, to domain.SubscriptionStatus) (*domain.Subscription, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sub, err := s.SubscriptionRepository.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != from {
		return nil, fmt.Errorf("%w: subscription %s is %s, expected %s", apperrors.ErrValidation, subscriptionID, sub.Status, from)
	}
	sub.Status = to
	sub.LastUpdatedAt = time.Now().UTC()

	if err := s.SubscriptionRepository.UpdateSubscription(ctx, *sub); err != nil {
		logger.Error("Failed to update subscription status", slog.String("error", err.Error()), slog.String("subscription_id", subscriptionID))
		return nil, err
	}
	logger.Info("Subscription status changed", slog.String("subscription_id", subscriptionID), slog.String("status", string(to)))
	return sub, nil
}

// SweepBilling generates at most one pending spending transaction per due
// subscription and advances its next payment date by one cycle. A
// subscription overdue by several cycles catches the next cycle on the next
// sweep, not this one. Subscriptions without a linked account are skipped
// and their due date left alone. Overlapping sweeps observing the same due
// date bill the cycle at most once; the loser writes nothing.
func (s *SubscriptionService) SweepBilling(ctx context.Context, today time.Time) ([]domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	due, err := s.SubscriptionRepository.ListDue(ctx, today)
	if err != nil {
		logger.Error("Failed to list due subscriptions", slog.String("error", err.Error()))
		return nil, err
	}

	var generated []domain.Transaction
	now := time.Now().UTC()
	for i := range due {
		sub := due[i]
		txn := sub.GeneratePendingTransaction()
		if txn == nil {
			continue
		}
		txn.TransactionID = uuid.NewString()
		txn.CreatedAt = now
		txn.LastUpdatedAt = now

		cycleDate := sub.NextPaymentDate
		sub.AdvanceNextPaymentDate()
		sub.LastUpdatedAt = now

		billed, err := s.SubscriptionRepository.SaveBilling(ctx, *txn, sub, cycleDate)
		if err != nil {
			logger.Error("Failed to save billing event", slog.String("error", err.Error()), slog.String("subscription_id", sub.SubscriptionID))
			return generated, err
		}
		if !billed {
			// A concurrent sweep already billed this cycle.
			logger.Info("Billing cycle already recorded", slog.String("subscription_id", sub.SubscriptionID))
			continue
		}
		generated = append(generated, *txn)
	}

	if len(generated) > 0 {
		logger.Info("Subscription billing sweep completed", slog.Int("generated", len(generated)))
	}
	return generated, nil
}
