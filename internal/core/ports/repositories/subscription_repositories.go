package repositories

import (
	"context"
	"time"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// SubscriptionReader defines read operations for subscription data.
type SubscriptionReader interface {
	// FindSubscriptionByID retrieves a subscription; missing ids return
	// apperrors.ErrNotFound.
	FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error)

	// ListSubscriptions retrieves subscriptions, optionally filtered by
	// status (empty status means all).
	ListSubscriptions(ctx context.Context, status domain.SubscriptionStatus) ([]domain.Subscription, error)

	// ListDue retrieves active subscriptions with a next payment date on or
	// before today.
	ListDue(ctx context.Context, today time.Time) ([]domain.Subscription, error)
}

// SubscriptionWriter defines write operations for subscription data.
type SubscriptionWriter interface {
	// SaveSubscription persists a new subscription.
	SaveSubscription(ctx context.Context, sub domain.Subscription) error

	// UpdateSubscription updates an existing subscription.
	UpdateSubscription(ctx context.Context, sub domain.Subscription) error

	// DeleteSubscription removes a subscription. Returns false when the id
	// does not exist.
	DeleteSubscription(ctx context.Context, subscriptionID string) (bool, error)

	// SaveBilling persists one billing event atomically: the generated
	// pending transaction and the subscription with its advanced next
	// payment date. The advance is guarded on due, the next payment date the
	// caller observed; when a concurrent sweep already advanced it, nothing
	// is written and SaveBilling returns false, so each cycle bills at most
	// once.
	SaveBilling(ctx context.Context, txn domain.Transaction, sub domain.Subscription, due time.Time) (bool, error)
}

// SubscriptionRepository combines all subscription-related repository
// operations.
type SubscriptionRepository interface {
	SubscriptionReader
	SubscriptionWriter
}
