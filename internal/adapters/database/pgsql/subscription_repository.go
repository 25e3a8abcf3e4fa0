package pgsql

import (
	"context"
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

type PgxSubscriptionRepository struct {
	store *Store
}

var _ portsrepo.SubscriptionRepository = (*PgxSubscriptionRepository)(nil)

// NewPgxSubscriptionRepository creates a new repository for subscription data.
func NewPgxSubscriptionRepository(store *Store) *PgxSubscriptionRepository {
	return &PgxSubscriptionRepository{store: store}
}

const subscriptionColumns = `subscription_id, name, amount, frequency, next_payment_date, linked_account_id, status, currency, category, created_at, last_updated_at`

func toSubscriptionModel(s domain.Subscription) models.Subscription {
	return models.Subscription{
		SubscriptionID:  s.SubscriptionID,
		Name:            s.Name,
		Amount:          s.Amount,
		Frequency:       string(s.Frequency),
		NextPaymentDate: s.NextPaymentDate,
		LinkedAccountID: s.LinkedAccountID,
		Status:          string(s.Status),
		Currency:        s.Currency,
		Category:        s.Category,
		AuditFields: models.AuditFields{
			CreatedAt:     s.CreatedAt,
			LastUpdatedAt: s.LastUpdatedAt,
		},
	}
}

func toSubscriptionDomain(m models.Subscription) domain.Subscription {
	return domain.Subscription{
		SubscriptionID:  m.SubscriptionID,
		Name:            m.Name,
		Amount:          m.Amount,
		Frequency:       domain.Frequency(m.Frequency),
		NextPaymentDate: m.NextPaymentDate,
		LinkedAccountID: m.LinkedAccountID,
		Status:          domain.SubscriptionStatus(m.Status),
		Currency:        m.Currency,
		Category:        m.Category,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			LastUpdatedAt: m.LastUpdatedAt,
		},
	}
}

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var m models.Subscription
	var linkedID *string
	err := row.Scan(
		&m.SubscriptionID,
		&m.Name,
		&m.Amount,
		&m.Frequency,
		&m.NextPaymentDate,
		&linkedID,
		&m.Status,
		&m.Currency,
		&m.Category,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if linkedID != nil {
		m.LinkedAccountID = *linkedID
	}
	return m, err
}

// SaveSubscription inserts a new subscription.
func (r *PgxSubscriptionRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toSubscriptionModel(sub)
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.store.pool.Exec(ctx, query,
		m.SubscriptionID,
		m.Name,
		m.Amount,
		m.Frequency,
		m.NextPaymentDate,
		nullable(m.LinkedAccountID),
		m.Status,
		m.Currency,
		m.Category,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: subscription %s already exists", apperrors.ErrDuplicate, m.SubscriptionID)
		}
		return fmt.Errorf("failed to save subscription %s: %w", m.SubscriptionID, err)
	}
	return nil
}

// FindSubscriptionByID retrieves a subscription by its ID.
func (r *PgxSubscriptionRepository) FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE subscription_id = $1;`
	m, err := scanSubscription(r.store.pool.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription by ID %s: %w", subscriptionID, err)
	}
	sub := toSubscriptionDomain(m)
	return &sub, nil
}

// ListSubscriptions retrieves subscriptions, optionally filtered by status.
func (r *PgxSubscriptionRepository) ListSubscriptions(ctx context.Context, status domain.SubscriptionStatus) ([]domain.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY next_payment_date;`

	return r.collectSubscriptions(ctx, query, args...)
}

// ListDue retrieves active subscriptions due on or before today.
func (r *PgxSubscriptionRepository) ListDue(ctx context.Context, today time.Time) ([]domain.Subscription, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = $1 AND next_payment_date <= $2
		ORDER BY next_payment_date;
	`
	return r.collectSubscriptions(ctx, query, string(domain.SubscriptionActive), domain.Day(today))
}

func (r *PgxSubscriptionRepository) collectSubscriptions(ctx context.Context, query string, args ...any) ([]domain.Subscription, error) {
	rows, err := r.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		m, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, toSubscriptionDomain(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating subscription rows: %w", err)
	}
	return subs, nil
}

// UpdateSubscription updates an existing subscription.
func (r *PgxSubscriptionRepository) UpdateSubscription(ctx context.Context, sub domain.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := toSubscriptionModel(sub)
	query := `
		UPDATE subscriptions
		SET name = $2, amount = $3, frequency = $4, next_payment_date = $5, linked_account_id = $6, status = $7, currency = $8, category = $9, last_updated_at = $10
		WHERE subscription_id = $1;
	`
	tag, err := r.store.pool.Exec(ctx, query,
		m.SubscriptionID,
		m.Name,
		m.Amount,
		m.Frequency,
		m.NextPaymentDate,
		nullable(m.LinkedAccountID),
		m.Status,
		m.Currency,
		m.Category,
		m.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", m.SubscriptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSubscription removes a subscription.
func (r *PgxSubscriptionRepository) DeleteSubscription(ctx context.Context, subscriptionID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM subscriptions WHERE subscription_id = $1;`, subscriptionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription %s: %w", subscriptionID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaveBilling persists one billing event: the generated pending transaction
// and the advanced subscription, in one database transaction. The advance is
// conditional on next_payment_date still holding the value the sweep
// observed; when a concurrent sweep got there first, nothing is written and
// SaveBilling reports false, so one cycle never produces two transactions.
func (r *PgxSubscriptionRepository) SaveBilling(ctx context.Context, txn domain.Transaction, sub domain.Subscription, due time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	billed := false
	err := r.store.withTx(ctx, func(tx pgx.Tx) error {
		m := toSubscriptionModel(sub)
		tag, err := tx.Exec(ctx,
			`UPDATE subscriptions SET next_payment_date = $2, last_updated_at = $3 WHERE subscription_id = $1 AND next_payment_date = $4;`,
			m.SubscriptionID, m.NextPaymentDate, m.LastUpdatedAt, due,
		)
		if err != nil {
			return fmt.Errorf("failed to advance subscription %s: %w", m.SubscriptionID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		billed = true
		return insertTransactionTx(ctx, tx, txn)
	})
	if err != nil {
		return false, err
	}
	return billed, nil
}
