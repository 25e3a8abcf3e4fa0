package pgsql

import (
	"context"
	"fmt"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	store *Store
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// NewPgxReportingRepository creates the repository backing the aggregation
// engine's consistent reads.
func NewPgxReportingRepository(store *Store) *PgxReportingRepository {
	return &PgxReportingRepository{store: store}
}

// FetchSnapshot reads accounts, debts and subscriptions under one read lock
// so the aggregates never mix entity states from different instants.
func (r *PgxReportingRepository) FetchSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	accounts, err := listAccounts(ctx, r.store)
	if err != nil {
		return nil, fmt.Errorf("snapshot accounts: %w", err)
	}
	debts, err := listDebts(ctx, r.store, portsrepo.DebtFilter{})
	if err != nil {
		return nil, fmt.Errorf("snapshot debts: %w", err)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY next_payment_date;`
	rows, err := r.store.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("snapshot subscriptions: %w", err)
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

	return &domain.LedgerSnapshot{
		Accounts:      accounts,
		Debts:         debts,
		Subscriptions: subs,
	}, nil
}
