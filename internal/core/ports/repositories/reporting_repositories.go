package repositories

import (
	"context"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// ReportingRepository provides the consistent multi-entity reads the
// aggregation engine needs. A snapshot is taken under a single store lock so
// liquidity and net worth never mix accounts from one instant with debts
// from another.
type ReportingRepository interface {
	FetchSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error)
}
