package pgsql

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
)

// Store wraps the shared connection pool and the process-wide ledger lock.
// All repositories hang off one Store so multi-entity operations (snapshot
// reads, execute, sweeps) serialize against each other. The lock is not
// reentrant; repository methods never call other locked methods.
type Store struct {
	pool *pgxpool.Pool
	mu   sync.RWMutex
}

// NewStore creates the shared store over an initialized pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// withTx runs fn inside a database transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NewRepositoryProvider wires every repository over one shared store.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	store := NewStore(pool)
	return &portsrepo.RepositoryProvider{
		AccountRepo:      NewPgxAccountRepository(store),
		TransactionRepo:  NewPgxTransactionRepository(store),
		DebtRepo:         NewPgxDebtRepository(store),
		SubscriptionRepo: NewPgxSubscriptionRepository(store),
		ReportingRepo:    NewPgxReportingRepository(store),
	}
}
