package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

// DefaultCurrency is assumed when a request carries no currency.
const DefaultCurrency = "CHF"

type TransactionService struct {
	TransactionRepository portsrepo.TransactionRepository
	AccountRepository     portsrepo.AccountRepository
}

func NewTransactionService(txnRepo portsrepo.TransactionRepository, accountRepo portsrepo.AccountRepository) *TransactionService {
	return &TransactionService{
		TransactionRepository: txnRepo,
		AccountRepository:     accountRepo,
	}
}

// CreateTransaction creates a transaction in pending state. Adjustments are
// the exception: they document an already-applied balance change and are
// created completed.
func (s *TransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	date, err := time.ParseInLocation(domain.DateFormat, req.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, req.Date)
	}

	curr := req.Currency
	if curr == "" {
		curr = DefaultCurrency
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Date:            date,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionType: domain.TransactionType(req.TransactionType),
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		Status:          domain.StatusPending,
		Category:        req.Category,
		Currency:        curr,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if txn.TransactionType == domain.TypeAdjustment {
		txn.Status = domain.StatusCompleted
	}

	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.TransactionRepository.SaveTransaction(ctx, txn); err != nil {
		logger.Error("Failed to save transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID), slog.String("type", string(txn.TransactionType)))
	return &txn, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *TransactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	txn, err := s.TransactionRepository.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find transaction by ID in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves transactions matching the filter.
func (s *TransactionService) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	txns, err := s.TransactionRepository.ListTransactions(ctx, filter)
	if err != nil {
		logger.Error("Failed to list transactions from repository", slog.String("error", err.Error()))
		return nil, err
	}
	return txns, nil
}

// UpdateTransaction applies a partial update to a pending transaction.
// Completed and canceled transactions are immutable.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.TransactionRepository.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: only pending transactions can be updated", apperrors.ErrValidation)
	}

	if req.Date != nil {
		date, err := time.ParseInLocation(domain.DateFormat, *req.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date %q", apperrors.ErrValidation, *req.Date)
		}
		txn.Date = date
	}
	if req.Amount != nil {
		txn.Amount = *req.Amount
	}
	if req.Description != nil {
		txn.Description = *req.Description
	}
	if req.Category != nil {
		txn.Category = *req.Category
	}
	txn.LastUpdatedAt = time.Now().UTC()

	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.TransactionRepository.UpdateTransaction(ctx, *txn); err != nil {
		logger.Error("Failed to update transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction removes a transaction at any status. A completed
// transaction's balance effect is NOT reversed: balances are stored running
// values, not derived from replay.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	deleted, err := s.TransactionRepository.DeleteTransaction(ctx, transactionID)
	if err != nil {
		logger.Error("Failed to delete transaction in repository", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

// ExecuteTransaction applies a pending transaction to its accounts and
// completes it. A non-pending transaction is a no-op returning executed=false.
// Failure causes surface as typed errors: a dangling account reference is a
// validation error, a denied withdrawal is insufficient funds; in both cases
// the transaction stays pending and no balance changes. When the guarded
// balance write loses a race against a concurrent execute, the whole
// read-compute-write runs again from fresh balances.
func (s *TransactionService) ExecuteTransaction(ctx context.Context, transactionID string) (*domain.Transaction, bool, error) {
	var (
		txn      *domain.Transaction
		executed bool
	)
	err := retryOnConflict(conflictRetryLimit, func() error {
		var err error
		txn, executed, err = s.executeOnce(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return txn, executed, nil
}

func (s *TransactionService) executeOnce(ctx context.Context, transactionID string) (*domain.Transaction, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.TransactionRepository.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, false, err
	}
	if txn.Status != domain.StatusPending {
		return txn, false, nil
	}

	ids := make([]string, 0, 2)
	if txn.FromAccountID != "" {
		ids = append(ids, txn.FromAccountID)
	}
	if txn.ToAccountID != "" {
		ids = append(ids, txn.ToAccountID)
	}

	found, err := s.AccountRepository.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, false, err
	}

	accounts := make(map[string]*domain.Account, len(found))
	for id := range found {
		acc := found[id]
		accounts[id] = &acc
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, false, fmt.Errorf("%w: account %s referenced by transaction %s does not exist", apperrors.ErrValidation, id, transactionID)
		}
	}

	if !txn.Execute(accounts) {
		// Accounts resolved and the transaction was pending, so the only
		// remaining cause is a denied withdrawal.
		return txn, false, fmt.Errorf("%w: transaction %s", apperrors.ErrInsufficientFunds, transactionID)
	}

	now := time.Now().UTC()
	txn.LastUpdatedAt = now
	changes := make([]portsrepo.BalanceChange, 0, len(accounts))
	for id, acc := range accounts {
		acc.LastUpdatedAt = now
		changes = append(changes, portsrepo.BalanceChange{
			Account:  *acc,
			Observed: found[id].Balance,
		})
	}

	if err := s.TransactionRepository.MarkExecuted(ctx, *txn, changes); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, false, err
		}
		logger.Error("Failed to persist executed transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, false, err
	}

	logger.Info("Transaction executed", slog.String("transaction_id", transactionID))
	return txn, true, nil
}
