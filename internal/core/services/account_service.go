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
	"github.com/fintrack/fintrack_app/internal/currency"
	"github.com/fintrack/fintrack_app/internal/dto"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

type AccountService struct {
	AccountRepository portsrepo.AccountRepository
	Converter         *currency.Converter
}

func NewAccountService(repo portsrepo.AccountRepository, converter *currency.Converter) *AccountService {
	return &AccountService{AccountRepository: repo, Converter: converter}
}

// CreateAccount creates a new account from the request. Savings-type
// accounts default to is_savings=true unless the request says otherwise.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !s.Converter.Known(req.Currency) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, req.Currency)
	}

	creditLimit := decimal.Zero
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, fmt.Errorf("%w: credit limit must not be negative", apperrors.ErrValidation)
		}
		creditLimit = *req.CreditLimit
	}

	isSavings := req.AccountType == string(domain.AccountSavings)
	if req.IsSavings != nil {
		isSavings = *req.IsSavings
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		Currency:    req.Currency,
		Balance:     req.Balance,
		CreditLimit: creditLimit,
		IsSavings:   isSavings,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.AccountRepository.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.AccountRepository.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves all accounts.
func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.AccountRepository.ListAccounts(ctx)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()))
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount applies a partial update. The balance itself is only
// touched through transactions and reconciliation, never directly.
func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.AccountRepository.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.AccountType != nil {
		account.AccountType = domain.AccountType(*req.AccountType)
	}
	if req.Currency != nil {
		if !s.Converter.Known(*req.Currency) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, *req.Currency)
		}
		account.Currency = *req.Currency
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return nil, fmt.Errorf("%w: credit limit must not be negative", apperrors.ErrValidation)
		}
		account.CreditLimit = *req.CreditLimit
	}
	if req.IsSavings != nil {
		account.IsSavings = *req.IsSavings
	}
	account.LastUpdatedAt = time.Now().UTC()

	if err := s.AccountRepository.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account. Transactions referencing it are kept;
// they become dangling references readers tolerate.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	deleted, err := s.AccountRepository.DeleteAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to delete account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return err
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	logger.Info("Account deleted", slog.String("account_id", accountID))
	return nil
}

// ReconcileAccount forces the balance to an externally reported value and
// books the delta as a completed adjustment transaction. A zero delta writes
// nothing and returns a nil adjustment. The balance write is guarded on the
// value read here; a concurrent change re-runs the read and delta.
func (s *AccountService) ReconcileAccount(ctx context.Context, accountID string, reported decimal.Decimal) (*domain.Account, decimal.Decimal, *domain.Transaction, error) {
	var (
		account    *domain.Account
		delta      decimal.Decimal
		adjustment *domain.Transaction
	)
	err := retryOnConflict(conflictRetryLimit, func() error {
		var err error
		account, delta, adjustment, err = s.reconcileOnce(ctx, accountID, reported)
		return err
	})
	if err != nil {
		return nil, decimal.Zero, nil, err
	}
	return account, delta, adjustment, nil
}

func (s *AccountService) reconcileOnce(ctx context.Context, accountID string, reported decimal.Decimal) (*domain.Account, decimal.Decimal, *domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.AccountRepository.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, nil, err
	}

	observed := account.Balance
	delta := account.Reconcile(reported)
	if delta.IsZero() {
		return account, delta, nil, nil
	}

	now := time.Now().UTC()
	account.LastUpdatedAt = now

	// The balance change already happened; the adjustment only documents it,
	// so it is born completed.
	adjustment := domain.Transaction{
		TransactionID:   uuid.NewString(),
		Date:            domain.Day(now),
		Amount:          delta.Abs(),
		Description:     fmt.Sprintf("Balance reconciliation: %s", account.Name),
		TransactionType: domain.TypeAdjustment,
		Status:          domain.StatusCompleted,
		Currency:        account.Currency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	if delta.IsPositive() {
		adjustment.ToAccountID = account.AccountID
	} else {
		adjustment.FromAccountID = account.AccountID
	}

	if err := s.AccountRepository.SaveReconciliation(ctx, *account, observed, adjustment); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to save reconciliation", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, decimal.Zero, nil, err
	}

	logger.Info("Account reconciled",
		slog.String("account_id", accountID),
		slog.String("delta", delta.String()),
	)
	return account, delta, &adjustment, nil
}
