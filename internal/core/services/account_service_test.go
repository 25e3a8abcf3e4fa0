package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	"github.com/fintrack/fintrack_app/internal/core/services"
	"github.com/fintrack/fintrack_app/internal/currency"
	"github.com/fintrack/fintrack_app/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  *services.AccountService
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo, currency.NewConverter())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SavingsDefaultsFlag() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:        "Rainy day",
		AccountType: "savings",
		Currency:    "CHF",
		Balance:     dec("500"),
	}

	suite.mockRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.IsSavings && a.AccountType == domain.AccountSavings
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req)

	suite.Require().NoError(err)
	suite.True(account.IsSavings)
	suite.NotEmpty(account.AccountID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownCurrency() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		Name:        "Tokyo trip",
		AccountType: "debit",
		Currency:    "JPY",
	}

	_, err := suite.service.CreateAccount(ctx, req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnknownCurrency))
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestReconcileAccount_BooksAdjustment() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   "acc1",
		Name:        "Checking",
		AccountType: domain.AccountDebit,
		Balance:     dec("120"),
		Currency:    "CHF",
	}

	suite.mockRepo.On("FindAccountByID", ctx, "acc1").Return(account, nil).Once()
	suite.mockRepo.On("SaveReconciliation", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("95.50"))
	}), mock.MatchedBy(func(observed decimal.Decimal) bool {
		return observed.Equal(dec("120"))
	}), mock.MatchedBy(func(txn domain.Transaction) bool {
		// Delta is -24.50, so the adjustment flows out of the account.
		return txn.TransactionType == domain.TypeAdjustment &&
			txn.Status == domain.StatusCompleted &&
			txn.Amount.Equal(dec("24.50")) &&
			txn.FromAccountID == "acc1" && txn.ToAccountID == ""
	})).Return(nil).Once()

	reconciled, delta, adjustment, err := suite.service.ReconcileAccount(ctx, "acc1", dec("95.50"))

	suite.Require().NoError(err)
	suite.True(dec("-24.50").Equal(delta), "delta %s", delta)
	suite.True(reconciled.Balance.Equal(dec("95.50")))
	suite.Require().NotNil(adjustment)
	suite.mockRepo.AssertExpectations(suite.T())
}

// A balance change landing between the read and the reconciliation write is
// retried from the fresh balance, so the booked delta matches reality.
func (suite *AccountServiceTestSuite) TestReconcileAccount_RetriesFromFreshBalance() {
	ctx := context.Background()

	suite.mockRepo.On("FindAccountByID", ctx, "acc1").Return(&domain.Account{
		AccountID: "acc1", AccountType: domain.AccountDebit, Balance: dec("120"), Currency: "CHF",
	}, nil).Once()
	suite.mockRepo.On("SaveReconciliation", ctx, mock.Anything, mock.MatchedBy(func(observed decimal.Decimal) bool {
		return observed.Equal(dec("120"))
	}), mock.Anything).Return(apperrors.ErrConflict).Once()

	// The retry sees the balance a concurrent execute moved to 110.
	suite.mockRepo.On("FindAccountByID", ctx, "acc1").Return(&domain.Account{
		AccountID: "acc1", AccountType: domain.AccountDebit, Balance: dec("110"), Currency: "CHF",
	}, nil).Once()
	suite.mockRepo.On("SaveReconciliation", ctx, mock.Anything, mock.MatchedBy(func(observed decimal.Decimal) bool {
		return observed.Equal(dec("110"))
	}), mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Amount.Equal(dec("14.50")) && txn.FromAccountID == "acc1"
	})).Return(nil).Once()

	_, delta, _, err := suite.service.ReconcileAccount(ctx, "acc1", dec("95.50"))

	suite.Require().NoError(err)
	suite.True(dec("-14.50").Equal(delta), "delta %s", delta)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestReconcileAccount_ZeroDeltaWritesNothing() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   "acc1",
		AccountType: domain.AccountDebit,
		Balance:     dec("120"),
		Currency:    "CHF",
	}

	suite.mockRepo.On("FindAccountByID", ctx, "acc1").Return(account, nil).Once()

	_, delta, adjustment, err := suite.service.ReconcileAccount(ctx, "acc1", dec("120"))

	suite.Require().NoError(err)
	suite.True(delta.IsZero())
	suite.Nil(adjustment)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveReconciliation")
}

func (suite *AccountServiceTestSuite) TestDeleteAccount_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("DeleteAccount", ctx, "ghost").Return(false, nil).Once()

	err := suite.service.DeleteAccount(ctx, "ghost")

	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
