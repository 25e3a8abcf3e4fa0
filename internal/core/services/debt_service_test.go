package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrack/fintrack_app/internal/apperrors"
	"github.com/fintrack/fintrack_app/internal/core/domain"
	"github.com/fintrack/fintrack_app/internal/core/services"
)

type DebtServiceTestSuite struct {
	suite.Suite
	mockRepo *MockDebtRepository
	service  *services.DebtService
}

func (suite *DebtServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockDebtRepository)
	suite.service = services.NewDebtService(suite.mockRepo)
}

func payableDebt() *domain.Debt {
	return &domain.Debt{
		DebtID:          "d1",
		Description:     "Dentist bill",
		Amount:          dec("300"),
		DueDate:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		LinkedAccountID: "acc1",
		Status:          domain.DebtPending,
		Currency:        "CHF",
	}
}

func (suite *DebtServiceTestSuite) TestMakePartialPayment_Success() {
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(payableDebt(), nil).Once()
	suite.mockRepo.On("SavePayment", ctx, mock.MatchedBy(func(d domain.Debt) bool {
		return d.Status == domain.DebtPartial && d.Remaining().Equal(dec("200"))
	}), mock.AnythingOfType("time.Time"), mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn != nil && txn.TransactionID != "" && txn.Status == domain.StatusPending && txn.Amount.Equal(dec("100"))
	})).Return(nil).Once()

	debt, txn, err := suite.service.MakePartialPayment(ctx, "d1", dec("100"), date, "installment")

	suite.Require().NoError(err)
	suite.Equal(domain.DebtPartial, debt.Status)
	suite.Require().NotNil(txn)
	suite.Equal(domain.TypeSpending, txn.TransactionType)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *DebtServiceTestSuite) TestMakePartialPayment_ExceedsRemaining() {
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(payableDebt(), nil).Once()

	_, _, err := suite.service.MakePartialPayment(ctx, "d1", dec("301"), date, "")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePayment")
}

// A payment losing the guarded write re-reads the debt, so the overlapping
// payment's history entry survives and the remaining amount is re-validated.
func (suite *DebtServiceTestSuite) TestMakePartialPayment_RetryKeepsConcurrentHistory() {
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

	first := payableDebt()
	first.LastUpdatedAt = t0
	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(first, nil).Once()
	suite.mockRepo.On("SavePayment", ctx, mock.Anything, t0, mock.Anything).Return(apperrors.ErrConflict).Once()

	// The retry sees the debt with a concurrent 100 payment already recorded.
	second := payableDebt()
	second.Status = domain.DebtPartial
	second.PaymentHistory = []domain.PaymentRecord{{Date: date, Amount: dec("100")}}
	second.LastUpdatedAt = t1
	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(second, nil).Once()
	suite.mockRepo.On("SavePayment", ctx, mock.MatchedBy(func(d domain.Debt) bool {
		return len(d.PaymentHistory) == 2 && d.Remaining().Equal(dec("100"))
	}), t1, mock.Anything).Return(nil).Once()

	debt, _, err := suite.service.MakePartialPayment(ctx, "d1", dec("100"), date, "")

	suite.Require().NoError(err)
	suite.Len(debt.PaymentHistory, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *DebtServiceTestSuite) TestMakePartialPayment_RetryRevalidatesRemaining() {
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(payableDebt(), nil).Once()
	suite.mockRepo.On("SavePayment", ctx, mock.Anything, mock.AnythingOfType("time.Time"), mock.Anything).Return(apperrors.ErrConflict).Once()

	// After a concurrent 100 payment, only 200 remains and 250 no longer fits.
	refreshed := payableDebt()
	refreshed.Status = domain.DebtPartial
	refreshed.PaymentHistory = []domain.PaymentRecord{{Date: date, Amount: dec("100")}}
	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(refreshed, nil).Once()

	_, _, err := suite.service.MakePartialPayment(ctx, "d1", dec("250"), date, "")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *DebtServiceTestSuite) TestMarkDebtPaid_SettlesRemainder() {
	ctx := context.Background()
	date := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	debt := payableDebt()
	debt.PaymentHistory = []domain.PaymentRecord{{Date: date, Amount: dec("100")}}
	debt.Status = domain.DebtPartial

	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(debt, nil).Once()
	suite.mockRepo.On("SavePayment", ctx, mock.MatchedBy(func(d domain.Debt) bool {
		return d.Status == domain.DebtPaid
	}), mock.AnythingOfType("time.Time"), mock.MatchedBy(func(txn *domain.Transaction) bool {
		return txn != nil && txn.Amount.Equal(dec("200"))
	})).Return(nil).Once()

	result, txn, err := suite.service.MarkDebtPaid(ctx, "d1", date)

	suite.Require().NoError(err)
	suite.Equal(domain.DebtPaid, result.Status)
	suite.Require().NotNil(txn)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *DebtServiceTestSuite) TestMarkDebtPaid_AlreadyPaidNoOp() {
	ctx := context.Background()
	debt := payableDebt()
	debt.Status = domain.DebtPaid

	suite.mockRepo.On("FindDebtByID", ctx, "d1").Return(debt, nil).Once()

	result, txn, err := suite.service.MarkDebtPaid(ctx, "d1", time.Now().UTC())

	suite.Require().NoError(err)
	suite.Nil(txn)
	suite.Equal(domain.DebtPaid, result.Status)
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePayment")
}

func (suite *DebtServiceTestSuite) TestSweepOverdue() {
	ctx := context.Background()
	today := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("MarkOverdue", ctx, today).Return(int64(3), nil).Once()

	count, err := suite.service.SweepOverdue(ctx, today)

	suite.Require().NoError(err)
	suite.Equal(int64(3), count)
}

func TestDebtServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DebtServiceTestSuite))
}
