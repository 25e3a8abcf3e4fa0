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

type SubscriptionServiceTestSuite struct {
	suite.Suite
	mockRepo *MockSubscriptionRepository
	service  *services.SubscriptionService
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockSubscriptionRepository)
	suite.service = services.NewSubscriptionService(suite.mockRepo)
}

func activeMonthlySub() domain.Subscription {
	return domain.Subscription{
		SubscriptionID:  "s1",
		Name:            "Gym",
		Amount:          dec("49.90"),
		Frequency:       domain.FrequencyMonthly,
		NextPaymentDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		LinkedAccountID: "acc1",
		Status:          domain.SubscriptionActive,
		Currency:        "CHF",
	}
}

func (suite *SubscriptionServiceTestSuite) TestSweepBilling_OneEventPerSweep() {
	ctx := context.Background()
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("ListDue", ctx, today).Return([]domain.Subscription{activeMonthlySub()}, nil).Once()
	suite.mockRepo.On("SaveBilling", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Status == domain.StatusPending &&
			txn.TransactionType == domain.TypeSpending &&
			txn.Amount.Equal(dec("49.90")) &&
			txn.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	}), mock.MatchedBy(func(sub domain.Subscription) bool {
		// Even though the subscription is still due after one advance, only
		// one cycle bills per sweep; the next sweep catches the next one.
		return sub.NextPaymentDate.Equal(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	}), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).Return(true, nil).Once()

	generated, err := suite.service.SweepBilling(ctx, today)

	suite.Require().NoError(err)
	suite.Require().Len(generated, 1)
	suite.Equal("acc1", generated[0].FromAccountID)
	suite.mockRepo.AssertExpectations(suite.T())
}

// A second sweep overlapping the first observes the same due date; the
// guarded advance rejects it and no second transaction is generated.
func (suite *SubscriptionServiceTestSuite) TestSweepBilling_ConcurrentSweepBillsOnce() {
	ctx := context.Background()
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRepo.On("ListDue", ctx, today).Return([]domain.Subscription{activeMonthlySub()}, nil).Once()
	suite.mockRepo.On("SaveBilling", ctx, mock.AnythingOfType("domain.Transaction"), mock.AnythingOfType("domain.Subscription"), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)).Return(false, nil).Once()

	generated, err := suite.service.SweepBilling(ctx, today)

	suite.Require().NoError(err)
	suite.Empty(generated)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *SubscriptionServiceTestSuite) TestSweepBilling_SkipsUnlinked() {
	ctx := context.Background()
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	sub := activeMonthlySub()
	sub.LinkedAccountID = ""

	suite.mockRepo.On("ListDue", ctx, today).Return([]domain.Subscription{sub}, nil).Once()

	generated, err := suite.service.SweepBilling(ctx, today)

	suite.Require().NoError(err)
	suite.Empty(generated)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveBilling")
}

func (suite *SubscriptionServiceTestSuite) TestPauseSubscription() {
	ctx := context.Background()
	sub := activeMonthlySub()

	suite.mockRepo.On("FindSubscriptionByID", ctx, "s1").Return(&sub, nil).Once()
	suite.mockRepo.On("UpdateSubscription", ctx, mock.MatchedBy(func(s domain.Subscription) bool {
		return s.Status == domain.SubscriptionPaused
	})).Return(nil).Once()

	paused, err := suite.service.PauseSubscription(ctx, "s1")

	suite.Require().NoError(err)
	suite.Equal(domain.SubscriptionPaused, paused.Status)
}

func (suite *SubscriptionServiceTestSuite) TestResumeSubscription_RejectsCanceled() {
	ctx := context.Background()
	sub := activeMonthlySub()
	sub.Status = domain.SubscriptionCanceled

	suite.mockRepo.On("FindSubscriptionByID", ctx, "s1").Return(&sub, nil).Once()

	_, err := suite.service.ResumeSubscription(ctx, "s1")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateSubscription")
}

func (suite *SubscriptionServiceTestSuite) TestCancelSubscription_Idempotent() {
	ctx := context.Background()
	sub := activeMonthlySub()
	sub.Status = domain.SubscriptionCanceled

	suite.mockRepo.On("FindSubscriptionByID", ctx, "s1").Return(&sub, nil).Once()

	canceled, err := suite.service.CancelSubscription(ctx, "s1")

	suite.Require().NoError(err)
	suite.Equal(domain.SubscriptionCanceled, canceled.Status)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateSubscription")
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}
