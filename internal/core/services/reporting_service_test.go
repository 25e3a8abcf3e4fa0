package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/core/services"
	"github.com/fintrack/fintrack_app/internal/currency"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockTxnRepo       *MockTransactionRepository
	service           *services.ReportingService
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockTxnRepo, currency.NewConverter())
}

func (suite *ReportingServiceTestSuite) TestLiquidity_ExclusionRules() {
	ctx := context.Background()
	snapshot := &domain.LedgerSnapshot{
		Accounts: []domain.Account{
			{AccountID: "d1", AccountType: domain.AccountDebit, Balance: dec("100"), Currency: "CHF"},
			// Savings never count toward liquidity.
			{AccountID: "s1", AccountType: domain.AccountSavings, IsSavings: true, Balance: dec("500"), Currency: "CHF"},
			// A carried credit balance means the account is not spendable.
			{AccountID: "c1", AccountType: domain.AccountCredit, Balance: dec("-200"), CreditLimit: dec("1000"), Currency: "CHF"},
			// A clean credit account contributes its full line.
			{AccountID: "c2", AccountType: domain.AccountCredit, Balance: dec("0"), CreditLimit: dec("500"), Currency: "CHF"},
			// Overdrawn debit is liquid but has nothing available.
			{AccountID: "d2", AccountType: domain.AccountDebit, Balance: dec("-50"), Currency: "CHF"},
			{AccountID: "d3", AccountType: domain.AccountDebit, Balance: dec("100"), Currency: "EUR"},
		},
	}
	suite.mockReportingRepo.On("FetchSnapshot", ctx).Return(snapshot, nil).Once()

	liquidity, err := suite.service.Liquidity(ctx)

	suite.Require().NoError(err)
	// 100 (d1) + 500 (c2 line) + 0 (d2) + 94 (d3 in CHF)
	suite.True(dec("694").Equal(liquidity), "got %s", liquidity)
}

func (suite *ReportingServiceTestSuite) TestNetWorth_Composition() {
	ctx := context.Background()
	soon := time.Now().UTC().AddDate(0, 0, 10)
	far := time.Now().UTC().AddDate(0, 0, 60)

	payable := domain.Debt{
		DebtID: "debt1", Amount: dec("300"), Status: domain.DebtPartial, Currency: "CHF",
		PaymentHistory: []domain.PaymentRecord{{Date: time.Now().UTC(), Amount: dec("100")}},
	}
	receivable := domain.Debt{
		DebtID: "debt2", Amount: dec("50"), Status: domain.DebtPending, IsReceivable: true, Currency: "CHF",
	}
	settled := domain.Debt{
		DebtID: "debt3", Amount: dec("999"), Status: domain.DebtPaid, Currency: "CHF",
	}

	snapshot := &domain.LedgerSnapshot{
		Accounts: []domain.Account{
			{AccountID: "d1", AccountType: domain.AccountDebit, Balance: dec("100"), Currency: "CHF"},
			{AccountID: "c1", AccountType: domain.AccountCredit, Balance: dec("-200"), CreditLimit: dec("1000"), Currency: "CHF"},
		},
		Debts: []domain.Debt{payable, receivable, settled},
		Subscriptions: []domain.Subscription{
			{SubscriptionID: "s1", Amount: dec("20"), Status: domain.SubscriptionActive, NextPaymentDate: soon, Currency: "CHF"},
			{SubscriptionID: "s2", Amount: dec("80"), Status: domain.SubscriptionActive, NextPaymentDate: far, Currency: "CHF"},
			{SubscriptionID: "s3", Amount: dec("40"), Status: domain.SubscriptionPaused, NextPaymentDate: soon, Currency: "CHF"},
		},
	}
	suite.mockReportingRepo.On("FetchSnapshot", ctx).Return(snapshot, nil).Once()

	nw, err := suite.service.NetWorth(ctx)

	suite.Require().NoError(err)
	// Assets: 100 balance + 50 receivable remaining.
	suite.True(dec("150").Equal(nw.Assets), "assets %s", nw.Assets)
	// Liabilities: 200 credit carried + 200 payable remaining + 20 sub due soon.
	suite.True(dec("420").Equal(nw.Liabilities), "liabilities %s", nw.Liabilities)
	suite.True(dec("-270").Equal(nw.NetWorth), "net worth %s", nw.NetWorth)
}

func (suite *ReportingServiceTestSuite) TestSavingsStats_MonthContribution() {
	ctx := context.Background()
	snapshot := &domain.LedgerSnapshot{
		Accounts: []domain.Account{
			{AccountID: "s1", AccountType: domain.AccountSavings, IsSavings: true, Balance: dec("1000"), Currency: "CHF"},
			{AccountID: "d1", AccountType: domain.AccountDebit, Balance: dec("400"), Currency: "CHF"},
		},
	}
	suite.mockReportingRepo.On("FetchSnapshot", ctx).Return(snapshot, nil).Once()

	txns := []domain.Transaction{
		{TransactionID: "t1", TransactionType: domain.TypeTransfer, Amount: dec("200"), ToAccountID: "s1", FromAccountID: "d1", Status: domain.StatusCompleted, Currency: "CHF"},
		{TransactionID: "t2", TransactionType: domain.TypeSpending, Amount: dec("50"), FromAccountID: "s1", Status: domain.StatusCompleted, Currency: "CHF"},
		{TransactionID: "t3", TransactionType: domain.TypeIncome, Amount: dec("100"), ToAccountID: "d1", Status: domain.StatusCompleted, Currency: "CHF"},
	}
	suite.mockTxnRepo.On("ListTransactions", ctx, mock.MatchedBy(func(f portsrepo.TransactionFilter) bool {
		return f.Status == domain.StatusCompleted &&
			f.DateFrom != nil && f.DateFrom.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			f.DateTo != nil && f.DateTo.Equal(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	})).Return(txns, nil).Once()

	stats, err := suite.service.SavingsStats(ctx, 2024, time.May)

	suite.Require().NoError(err)
	suite.True(dec("1000").Equal(stats.TotalBalance), "total %s", stats.TotalBalance)
	// +200 into savings, -50 out, income elsewhere ignored.
	suite.True(dec("150").Equal(stats.MonthContribution), "contribution %s", stats.MonthContribution)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
