package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/currency"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

// ReportingService computes the point-in-time aggregates: liquidity, net
// worth and savings statistics. All sums are CHF-normalized.
type ReportingService struct {
	ReportingRepository   portsrepo.ReportingRepository
	TransactionRepository portsrepo.TransactionRepository
	Converter             *currency.Converter
}

func NewReportingService(reportingRepo portsrepo.ReportingRepository, txnRepo portsrepo.TransactionRepository, converter *currency.Converter) *ReportingService {
	return &ReportingService{
		ReportingRepository:   reportingRepo,
		TransactionRepository: txnRepo,
		Converter:             converter,
	}
}

// isLiquid reports whether an account participates in liquidity: savings are
// excluded outright (not liquid), credit accounts only count while their
// balance is non-negative.
func isLiquid(a domain.Account) bool {
	if a.IsSavings || a.AccountType == domain.AccountSavings {
		return false
	}
	if a.AccountType == domain.AccountCredit && a.Balance.IsNegative() {
		return false
	}
	return true
}

// Liquidity sums the spendable CHF value across liquid accounts. Overdrawn
// debit accounts contribute zero, credit accounts their remaining line.
func (s *ReportingService) Liquidity(ctx context.Context) (decimal.Decimal, error) {
	snapshot, err := s.ReportingRepository.FetchSnapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.liquidityOf(snapshot.Accounts)
}

func (s *ReportingService) liquidityOf(accounts []domain.Account) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range accounts {
		if !isLiquid(a) {
			continue
		}
		chf, err := s.Converter.ToCHF(a.AvailableBalance(), a.Currency)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(chf)
	}
	return total, nil
}

// unpaid reports whether a debt still carries a remaining obligation.
func unpaid(d domain.Debt) bool {
	return d.Status == domain.DebtPending || d.Status == domain.DebtPartial || d.Status == domain.DebtOverdue
}

// NetWorth computes assets minus liabilities. Assets are positive account
// balances plus unpaid receivables' remaining amounts; liabilities are
// negative balances, unpaid payables' remaining amounts and active
// subscription charges due within the next 30 days.
func (s *ReportingService) NetWorth(ctx context.Context) (*domain.NetWorth, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	snapshot, err := s.ReportingRepository.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	nw, err := s.netWorthOf(snapshot, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to compute net worth", slog.String("error", err.Error()))
		return nil, err
	}
	return nw, nil
}

func (s *ReportingService) netWorthOf(snapshot *domain.LedgerSnapshot, today time.Time) (*domain.NetWorth, error) {
	assets := decimal.Zero
	liabilities := decimal.Zero

	for _, a := range snapshot.Accounts {
		chf, err := s.Converter.ToCHF(a.Balance, a.Currency)
		if err != nil {
			return nil, err
		}
		if chf.IsNegative() {
			liabilities = liabilities.Add(chf.Abs())
		} else {
			assets = assets.Add(chf)
		}
	}

	for _, d := range snapshot.Debts {
		if !unpaid(d) {
			continue
		}
		chf, err := s.Converter.ToCHF(d.Remaining(), d.Currency)
		if err != nil {
			return nil, err
		}
		if d.IsReceivable {
			assets = assets.Add(chf)
		} else {
			liabilities = liabilities.Add(chf)
		}
	}

	horizon := domain.Day(today).AddDate(0, 0, 30)
	for _, sub := range snapshot.Subscriptions {
		if sub.Status != domain.SubscriptionActive || sub.NextPaymentDate.After(horizon) {
			continue
		}
		chf, err := s.Converter.ToCHF(sub.Amount, sub.Currency)
		if err != nil {
			return nil, err
		}
		liabilities = liabilities.Add(chf)
	}

	return &domain.NetWorth{
		Assets:      assets,
		Liabilities: liabilities,
		NetWorth:    assets.Sub(liabilities),
	}, nil
}

// SavingsStats reports the current total across savings accounts and the net
// contribution (completed deposits minus withdrawals) for the given month.
func (s *ReportingService) SavingsStats(ctx context.Context, year int, month time.Month) (*domain.SavingsStats, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	snapshot, err := s.ReportingRepository.FetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	savingsIDs := make(map[string]bool)
	total := decimal.Zero
	for _, a := range snapshot.Accounts {
		if !a.IsSavings {
			continue
		}
		savingsIDs[a.AccountID] = true
		chf, err := s.Converter.ToCHF(a.Balance, a.Currency)
		if err != nil {
			return nil, err
		}
		total = total.Add(chf)
	}

	start, next := domain.MonthWindow(year, month)
	end := next.AddDate(0, 0, -1) // filter bounds are inclusive days
	txns, err := s.TransactionRepository.ListTransactions(ctx, portsrepo.TransactionFilter{
		Status:   domain.StatusCompleted,
		DateFrom: &start,
		DateTo:   &end,
	})
	if err != nil {
		logger.Error("Failed to list transactions for savings stats", slog.String("error", err.Error()))
		return nil, err
	}

	contribution := decimal.Zero
	for _, t := range txns {
		chf, err := s.Converter.ToCHF(t.Amount, t.Currency)
		if err != nil {
			return nil, err
		}
		if savingsIDs[t.ToAccountID] {
			contribution = contribution.Add(chf)
		}
		if savingsIDs[t.FromAccountID] {
			contribution = contribution.Sub(chf)
		}
	}

	return &domain.SavingsStats{
		TotalBalance:      total,
		MonthContribution: contribution,
	}, nil
}
