package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	portsrepo "github.com/fintrack/fintrack_app/internal/core/ports/repositories"
	"github.com/fintrack/fintrack_app/internal/currency"
	"github.com/fintrack/fintrack_app/internal/middleware"
)

// minTrendTransactions is the threshold below which reconstruction is
// abandoned in favor of a two-point placeholder series.
const minTrendTransactions = 5

// TrendService reconstructs historical daily series without a stored
// balance-history table: it anchors at today's real aggregate and undoes
// completed transaction deltas walking backward through the window.
type TrendService struct {
	Reporting             *ReportingService
	TransactionRepository portsrepo.TransactionRepository
	DebtRepository        portsrepo.DebtRepository
	Converter             *currency.Converter
}

func NewTrendService(reporting *ReportingService, txnRepo portsrepo.TransactionRepository, debtRepo portsrepo.DebtRepository, converter *currency.Converter) *TrendService {
	return &TrendService{
		Reporting:             reporting,
		TransactionRepository: txnRepo,
		DebtRepository:        debtRepo,
		Converter:             converter,
	}
}

// dailyDeltas buckets each completed transaction's CHF impact by day.
// Income adds, spending subtracts, transfers cancel at the aggregate level
// (a known approximation: a transfer between a liquid and a non-liquid
// account is treated as neutral). Adjustments follow whichever side is set.
func (s *TrendService) dailyDeltas(txns []domain.Transaction) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, t := range txns {
		chf, err := s.Converter.ToCHF(t.Amount, t.Currency)
		if err != nil {
			return nil, err
		}
		key := t.Date.Format(domain.DateFormat)
		switch t.TransactionType {
		case domain.TypeIncome:
			deltas[key] = deltas[key].Add(chf)
		case domain.TypeSpending:
			deltas[key] = deltas[key].Sub(chf)
		case domain.TypeAdjustment:
			if t.ToAccountID != "" {
				deltas[key] = deltas[key].Add(chf)
			} else {
				deltas[key] = deltas[key].Sub(chf)
			}
		}
	}
	return deltas, nil
}

// completedInWindow fetches completed transactions between start and today,
// both inclusive.
func (s *TrendService) completedInWindow(ctx context.Context, start, today time.Time) ([]domain.Transaction, error) {
	return s.TransactionRepository.ListTransactions(ctx, portsrepo.TransactionFilter{
		Status:   domain.StatusCompleted,
		DateFrom: &start,
		DateTo:   &today,
	})
}

// placeholderSeries is the two-point fallback when the window holds too few
// transactions to reconstruct: today's real value and a synthetic zero at the
// window start, so charts always have a line to draw.
func placeholderSeries(start, today time.Time, anchor decimal.Decimal) []domain.TrendPoint {
	return []domain.TrendPoint{
		{Date: start.Format(domain.DateFormat), Value: decimal.Zero},
		{Date: today.Format(domain.DateFormat), Value: anchor},
	}
}

// walkBackward produces the daily series by undoing each day's delta from
// the anchor, oldest first. When floor is set, reconstructed values are
// clamped at zero.
func walkBackward(deltas map[string]decimal.Decimal, today time.Time, days int, anchor decimal.Decimal, floor bool) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, days)
	value := anchor
	day := today
	points = append(points, domain.TrendPoint{Date: day.Format(domain.DateFormat), Value: value})
	for i := 1; i < days; i++ {
		// Undoing day d's delta yields the value at the end of day d-1.
		value = value.Sub(deltas[day.Format(domain.DateFormat)])
		if floor && value.IsNegative() {
			value = decimal.Zero
		}
		day = day.AddDate(0, 0, -1)
		points = append(points, domain.TrendPoint{Date: day.Format(domain.DateFormat), Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// LiquidityTrend reconstructs daily liquidity for the trailing window.
func (s *TrendService) LiquidityTrend(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	anchor, err := s.Reporting.Liquidity(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.Day(time.Now().UTC())
	start := today.AddDate(0, 0, -(days - 1))
	txns, err := s.completedInWindow(ctx, start, today)
	if err != nil {
		logger.Error("Failed to load transactions for liquidity trend", slog.String("error", err.Error()))
		return nil, err
	}
	if len(txns) < minTrendTransactions {
		return placeholderSeries(start, today, anchor), nil
	}

	deltas, err := s.dailyDeltas(txns)
	if err != nil {
		return nil, err
	}
	return walkBackward(deltas, today, days, anchor, true), nil
}

// NetWorthTrend reconstructs daily net worth for the trailing window. On top
// of transaction deltas it folds in debt payment history: a payable payment
// raised net worth on its day (the liability shrank), a receivable payment
// lowered it (the outstanding asset shrank), while the matching account
// movement is already covered by its own transaction.
func (s *TrendService) NetWorthTrend(ctx context.Context, days int) ([]domain.TrendPoint, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	nw, err := s.Reporting.NetWorth(ctx)
	if err != nil {
		return nil, err
	}
	anchor := nw.NetWorth

	today := domain.Day(time.Now().UTC())
	start := today.AddDate(0, 0, -(days - 1))
	txns, err := s.completedInWindow(ctx, start, today)
	if err != nil {
		logger.Error("Failed to load transactions for net worth trend", slog.String("error", err.Error()))
		return nil, err
	}
	if len(txns) < minTrendTransactions {
		return placeholderSeries(start, today, anchor), nil
	}

	deltas, err := s.dailyDeltas(txns)
	if err != nil {
		return nil, err
	}

	debts, err := s.DebtRepository.ListDebts(ctx, portsrepo.DebtFilter{})
	if err != nil {
		logger.Error("Failed to load debts for net worth trend", slog.String("error", err.Error()))
		return nil, err
	}
	startKey := start.Format(domain.DateFormat)
	todayKey := today.Format(domain.DateFormat)
	for _, d := range debts {
		for _, p := range d.PaymentHistory {
			key := p.Date.Format(domain.DateFormat)
			if key < startKey || key > todayKey {
				continue
			}
			chf, err := s.Converter.ToCHF(p.Amount, d.Currency)
			if err != nil {
				return nil, err
			}
			if d.IsReceivable {
				deltas[key] = deltas[key].Sub(chf)
			} else {
				deltas[key] = deltas[key].Add(chf)
			}
		}
	}

	// Net worth may legitimately be negative, so no zero floor here.
	return walkBackward(deltas, today, days, anchor, false), nil
}

// MonthlySavings reports the savings contribution for each of the trailing
// months, oldest first. No reconstruction needed: the month windows are
// computed directly from completed transactions.
func (s *TrendService) MonthlySavings(ctx context.Context, months int) ([]domain.MonthlySavingsPoint, error) {
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]domain.MonthlySavingsPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := domain.AddMonths(firstOfMonth, -i)
		stats, err := s.Reporting.SavingsStats(ctx, m.Year(), m.Month())
		if err != nil {
			return nil, err
		}
		points = append(points, domain.MonthlySavingsPoint{
			Month: m.Format("Jan"),
			Value: stats.MonthContribution,
		})
	}
	return points, nil
}
