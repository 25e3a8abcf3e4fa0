package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// NetWorthResponse is the CHF-normalized assets/liabilities breakdown.
type NetWorthResponse struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"netWorth"`
	Currency    string          `json:"currency"`
}

// SavingsStatsResponse summarizes savings accounts for the current month.
type SavingsStatsResponse struct {
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	MonthContribution decimal.Decimal `json:"monthContribution"`
	Currency          string          `json:"currency"`
}

// TrendPointResponse is one day of a reconstructed series.
type TrendPointResponse struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// MonthlySavingsPointResponse is one month of savings contributions.
type MonthlySavingsPointResponse struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

// DashboardResponse is the composite overview: current metrics, historical
// trends and the full entity snapshot, all CHF-normalized where aggregated.
type DashboardResponse struct {
	Liquidity      decimal.Decimal               `json:"liquidity"`
	NetWorth       NetWorthResponse              `json:"netWorth"`
	Savings        SavingsStatsResponse          `json:"savings"`
	LiquidityTrend []TrendPointResponse          `json:"liquidityTrend"`
	NetWorthTrend  []TrendPointResponse          `json:"netWorthTrend"`
	MonthlySavings []MonthlySavingsPointResponse `json:"monthlySavings"`
	Accounts       []AccountResponse             `json:"accounts"`
	Debts          []DebtResponse                `json:"debts"`
	Subscriptions  []SubscriptionResponse        `json:"subscriptions"`
}

// ToTrendPointResponses converts a trend series.
func ToTrendPointResponses(points []domain.TrendPoint) []TrendPointResponse {
	resp := make([]TrendPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, TrendPointResponse{Date: p.Date, Value: p.Value})
	}
	return resp
}

// ToMonthlySavingsResponses converts a monthly savings series.
func ToMonthlySavingsResponses(points []domain.MonthlySavingsPoint) []MonthlySavingsPointResponse {
	resp := make([]MonthlySavingsPointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, MonthlySavingsPointResponse{Month: p.Month, Value: p.Value})
	}
	return resp
}
