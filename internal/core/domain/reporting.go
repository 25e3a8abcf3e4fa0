package domain

import "github.com/shopspring/decimal"

// NetWorth is the assets/liabilities breakdown, CHF-normalized.
type NetWorth struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"netWorth"`
}

// SavingsStats summarizes the savings accounts for one calendar month.
type SavingsStats struct {
	TotalBalance      decimal.Decimal `json:"totalBalance"`      // current balances, not point-in-time
	MonthContribution decimal.Decimal `json:"monthContribution"` // completed deposits minus withdrawals
}

// TrendPoint is one day of a reconstructed trend series. Date uses
// DateFormat so the natural string sort is chronological.
type TrendPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// MonthlySavingsPoint is one month of savings contributions.
type MonthlySavingsPoint struct {
	Month string          `json:"month"` // short month name, e.g. "Jan"
	Value decimal.Decimal `json:"value"`
}

// LedgerSnapshot is a consistent multi-entity read of the current ledger
// state, taken under a single store lock so aggregates never mix states.
type LedgerSnapshot struct {
	Accounts      []Account
	Debts         []Debt
	Subscriptions []Subscription
}
