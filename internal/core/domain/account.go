package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType distinguishes the balance rules an account follows.
type AccountType string

const (
	AccountDebit   AccountType = "debit"
	AccountCredit  AccountType = "credit"
	AccountSavings AccountType = "savings"
)

// Account represents a financial account within the core domain.
// This is the primary representation used by services; persistence works on
// detached copies, so balance mutations only stick after an explicit save.
type Account struct {
	AccountID   string          `json:"accountID"`   // Primary Key (UUID)
	Name        string          `json:"name"`        // User-defined name
	AccountType AccountType     `json:"accountType"` // debit, credit, savings
	Currency    string          `json:"currency"`    // ISO code, CHF is the base
	Balance     decimal.Decimal `json:"balance"`     // Signed running balance
	CreditLimit decimal.Decimal `json:"creditLimit"` // >= 0, meaningful for credit only
	IsSavings   bool            `json:"isSavings"`   // Marks the account for savings stats
	AuditFields
}

// Deposit adds funds to the account. It always succeeds.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

// Withdraw removes funds from the account if its type rules allow it.
// Credit accounts may not drop below -CreditLimit, savings accounts may not
// go negative, debit accounts allow overdraft. A rejected withdrawal leaves
// the balance untouched.
func (a *Account) Withdraw(amount decimal.Decimal) bool {
	switch a.AccountType {
	case AccountCredit:
		if a.Balance.Sub(amount).GreaterThanOrEqual(a.CreditLimit.Neg()) {
			a.Balance = a.Balance.Sub(amount)
			return true
		}
		return false
	case AccountSavings:
		if a.Balance.GreaterThanOrEqual(amount) {
			a.Balance = a.Balance.Sub(amount)
			return true
		}
		return false
	default:
		a.Balance = a.Balance.Sub(amount)
		return true
	}
}

// AvailableBalance returns the spendable amount: credit accounts include the
// remaining credit line, overdrawn debit accounts report zero. Display and
// liquidity only; never mutates.
func (a *Account) AvailableBalance() decimal.Decimal {
	switch {
	case a.AccountType == AccountCredit:
		return a.Balance.Add(a.CreditLimit)
	case a.AccountType == AccountDebit && a.Balance.IsNegative():
		return decimal.Zero
	default:
		return a.Balance
	}
}

// Reconcile forces the stored balance to match an externally reported value
// and returns the delta. The caller is responsible for recording the delta as
// an adjustment transaction.
func (a *Account) Reconcile(reported decimal.Decimal) decimal.Decimal {
	delta := reported.Sub(a.Balance)
	a.Balance = reported
	return delta
}
