package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors domain.AccountType for persistence.
type AccountType string

const (
	Debit   AccountType = "debit"
	Credit  AccountType = "credit"
	Savings AccountType = "savings"
)

// Account is the database representation of a financial account.
type Account struct {
	AccountID   string          `db:"account_id"`
	Name        string          `db:"name"`
	AccountType AccountType     `db:"account_type"`
	Currency    string          `db:"currency"`
	Balance     decimal.Decimal `db:"balance"`
	CreditLimit decimal.Decimal `db:"credit_limit"`
	IsSavings   bool            `db:"is_savings"`
	AuditFields
}
