package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one embedded payment-history entry; the list is stored as
// a JSONB column on the debts table.
type PaymentRecord struct {
	Date   string          `json:"date"` // ISO day, zero-padded
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// Debt is the database representation of a debt.
type Debt struct {
	DebtID          string          `db:"debt_id"`
	Description     string          `db:"description"`
	Amount          decimal.Decimal `db:"amount"`
	DueDate         time.Time       `db:"due_date"`
	IsReceivable    bool            `db:"is_receivable"`
	LinkedAccountID string          `db:"linked_account_id"`
	Status          string          `db:"status"`
	Currency        string          `db:"currency"`
	PaymentHistory  []PaymentRecord `db:"payment_history"`
	AuditFields
}
