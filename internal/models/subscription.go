package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is the database representation of a recurring payment.
type Subscription struct {
	SubscriptionID  string          `db:"subscription_id"`
	Name            string          `db:"name"`
	Amount          decimal.Decimal `db:"amount"`
	Frequency       string          `db:"frequency"`
	NextPaymentDate time.Time       `db:"next_payment_date"`
	LinkedAccountID string          `db:"linked_account_id"`
	Status          string          `db:"status"`
	Currency        string          `db:"currency"`
	Category        string          `db:"category"`
	AuditFields
}
