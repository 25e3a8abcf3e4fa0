package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the billing cycle of a subscription.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPaused   SubscriptionStatus = "paused"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription is a recurring payment. The billing sweep turns due
// subscriptions into pending spending transactions and advances
// NextPaymentDate strictly forward by one cycle per sweep.
type Subscription struct {
	SubscriptionID  string             `json:"subscriptionID"`
	Name            string             `json:"name"`
	Amount          decimal.Decimal    `json:"amount"` // per cycle, > 0
	Frequency       Frequency          `json:"frequency"`
	NextPaymentDate time.Time          `json:"nextPaymentDate"`
	LinkedAccountID string             `json:"linkedAccountID"` // empty when not linked
	Status          SubscriptionStatus `json:"status"`
	Currency        string             `json:"currency"`
	Category        string             `json:"category"`
	AuditFields
}

// GeneratePendingTransaction emits the pending spending transaction for one
// billing cycle, dated on the due date. Non-active subscriptions and
// subscriptions without a linked account never bill.
func (s *Subscription) GeneratePendingTransaction() *Transaction {
	if s.Status != SubscriptionActive || s.LinkedAccountID == "" {
		return nil
	}
	return &Transaction{
		Date:            Day(s.NextPaymentDate),
		Amount:          s.Amount,
		Description:     fmt.Sprintf("Subscription: %s", s.Name),
		TransactionType: TypeSpending,
		FromAccountID:   s.LinkedAccountID,
		Status:          StatusPending,
		Category:        s.Category,
		Currency:        s.Currency,
	}
}

// AdvanceNextPaymentDate moves the due date forward by one cycle using
// calendar-correct month arithmetic (Jan 31 + 1 month = Feb 28). An
// unrecognized frequency falls back to monthly.
func (s *Subscription) AdvanceNextPaymentDate() time.Time {
	current := Day(s.NextPaymentDate)
	switch s.Frequency {
	case FrequencyQuarterly:
		s.NextPaymentDate = AddMonths(current, 3)
	case FrequencyYearly:
		s.NextPaymentDate = AddYears(current, 1)
	default:
		s.NextPaymentDate = AddMonths(current, 1)
	}
	return s.NextPaymentDate
}
