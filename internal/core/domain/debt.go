package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is the lifecycle state of a debt, derived from its paid
// fraction except for overdue, which a sweep sets lazily.
type DebtStatus string

const (
	DebtPending DebtStatus = "pending"
	DebtPartial DebtStatus = "partial"
	DebtPaid    DebtStatus = "paid"
	DebtOverdue DebtStatus = "overdue"
)

// PaymentRecord is one entry in a debt's payment history.
type PaymentRecord struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// Debt represents money owed to the owner (receivable) or by the owner
// (payable). Invariant: the payment history never sums past Amount, and the
// debt is paid exactly when the remainder drops below AmountEpsilon.
type Debt struct {
	DebtID          string          `json:"debtID"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"` // total owed, > 0
	DueDate         time.Time       `json:"dueDate"`
	IsReceivable    bool            `json:"isReceivable"`
	LinkedAccountID string          `json:"linkedAccountID"` // empty when not linked
	Status          DebtStatus      `json:"status"`
	Currency        string          `json:"currency"`
	PaymentHistory  []PaymentRecord `json:"paymentHistory"`
	AuditFields
}

// PaidTotal sums the payment history.
func (d *Debt) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.PaymentHistory {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining is the unpaid portion of the debt.
func (d *Debt) Remaining() decimal.Decimal {
	return d.Amount.Sub(d.PaidTotal())
}

// ApplyPayment records a partial payment. It rejects payments against a paid
// debt, non-positive amounts, and amounts exceeding the remainder; a rejected
// payment changes nothing. On acceptance it appends to the history, derives
// the new status and returns a pending income (receivable) or spending
// (payable) transaction against the linked account for the caller to persist
// and approve. Without a linked account no transaction is emitted.
func (d *Debt) ApplyPayment(amount decimal.Decimal, date time.Time, notes string) (*Transaction, error) {
	if d.Status == DebtPaid {
		return nil, fmt.Errorf("debt %s is already paid", d.DebtID)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	remaining := d.Remaining()
	if amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("payment %s exceeds remaining debt %s", amount, remaining)
	}

	d.PaymentHistory = append(d.PaymentHistory, PaymentRecord{Date: Day(date), Amount: amount, Notes: notes})
	if d.Remaining().LessThan(AmountEpsilon) {
		d.Status = DebtPaid
	} else {
		d.Status = DebtPartial
	}

	if d.LinkedAccountID == "" {
		return nil, nil
	}

	txn := &Transaction{
		Date:            Day(date),
		Amount:          amount,
		TransactionType: TypeSpending,
		FromAccountID:   d.LinkedAccountID,
		Description:     fmt.Sprintf("Debt payment: %s", d.Description),
		Status:          StatusPending,
		Currency:        d.Currency,
	}
	if d.IsReceivable {
		txn.TransactionType = TypeIncome
		txn.FromAccountID = ""
		txn.ToAccountID = d.LinkedAccountID
		txn.Description = fmt.Sprintf("Received payment for: %s", d.Description)
	}
	return txn, nil
}

// MarkPaid settles the remainder in one shot. Already-paid debts are a no-op;
// a remainder at or below zero is silently marked paid without emitting a
// transaction.
func (d *Debt) MarkPaid(date time.Time) (*Transaction, error) {
	if d.Status == DebtPaid {
		return nil, nil
	}
	remaining := d.Remaining()
	if remaining.LessThanOrEqual(decimal.Zero) {
		d.Status = DebtPaid
		return nil, nil
	}
	return d.ApplyPayment(remaining, date, "Marked as paid")
}
