package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType determines which account references a transaction needs and
// in which direction money moves.
type TransactionType string

const (
	TypeTransfer   TransactionType = "transfer"
	TypeSpending   TransactionType = "spending"
	TypeIncome     TransactionType = "income"
	TypeAdjustment TransactionType = "adjustment"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCanceled  TransactionStatus = "canceled"
)

// Transaction represents a single money movement. Amount is always stored
// positive; direction is derived from the type and which account reference is
// set. Account references are weak ids resolved through the store at read
// time; a dangling reference is tolerated (the account may have been deleted).
type Transaction struct {
	TransactionID   string            `json:"transactionID"`
	Date            time.Time         `json:"date"`
	Amount          decimal.Decimal   `json:"amount"`
	Description     string            `json:"description"`
	TransactionType TransactionType   `json:"transactionType"`
	FromAccountID   string            `json:"fromAccountID"` // empty when not set
	ToAccountID     string            `json:"toAccountID"`   // empty when not set
	Status          TransactionStatus `json:"status"`
	Category        string            `json:"category"`
	Currency        string            `json:"currency"`
	AuditFields
}

// Validate checks entity-local invariants: a positive amount and the account
// references the type requires (transfer: both, spending: from, income: to,
// adjustment: either).
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transaction amount must be positive")
	}
	switch t.TransactionType {
	case TypeTransfer:
		if t.FromAccountID == "" || t.ToAccountID == "" {
			return fmt.Errorf("transfer requires both source and destination accounts")
		}
	case TypeSpending:
		if t.FromAccountID == "" {
			return fmt.Errorf("spending requires a source account")
		}
	case TypeIncome:
		if t.ToAccountID == "" {
			return fmt.Errorf("income requires a destination account")
		}
	case TypeAdjustment:
		if t.FromAccountID == "" && t.ToAccountID == "" {
			return fmt.Errorf("adjustment requires an account reference")
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.TransactionType)
	}
	return nil
}

// Execute applies the transaction to the given accounts and moves it to
// completed. Only pending transactions execute; anything else is a no-op
// returning false, which makes re-execution safe. On failure (unresolvable
// account, withdrawal denied) the transaction stays pending and no account is
// touched: for transfers the deposit only happens after a successful
// withdrawal.
func (t *Transaction) Execute(accounts map[string]*Account) bool {
	if t.Status != StatusPending {
		return false
	}

	switch t.TransactionType {
	case TypeTransfer:
		if t.FromAccountID == "" || t.ToAccountID == "" {
			return false
		}
		from, to := accounts[t.FromAccountID], accounts[t.ToAccountID]
		if from == nil || to == nil {
			return false
		}
		if !from.Withdraw(t.Amount) {
			return false
		}
		to.Deposit(t.Amount)

	case TypeSpending:
		from := accounts[t.FromAccountID]
		if from == nil || !from.Withdraw(t.Amount) {
			return false
		}

	case TypeIncome:
		to := accounts[t.ToAccountID]
		if to == nil {
			return false
		}
		to.Deposit(t.Amount)

	case TypeAdjustment:
		// The balance change was already applied through Reconcile; executing
		// an adjustment only flips its status.
		if t.FromAccountID == "" && t.ToAccountID == "" {
			return false
		}

	default:
		return false
	}

	t.Status = StatusCompleted
	return true
}
