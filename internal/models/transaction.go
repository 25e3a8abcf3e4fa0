package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the database representation of a money movement.
// FromAccountID and ToAccountID are nullable foreign keys handled with
// sql.NullString in the repository.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	Date            time.Time       `db:"date"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
	TransactionType string          `db:"transaction_type"`
	FromAccountID   string          `db:"from_account_id"`
	ToAccountID     string          `db:"to_account_id"`
	Status          string          `db:"status"`
	Category        string          `db:"category"`
	Currency        string          `db:"currency"`
	AuditFields
}
