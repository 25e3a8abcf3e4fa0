package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// CreateTransactionRequest defines the expected JSON body for creating a
// transaction. Date uses the dateonly format (YYYY-MM-DD).
type CreateTransactionRequest struct {
	Date            string          `json:"date" binding:"required,dateonly"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transactionType" binding:"required,oneof=transfer spending income adjustment"`
	FromAccountID   string          `json:"fromAccountID"`
	ToAccountID     string          `json:"toAccountID"`
	Category        string          `json:"category"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
}

// UpdateTransactionRequest defines the JSON body for updating a pending
// transaction. Absent fields keep their current value.
type UpdateTransactionRequest struct {
	Date        *string          `json:"date" binding:"omitempty,dateonly"`
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
}

// TransactionResponse defines the JSON representation of a transaction.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transactionType"`
	FromAccountID   string          `json:"fromAccountID,omitempty"`
	ToAccountID     string          `json:"toAccountID,omitempty"`
	Status          string          `json:"status"`
	Category        string          `json:"category,omitempty"`
	Currency        string          `json:"currency"`
}

// ToTransactionResponse converts a domain transaction to its response shape.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Date:            t.Date.Format(domain.DateFormat),
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionType: string(t.TransactionType),
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Status:          string(t.Status),
		Category:        t.Category,
		Currency:        t.Currency,
	}
}

// ListTransactionsResponse wraps a list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToListTransactionsResponse converts a slice of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction) ListTransactionsResponse {
	resp := ListTransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
	for _, t := range txns {
		resp.Transactions = append(resp.Transactions, ToTransactionResponse(t))
	}
	return resp
}

// ExecuteTransactionResponse reports an execution attempt. Executed is false
// when the transaction was not pending and nothing was applied.
type ExecuteTransactionResponse struct {
	Executed    bool                `json:"executed"`
	Transaction TransactionResponse `json:"transaction"`
}
