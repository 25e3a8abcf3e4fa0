package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// CreateDebtRequest defines the expected JSON body for creating a debt.
type CreateDebtRequest struct {
	Description     string          `json:"description" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	DueDate         string          `json:"dueDate" binding:"required,dateonly"`
	IsReceivable    bool            `json:"isReceivable"`
	LinkedAccountID string          `json:"linkedAccountID"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
}

// UpdateDebtRequest defines the JSON body for updating a debt. Absent fields
// keep their current value.
type UpdateDebtRequest struct {
	Description     *string `json:"description"`
	DueDate         *string `json:"dueDate" binding:"omitempty,dateonly"`
	LinkedAccountID *string `json:"linkedAccountID"`
}

// DebtPaymentRequest records a partial payment against a debt. Date defaults
// to today when absent.
type DebtPaymentRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Date   string           `json:"date" binding:"omitempty,dateonly"`
	Notes  string           `json:"notes"`
}

// PaymentRecordResponse is one payment-history entry.
type PaymentRecordResponse struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// DebtResponse defines the JSON representation of a debt.
type DebtResponse struct {
	DebtID          string                  `json:"debtID"`
	Description     string                  `json:"description"`
	Amount          decimal.Decimal         `json:"amount"`
	DueDate         string                  `json:"dueDate"`
	IsReceivable    bool                    `json:"isReceivable"`
	LinkedAccountID string                  `json:"linkedAccountID,omitempty"`
	Status          string                  `json:"status"`
	Currency        string                  `json:"currency"`
	PaidTotal       decimal.Decimal         `json:"paidTotal"`
	Remaining       decimal.Decimal         `json:"remaining"`
	PaymentHistory  []PaymentRecordResponse `json:"paymentHistory"`
}

// ToDebtResponse converts a domain debt to its response shape.
func ToDebtResponse(d domain.Debt) DebtResponse {
	history := make([]PaymentRecordResponse, 0, len(d.PaymentHistory))
	for _, p := range d.PaymentHistory {
		history = append(history, PaymentRecordResponse{
			Date:   p.Date.Format(domain.DateFormat),
			Amount: p.Amount,
			Notes:  p.Notes,
		})
	}
	return DebtResponse{
		DebtID:          d.DebtID,
		Description:     d.Description,
		Amount:          d.Amount,
		DueDate:         d.DueDate.Format(domain.DateFormat),
		IsReceivable:    d.IsReceivable,
		LinkedAccountID: d.LinkedAccountID,
		Status:          string(d.Status),
		Currency:        d.Currency,
		PaidTotal:       d.PaidTotal(),
		Remaining:       d.Remaining(),
		PaymentHistory:  history,
	}
}

// ListDebtsResponse wraps a list of debts.
type ListDebtsResponse struct {
	Debts []DebtResponse `json:"debts"`
}

// ToListDebtsResponse converts a slice of domain debts.
func ToListDebtsResponse(debts []domain.Debt) ListDebtsResponse {
	resp := ListDebtsResponse{Debts: make([]DebtResponse, 0, len(debts))}
	for _, d := range debts {
		resp.Debts = append(resp.Debts, ToDebtResponse(d))
	}
	return resp
}

// DebtPaymentResponse reports the debt after a payment plus the pending
// transaction emitted against the linked account, when one exists.
type DebtPaymentResponse struct {
	Debt        DebtResponse         `json:"debt"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}
