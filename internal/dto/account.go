package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// CreateAccountRequest defines the expected JSON body for creating an account.
type CreateAccountRequest struct {
	Name        string           `json:"name" binding:"required"`
	AccountType string           `json:"accountType" binding:"required,oneof=debit credit savings"`
	Currency    string           `json:"currency" binding:"required,len=3"`
	Balance     decimal.Decimal  `json:"balance"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
	IsSavings   *bool            `json:"isSavings"`
}

// UpdateAccountRequest defines the JSON body for updating an account. All
// fields are optional; absent fields keep their current value.
type UpdateAccountRequest struct {
	Name        *string          `json:"name"`
	AccountType *string          `json:"accountType" binding:"omitempty,oneof=debit credit savings"`
	Currency    *string          `json:"currency" binding:"omitempty,len=3"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
	IsSavings   *bool            `json:"isSavings"`
}

// ReconcileAccountRequest carries the externally observed balance to force
// onto the account.
type ReconcileAccountRequest struct {
	ReportedBalance *decimal.Decimal `json:"reportedBalance" binding:"required"`
}

// AccountResponse defines the JSON representation of an account.
type AccountResponse struct {
	AccountID        string          `json:"accountID"`
	Name             string          `json:"name"`
	AccountType      string          `json:"accountType"`
	Currency         string          `json:"currency"`
	Balance          decimal.Decimal `json:"balance"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	IsSavings        bool            `json:"isSavings"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CreatedAt        string          `json:"createdAt"`
	LastUpdatedAt    string          `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain account to its response shape.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		Name:             a.Name,
		AccountType:      string(a.AccountType),
		Currency:         a.Currency,
		Balance:          a.Balance,
		CreditLimit:      a.CreditLimit,
		IsSavings:        a.IsSavings,
		AvailableBalance: a.AvailableBalance(),
		CreatedAt:        a.CreatedAt.Format(domain.DateFormat),
		LastUpdatedAt:    a.LastUpdatedAt.Format(domain.DateFormat),
	}
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToListAccountsResponse converts a slice of domain accounts.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, ToAccountResponse(a))
	}
	return resp
}

// ReconcileAccountResponse reports the reconciliation outcome: the updated
// account and the delta booked as an adjustment transaction. Adjustment is
// nil when the reported balance already matched.
type ReconcileAccountResponse struct {
	Account    AccountResponse      `json:"account"`
	Delta      decimal.Decimal      `json:"delta"`
	Adjustment *TransactionResponse `json:"adjustment,omitempty"`
}
