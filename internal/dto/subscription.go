package dto

import (
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

// CreateSubscriptionRequest defines the expected JSON body for creating a
// subscription.
type CreateSubscriptionRequest struct {
	Name            string          `json:"name" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Frequency       string          `json:"frequency" binding:"required,oneof=monthly quarterly yearly"`
	NextPaymentDate string          `json:"nextPaymentDate" binding:"required,dateonly"`
	LinkedAccountID string          `json:"linkedAccountID"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	Category        string          `json:"category"`
}

// UpdateSubscriptionRequest defines the JSON body for updating a
// subscription. Absent fields keep their current value.
type UpdateSubscriptionRequest struct {
	Name            *string          `json:"name"`
	Amount          *decimal.Decimal `json:"amount"`
	Frequency       *string          `json:"frequency" binding:"omitempty,oneof=monthly quarterly yearly"`
	NextPaymentDate *string          `json:"nextPaymentDate" binding:"omitempty,dateonly"`
	LinkedAccountID *string          `json:"linkedAccountID"`
	Category        *string          `json:"category"`
}

// SubscriptionResponse defines the JSON representation of a subscription.
type SubscriptionResponse struct {
	SubscriptionID  string          `json:"subscriptionID"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Frequency       string          `json:"frequency"`
	NextPaymentDate string          `json:"nextPaymentDate"`
	LinkedAccountID string          `json:"linkedAccountID,omitempty"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	Category        string          `json:"category,omitempty"`
}

// ToSubscriptionResponse converts a domain subscription to its response shape.
func ToSubscriptionResponse(s domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionID:  s.SubscriptionID,
		Name:            s.Name,
		Amount:          s.Amount,
		Frequency:       string(s.Frequency),
		NextPaymentDate: s.NextPaymentDate.Format(domain.DateFormat),
		LinkedAccountID: s.LinkedAccountID,
		Status:          string(s.Status),
		Currency:        s.Currency,
		Category:        s.Category,
	}
}

// ListSubscriptionsResponse wraps a list of subscriptions.
type ListSubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

// ToListSubscriptionsResponse converts a slice of domain subscriptions.
func ToListSubscriptionsResponse(subs []domain.Subscription) ListSubscriptionsResponse {
	resp := ListSubscriptionsResponse{Subscriptions: make([]SubscriptionResponse, 0, len(subs))}
	for _, s := range subs {
		resp.Subscriptions = append(resp.Subscriptions, ToSubscriptionResponse(s))
	}
	return resp
}
