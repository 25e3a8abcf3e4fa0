package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

func newActiveSubscription() *domain.Subscription {
	return &domain.Subscription{
		SubscriptionID:  "s1",
		Name:            "Netflix",
		Amount:          dec("17.90"),
		Frequency:       domain.FrequencyMonthly,
		NextPaymentDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		LinkedAccountID: "acc1",
		Status:          domain.SubscriptionActive,
		Currency:        "CHF",
		Category:        "Entertainment",
	}
}

func TestSubscription_GeneratePendingTransaction(t *testing.T) {
	sub := newActiveSubscription()

	txn := sub.GeneratePendingTransaction()
	require.NotNil(t, txn)
	assert.Equal(t, domain.TypeSpending, txn.TransactionType)
	assert.Equal(t, domain.StatusPending, txn.Status)
	assert.Equal(t, "acc1", txn.FromAccountID)
	assert.True(t, sub.Amount.Equal(txn.Amount))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "Entertainment", txn.Category)
	assert.Equal(t, "CHF", txn.Currency)
}

func TestSubscription_NoBillingWhenInactiveOrUnlinked(t *testing.T) {
	t.Run("paused", func(t *testing.T) {
		sub := newActiveSubscription()
		sub.Status = domain.SubscriptionPaused
		assert.Nil(t, sub.GeneratePendingTransaction())
	})
	t.Run("canceled", func(t *testing.T) {
		sub := newActiveSubscription()
		sub.Status = domain.SubscriptionCanceled
		assert.Nil(t, sub.GeneratePendingTransaction())
	})
	t.Run("no linked account", func(t *testing.T) {
		sub := newActiveSubscription()
		sub.LinkedAccountID = ""
		assert.Nil(t, sub.GeneratePendingTransaction())
	})
}

func TestSubscription_AdvanceNextPaymentDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency domain.Frequency
		from      time.Time
		want      time.Time
	}{
		{
			name:      "monthly",
			frequency: domain.FrequencyMonthly,
			from:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps Jan 31 to Feb 29",
			frequency: domain.FrequencyMonthly,
			from:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps to Feb 28 outside leap years",
			frequency: domain.FrequencyMonthly,
			from:      time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "quarterly",
			frequency: domain.FrequencyQuarterly,
			from:      time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly clamps Feb 29",
			frequency: domain.FrequencyYearly,
			from:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "unrecognized frequency defaults to monthly",
			frequency: "weekly",
			from:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			want:      time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newActiveSubscription()
			sub.Frequency = tt.frequency
			sub.NextPaymentDate = tt.from

			got := sub.AdvanceNextPaymentDate()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, sub.NextPaymentDate)
		})
	}
}
