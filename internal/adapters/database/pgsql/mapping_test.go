package pgsql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack_app/internal/core/domain"
	"github.com/fintrack/fintrack_app/internal/models"
)

func TestDebtMapper_RoundTripPreservesHistory(t *testing.T) {
	debt := domain.Debt{
		DebtID:          "d1",
		Description:     "Loan to Anna",
		Amount:          decimal.RequireFromString("250.50"),
		DueDate:         time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		IsReceivable:    true,
		LinkedAccountID: "acc1",
		Status:          domain.DebtPartial,
		Currency:        "CHF",
		PaymentHistory: []domain.PaymentRecord{
			{Date: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("100"), Notes: "first"},
			{Date: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("50.50")},
		},
	}

	m := toDebtModel(debt)
	// History dates persist as ISO day strings inside the JSONB column.
	assert.Equal(t, "2024-06-05", m.PaymentHistory[0].Date)

	back, err := toDebtDomain(m)
	require.NoError(t, err)

	assert.Equal(t, debt.DebtID, back.DebtID)
	assert.Equal(t, debt.Status, back.Status)
	assert.Equal(t, debt.IsReceivable, back.IsReceivable)
	require.Len(t, back.PaymentHistory, 2)
	assert.Equal(t, debt.PaymentHistory[0].Date, back.PaymentHistory[0].Date)
	assert.True(t, debt.PaymentHistory[1].Amount.Equal(back.PaymentHistory[1].Amount))
	assert.True(t, debt.Remaining().Equal(back.Remaining()))
}

func TestDebtMapper_RejectsMalformedHistoryDate(t *testing.T) {
	m := models.Debt{
		DebtID:   "d1",
		Currency: "CHF",
		PaymentHistory: []models.PaymentRecord{
			{Date: "05.06.2024", Amount: decimal.RequireFromString("10")},
		},
	}

	_, err := toDebtDomain(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payment date")
}

func TestNullableAccountReference(t *testing.T) {
	assert.False(t, nullable("").Valid)

	ref := nullable("acc1")
	assert.True(t, ref.Valid)
	assert.Equal(t, "acc1", ref.String)
}
