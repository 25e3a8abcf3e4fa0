package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fintrack/fintrack_app/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccount_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		account     domain.Account
		amount      decimal.Decimal
		wantOK      bool
		wantBalance decimal.Decimal
	}{
		{
			name:        "debit allows overdraft",
			account:     domain.Account{AccountType: domain.AccountDebit, Balance: dec("100")},
			amount:      dec("150"),
			wantOK:      true,
			wantBalance: dec("-50"),
		},
		{
			name:        "savings rejects overdraw",
			account:     domain.Account{AccountType: domain.AccountSavings, Balance: dec("50")},
			amount:      dec("100"),
			wantOK:      false,
			wantBalance: dec("50"),
		},
		{
			name:        "savings allows exact drain",
			account:     domain.Account{AccountType: domain.AccountSavings, Balance: dec("50")},
			amount:      dec("50"),
			wantOK:      true,
			wantBalance: dec("0"),
		},
		{
			name:        "credit honors limit",
			account:     domain.Account{AccountType: domain.AccountCredit, Balance: dec("0"), CreditLimit: dec("500")},
			amount:      dec("500"),
			wantOK:      true,
			wantBalance: dec("-500"),
		},
		{
			name:        "credit rejects beyond limit",
			account:     domain.Account{AccountType: domain.AccountCredit, Balance: dec("-400"), CreditLimit: dec("500")},
			amount:      dec("101"),
			wantOK:      false,
			wantBalance: dec("-400"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.account.Withdraw(tt.amount)
			assert.Equal(t, tt.wantOK, got)
			assert.True(t, tt.wantBalance.Equal(tt.account.Balance), "balance %s, want %s", tt.account.Balance, tt.wantBalance)
		})
	}
}

func TestAccount_CreditNeverBelowLimit(t *testing.T) {
	acc := domain.Account{AccountType: domain.AccountCredit, Balance: dec("100"), CreditLimit: dec("300")}
	for _, amt := range []string{"150", "400", "100", "90", "200", "60"} {
		acc.Withdraw(dec(amt))
		assert.True(t, acc.Balance.GreaterThanOrEqual(acc.CreditLimit.Neg()),
			"balance %s dropped below -%s", acc.Balance, acc.CreditLimit)
	}
}

func TestAccount_AvailableBalance(t *testing.T) {
	tests := []struct {
		name    string
		account domain.Account
		want    decimal.Decimal
	}{
		{
			name:    "credit includes remaining line",
			account: domain.Account{AccountType: domain.AccountCredit, Balance: dec("-200"), CreditLimit: dec("500")},
			want:    dec("300"),
		},
		{
			name:    "overdrawn debit floors at zero",
			account: domain.Account{AccountType: domain.AccountDebit, Balance: dec("-50")},
			want:    dec("0"),
		},
		{
			name:    "positive debit passes through",
			account: domain.Account{AccountType: domain.AccountDebit, Balance: dec("75.50")},
			want:    dec("75.50"),
		},
		{
			name:    "savings passes through",
			account: domain.Account{AccountType: domain.AccountSavings, Balance: dec("1000")},
			want:    dec("1000"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.account.AvailableBalance()
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAccount_Reconcile(t *testing.T) {
	acc := domain.Account{AccountType: domain.AccountDebit, Balance: dec("120")}

	delta := acc.Reconcile(dec("95.50"))

	assert.True(t, dec("-24.50").Equal(delta), "delta %s", delta)
	assert.True(t, dec("95.50").Equal(acc.Balance))

	// Reconciling to the same value yields a zero delta.
	assert.True(t, acc.Reconcile(dec("95.50")).IsZero())
}
