package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shg-service/internal/finance"
)

func TestContribution_ApplyPayment(t *testing.T) {
	paidAt := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		payment       finance.Payment
		wantStatus    ContributionStatus
		wantRemaining float64
		wantCredit    float64
		wantPaidDate  bool
	}{
		{"nothing paid", finance.Payment{}, ContributionStatusPending, 600, 0, false},
		{"partial", finance.Payment{Compulsory: 500}, ContributionStatusPartial, 100, 0, false},
		{"exact", finance.Payment{Compulsory: 500, Interest: 100}, ContributionStatusPaid, 0, 0, true},
		{"overpaid", finance.Payment{Compulsory: 700, Interest: 100}, ContributionStatusPaid, 0, 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contribution{CompulsoryContributionDue: 500, LoanInterestDue: 100}
			c.ApplyPayment(tt.payment, paidAt)

			assert.Equal(t, 600.0, c.MinimumDueAmount)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.wantRemaining, c.RemainingAmount)
			assert.Equal(t, tt.wantCredit, c.CreditBalance)
			if tt.wantPaidDate {
				require.NotNil(t, c.PaidDate)
				assert.Equal(t, paidAt, *c.PaidDate)
			} else {
				assert.Nil(t, c.PaidDate)
			}
		})
	}
}

func TestContribution_SettleKeepsExplicitTotal(t *testing.T) {
	c := &Contribution{
		CompulsoryContributionDue: 500,
		LoanInterestDue:           100,
		TotalPaid:                 600,
	}
	c.Settle(time.Now())
	assert.Equal(t, ContributionStatusPaid, c.Status)

	c.LateFineAmount = 50
	c.Settle(time.Now())
	assert.Equal(t, 650.0, c.MinimumDueAmount)
	assert.Equal(t, 50.0, c.RemainingAmount)
	assert.Equal(t, ContributionStatusPartial, c.Status)
	assert.Nil(t, c.PaidDate)
}

func TestPaymentUpdate_Payment(t *testing.T) {
	stored := &Contribution{CompulsoryContributionPaid: 200, LoanInterestPaid: 50}
	interest := 100.0
	u := &PaymentUpdate{LoanInterestPaid: &interest}

	p := u.Payment(stored)
	assert.Equal(t, 200.0, p.Compulsory)
	assert.Equal(t, 100.0, p.Interest)
	assert.Nil(t, p.Total)
	assert.Equal(t, 300.0, p.TotalPaid())
}

func TestContribution_Collected(t *testing.T) {
	c := &Contribution{TotalPaid: 100, LoanInterestPaid: 10}
	assert.Nil(t, c.Collected(70).Allocation)

	c.CashAllocation = NewCashAllocation(finance.ExplicitAllocation{ContributionToHand: 100})
	assert.Equal(t, finance.ExplicitAllocation{ContributionToHand: 100}, c.Collected(70).Allocation)
}
