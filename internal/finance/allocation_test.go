package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSplit(t *testing.T) {
	split := DefaultSplit{BankPercent: DefaultBankPercent}.Split(100)
	assert.Equal(t, Split{Hand: 30, Bank: 70}, split)

	split = DefaultSplit{BankPercent: 70}.Split(33.33)
	assert.Equal(t, 33.33, Sum2(split.Hand, split.Bank))
	assert.Equal(t, 23.33, split.Bank)

	split = DefaultSplit{BankPercent: 150}.Split(10)
	assert.Equal(t, Split{Hand: 3, Bank: 7}, split, "out of range percent falls back to default")
}

func TestExplicitAllocation(t *testing.T) {
	a := ExplicitAllocation{
		ContributionToHand: 100,
		ContributionToBank: 400,
		InterestToHand:     25.5,
		InterestToBank:     74.5,
	}

	assert.Equal(t, Split{Hand: 125.5, Bank: 474.5}, a.Split(0))
	assert.Equal(t, 600.0, a.Total())
	assert.NoError(t, a.Validate())
	assert.ErrorIs(t, ExplicitAllocation{InterestToBank: -1}.Validate(), ErrAllocationNegative)
}

func TestSplitPayment(t *testing.T) {
	fallback := DefaultSplit{BankPercent: 70}

	tests := []struct {
		name      string
		alloc     Allocation
		totalPaid float64
		want      Split
	}{
		{"no allocation", nil, 600, Split{Hand: 180, Bank: 420}},
		{"default split", DefaultSplit{BankPercent: 50}, 600, Split{Hand: 300, Bank: 300}},
		{"explicit covers payment", ExplicitAllocation{ContributionToHand: 500, InterestToBank: 100}, 600, Split{Hand: 500, Bank: 100}},
		{"explicit remainder uses fallback", ExplicitAllocation{ContributionToHand: 100}, 600, Split{Hand: 250, Bank: 350}},
		{"explicit above payment is replaced", ExplicitAllocation{ContributionToHand: 600}, 100, Split{Hand: 30, Bank: 70}},
		{"nothing paid", ExplicitAllocation{}, 0, Split{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPayment(tt.alloc, tt.totalPaid, fallback)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Round2(tt.totalPaid), Sum2(got.Hand, got.Bank))
		})
	}
}
