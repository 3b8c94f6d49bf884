package finance

import "github.com/shopspring/decimal"

// Collected is one contribution's paid amounts as seen by period close.
type Collected struct {
	TotalPaid        float64
	LoanInterestPaid float64
	LateFinePaid     float64
	// Allocation is nil when the collector did not record one.
	Allocation Allocation
}

// PeriodTotals are the aggregates written to a closed period.
type PeriodTotals struct {
	TotalCollected     float64 `json:"totalCollected"`
	InterestCollected  float64 `json:"interestCollected"`
	LateFinesCollected float64 `json:"lateFinesCollected"`
	NewContributions   float64 `json:"newContributions"`
	Cash               Split   `json:"cash"`
}

// Aggregate sums a period's contributions exactly. Each row's cash is placed
// with SplitPayment, so hand plus bank equals the total collected.
func Aggregate(rows []Collected, fallback DefaultSplit) PeriodTotals {
	var collected, interest, fines, hand, bank decimal.Decimal

	for _, r := range rows {
		collected = collected.Add(decimal.NewFromFloat(r.TotalPaid))
		interest = interest.Add(decimal.NewFromFloat(r.LoanInterestPaid))
		fines = fines.Add(decimal.NewFromFloat(r.LateFinePaid))

		split := SplitPayment(r.Allocation, r.TotalPaid, fallback)
		hand = hand.Add(decimal.NewFromFloat(split.Hand))
		bank = bank.Add(decimal.NewFromFloat(split.Bank))
	}

	return PeriodTotals{
		TotalCollected:     collected.Round(2).InexactFloat64(),
		InterestCollected:  interest.Round(2).InexactFloat64(),
		LateFinesCollected: fines.Round(2).InexactFloat64(),
		NewContributions:   collected.Sub(interest).Sub(fines).Round(2).InexactFloat64(),
		Cash: Split{
			Hand: hand.Round(2).InexactFloat64(),
			Bank: bank.Round(2).InexactFloat64(),
		},
	}
}

// Standing is the group's net worth: cash in hand and bank plus the loans
// members still owe it.
func Standing(cashInHand, cashInBank, loanAssets float64) float64 {
	return Sum2(cashInHand, cashInBank, loanAssets)
}
