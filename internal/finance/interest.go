package finance

// Frequency is how often a group collects contributions.
type Frequency string

const (
	Weekly      Frequency = "WEEKLY"
	Fortnightly Frequency = "FORTNIGHTLY"
	Monthly     Frequency = "MONTHLY"
	Yearly      Frequency = "YEARLY"
)

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Fortnightly, Monthly, Yearly:
		return true
	}
	return false
}

// PeriodsPerYear returns the number of collection periods in a year.
// Unknown frequencies are treated as monthly.
func PeriodsPerYear(f Frequency) int {
	switch f {
	case Weekly:
		return 52
	case Fortnightly:
		return 26
	case Yearly:
		return 1
	default:
		return 12
	}
}

// PeriodInterest applies an annual percentage rate to a loan balance for one
// collection period.
func PeriodInterest(loanBalance, annualRatePercent float64, f Frequency) float64 {
	if loanBalance == 0 || annualRatePercent == 0 {
		return 0
	}

	periodRate := annualRatePercent / float64(PeriodsPerYear(f))
	return Round2(loanBalance * periodRate / 100)
}

// PeriodInterestFromDecimal is PeriodInterest for a rate expressed as a
// fraction (0.12 for 12%).
func PeriodInterestFromDecimal(loanBalance, annualRate float64, f Frequency) float64 {
	return PeriodInterest(loanBalance, annualRate*100, f)
}
