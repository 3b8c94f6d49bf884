package finance

import (
	"errors"
	"fmt"
)

// RuleType tags the variant of a late-fine rule.
type RuleType string

const (
	RuleDailyFixed      RuleType = "DAILY_FIXED"
	RuleDailyPercentage RuleType = "DAILY_PERCENTAGE"
	RuleTierBased       RuleType = "TIER_BASED"
)

// Valid reports whether t is a known rule type.
func (t RuleType) Valid() bool {
	switch t {
	case RuleDailyFixed, RuleDailyPercentage, RuleTierBased:
		return true
	}
	return false
}

var (
	ErrNoTiers          = errors.New("tier based rule requires at least one tier")
	ErrInvalidTierRange = errors.New("tier start day must be at least 1 and not after its end day")
	ErrNegativeAmount   = errors.New("fine amount cannot be negative")
	ErrPercentRange     = errors.New("percentage must be between 0 and 100")
)

// FineRule is a late-fine rule. The implementations are DailyFixed,
// DailyPercentage and TierBased.
type FineRule interface {
	Type() RuleType
	// Fine is the amount owed for a payment daysLate days after its due date.
	// expected is the contribution the percentage variants are applied to.
	Fine(daysLate int, expected float64) float64
	isFineRule()
}

// DailyFixed charges a flat amount per day late.
type DailyFixed struct {
	DailyAmount float64
}

// DailyPercentage charges a share of the expected contribution per day late.
type DailyPercentage struct {
	DailyPercentage float64
}

// Tier is a day range [StartDay, EndDay] with a per-day charge.
type Tier struct {
	StartDay     int
	EndDay       int
	Amount       float64
	IsPercentage bool
}

// TierBased picks the first tier whose range contains the days-late count and
// applies that tier's daily charge to every late day.
type TierBased struct {
	Tiers []Tier
}

func (DailyFixed) Type() RuleType      { return RuleDailyFixed }
func (DailyPercentage) Type() RuleType { return RuleDailyPercentage }
func (TierBased) Type() RuleType       { return RuleTierBased }

func (DailyFixed) isFineRule()      {}
func (DailyPercentage) isFineRule() {}
func (TierBased) isFineRule()       {}

func (r DailyFixed) Fine(daysLate int, _ float64) float64 {
	if daysLate <= 0 {
		return 0
	}
	return Round2(r.DailyAmount * float64(daysLate))
}

func (r DailyPercentage) Fine(daysLate int, expected float64) float64 {
	if daysLate <= 0 {
		return 0
	}
	return Round2(expected * (r.DailyPercentage / 100) * float64(daysLate))
}

func (r TierBased) Fine(daysLate int, expected float64) float64 {
	if daysLate <= 0 {
		return 0
	}

	tier, ok := r.Match(daysLate)
	if !ok {
		return 0
	}
	return tier.daily(expected) * float64(daysLate)
}

// Match returns the first tier containing daysLate.
func (r TierBased) Match(daysLate int) (Tier, bool) {
	for _, t := range r.Tiers {
		if daysLate >= t.StartDay && daysLate <= t.EndDay {
			return t, true
		}
	}
	return Tier{}, false
}

func (t Tier) daily(expected float64) float64 {
	if t.IsPercentage {
		return expected * t.Amount / 100
	}
	return t.Amount
}

// LateFine returns the fine for daysLate under rule. A nil rule means the
// group has no enabled rule.
func LateFine(rule FineRule, daysLate int, expected float64) float64 {
	if rule == nil || daysLate <= 0 {
		return 0
	}
	return Round2(rule.Fine(daysLate, expected))
}

// CumulativeTierFine charges each late day at the rate of the tier that day
// falls in, summing across tiers. It is the alternative reading of tiered
// rules and is not used by TierBased.
func CumulativeTierFine(tiers []Tier, daysLate int, expected float64) float64 {
	rule := TierBased{Tiers: tiers}
	total := 0.0
	for day := 1; day <= daysLate; day++ {
		if t, ok := rule.Match(day); ok {
			total += t.daily(expected)
		}
	}
	return Round2(total)
}

// DefaultTiers is the schedule offered to groups that do not define their own.
func DefaultTiers() []Tier {
	return []Tier{
		{StartDay: 1, EndDay: 7, Amount: 5},
		{StartDay: 8, EndDay: 15, Amount: 10},
		{StartDay: 16, EndDay: 9999, Amount: 15},
	}
}

// ValidateTiers checks each tier on its own. Gaps and overlaps between tiers
// are allowed; lookup takes the first match.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrNoTiers
	}

	for i, t := range tiers {
		if t.StartDay < 1 || t.EndDay < t.StartDay {
			return fmt.Errorf("tier %d: %w", i+1, ErrInvalidTierRange)
		}
		if t.Amount < 0 {
			return fmt.Errorf("tier %d: %w", i+1, ErrNegativeAmount)
		}
		if t.IsPercentage && t.Amount > 100 {
			return fmt.Errorf("tier %d: %w", i+1, ErrPercentRange)
		}
	}

	return nil
}
