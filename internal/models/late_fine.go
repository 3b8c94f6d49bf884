package models

import (
	"errors"
	"time"

	"shg-service/internal/finance"
)

var (
	ErrDailyAmountRequired     = errors.New("dailyAmount is required for DAILY_FIXED rules")
	ErrDailyPercentageRequired = errors.New("dailyPercentage is required for DAILY_PERCENTAGE rules")
)

// LateFineRule represents a group's stored late-fine configuration
type LateFineRule struct {
	ID              int              `json:"id" db:"id"`
	GroupID         int              `json:"groupId" db:"group_id"`
	RuleType        finance.RuleType `json:"ruleType" db:"rule_type"`
	IsEnabled       bool             `json:"isEnabled" db:"is_enabled"`
	DailyAmount     *float64         `json:"dailyAmount,omitempty" db:"daily_amount"`
	DailyPercentage *float64         `json:"dailyPercentage,omitempty" db:"daily_percentage"`
	Tiers           []*LateFineTier  `json:"tiers,omitempty" db:"-"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// LateFineTier represents one day range of a tier based rule
type LateFineTier struct {
	ID           int     `json:"id" db:"id"`
	RuleID       int     `json:"ruleId" db:"rule_id"`
	StartDay     int     `json:"startDay" db:"start_day"`
	EndDay       int     `json:"endDay" db:"end_day"`
	Amount       float64 `json:"amount" db:"amount"`
	IsPercentage bool    `json:"isPercentage" db:"is_percentage"`
}

// Policy returns the fine rule in effect, or nil when fines are off
func (r *LateFineRule) Policy() finance.FineRule {
	if r == nil || !r.IsEnabled {
		return nil
	}

	switch r.RuleType {
	case finance.RuleDailyFixed:
		if r.DailyAmount == nil {
			return nil
		}
		return finance.DailyFixed{DailyAmount: *r.DailyAmount}
	case finance.RuleDailyPercentage:
		if r.DailyPercentage == nil {
			return nil
		}
		return finance.DailyPercentage{DailyPercentage: *r.DailyPercentage}
	case finance.RuleTierBased:
		tiers := make([]finance.Tier, 0, len(r.Tiers))
		for _, t := range r.Tiers {
			tiers = append(tiers, finance.Tier{
				StartDay:     t.StartDay,
				EndDay:       t.EndDay,
				Amount:       t.Amount,
				IsPercentage: t.IsPercentage,
			})
		}
		return finance.TierBased{Tiers: tiers}
	}

	return nil
}

// LateFineRuleInput represents a request to replace a group's rule
type LateFineRuleInput struct {
	RuleType        finance.RuleType     `json:"ruleType" validate:"required,oneof=DAILY_FIXED DAILY_PERCENTAGE TIER_BASED"`
	IsEnabled       *bool                `json:"isEnabled"`
	DailyAmount     *float64             `json:"dailyAmount" validate:"omitempty,gt=0"`
	DailyPercentage *float64             `json:"dailyPercentage" validate:"omitempty,gte=0,lte=100"`
	Tiers           []*LateFineTierInput `json:"tiers" validate:"omitempty,dive"`
	UseDefaultTiers bool                 `json:"useDefaultTiers"`
}

// LateFineTierInput represents one tier in a rule request
type LateFineTierInput struct {
	StartDay     int     `json:"startDay" validate:"gte=1"`
	EndDay       int     `json:"endDay" validate:"gtefield=StartDay"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	IsPercentage bool    `json:"isPercentage"`
}

// ToRule builds the stored rule, checking that the parameters of the
// chosen variant are present and consistent
func (in *LateFineRuleInput) ToRule(groupID int) (*LateFineRule, error) {
	rule := &LateFineRule{
		GroupID:   groupID,
		RuleType:  in.RuleType,
		IsEnabled: in.IsEnabled == nil || *in.IsEnabled,
	}

	switch in.RuleType {
	case finance.RuleDailyFixed:
		if in.DailyAmount == nil {
			return nil, ErrDailyAmountRequired
		}
		amount := finance.Round2(*in.DailyAmount)
		rule.DailyAmount = &amount
	case finance.RuleDailyPercentage:
		if in.DailyPercentage == nil {
			return nil, ErrDailyPercentageRequired
		}
		pct := *in.DailyPercentage
		rule.DailyPercentage = &pct
	case finance.RuleTierBased:
		var tiers []finance.Tier
		if len(in.Tiers) == 0 && in.UseDefaultTiers {
			tiers = finance.DefaultTiers()
		} else {
			for _, t := range in.Tiers {
				tiers = append(tiers, finance.Tier{
					StartDay:     t.StartDay,
					EndDay:       t.EndDay,
					Amount:       t.Amount,
					IsPercentage: t.IsPercentage,
				})
			}
		}
		if err := finance.ValidateTiers(tiers); err != nil {
			return nil, err
		}
		for _, t := range tiers {
			rule.Tiers = append(rule.Tiers, &LateFineTier{
				StartDay:     t.StartDay,
				EndDay:       t.EndDay,
				Amount:       t.Amount,
				IsPercentage: t.IsPercentage,
			})
		}
	default:
		return nil, errors.New("unknown rule type")
	}

	return rule, nil
}
