package models

import (
	"time"

	"shg-service/internal/finance"
)

// Group represents a self-help group and its collection calendar
type Group struct {
	ID                    int               `json:"id" db:"id"`
	Name                  string            `json:"name" db:"name"`
	LeaderID              int               `json:"leaderId" db:"leader_id"`
	CollectionFrequency   finance.Frequency `json:"collectionFrequency" db:"collection_frequency"`
	CollectionDayOfMonth  int               `json:"collectionDayOfMonth,omitempty" db:"collection_day_of_month"`
	CollectionDayOfWeek   finance.Weekday   `json:"collectionDayOfWeek,omitempty" db:"collection_day_of_week"`
	CollectionWeekOfMonth int               `json:"collectionWeekOfMonth,omitempty" db:"collection_week_of_month"`
	MonthlyContribution   float64           `json:"monthlyContribution" db:"monthly_contribution"`
	InterestRate          float64           `json:"interestRate" db:"interest_rate"`
	CashInHand            float64           `json:"cashInHand" db:"cash_in_hand"`
	CashInBank            float64           `json:"cashInBank" db:"cash_in_bank"`
	CreatedAt             time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time         `json:"updatedAt" db:"updated_at"`
}

// Schedule returns the group's collection schedule. Anchors that do not
// apply to the frequency are carried along and ignored by the calculation.
func (g *Group) Schedule() finance.Schedule {
	return finance.Schedule{
		Frequency:   g.CollectionFrequency,
		DayOfMonth:  g.CollectionDayOfMonth,
		DayOfWeek:   g.CollectionDayOfWeek,
		WeekOfMonth: g.CollectionWeekOfMonth,
	}
}

// GroupCreate represents a request to start a new group
type GroupCreate struct {
	Name                  string            `json:"name" validate:"required,min=2,max=100"`
	CollectionFrequency   finance.Frequency `json:"collectionFrequency" validate:"required,oneof=WEEKLY FORTNIGHTLY MONTHLY YEARLY"`
	CollectionDayOfMonth  int               `json:"collectionDayOfMonth" validate:"omitempty,min=1,max=31"`
	CollectionDayOfWeek   finance.Weekday   `json:"collectionDayOfWeek" validate:"omitempty,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	CollectionWeekOfMonth int               `json:"collectionWeekOfMonth" validate:"omitempty,min=1,max=4"`
	MonthlyContribution   float64           `json:"monthlyContribution" validate:"gte=0"`
	InterestRate          float64           `json:"interestRate" validate:"gte=0,lte=100"`
	CashInHand            float64           `json:"cashInHand" validate:"gte=0"`
	CashInBank            float64           `json:"cashInBank" validate:"gte=0"`
}

// ToGroup converts GroupCreate to Group
func (g *GroupCreate) ToGroup(leaderID int) *Group {
	return &Group{
		Name:                  g.Name,
		LeaderID:              leaderID,
		CollectionFrequency:   g.CollectionFrequency,
		CollectionDayOfMonth:  g.CollectionDayOfMonth,
		CollectionDayOfWeek:   g.CollectionDayOfWeek,
		CollectionWeekOfMonth: g.CollectionWeekOfMonth,
		MonthlyContribution:   finance.Round2(g.MonthlyContribution),
		InterestRate:          g.InterestRate,
		CashInHand:            finance.Round2(g.CashInHand),
		CashInBank:            finance.Round2(g.CashInBank),
	}
}

// GroupUpdate represents a partial update of a group's settings. Cash
// balances are owned by period close and cannot be edited here.
type GroupUpdate struct {
	Name                  *string            `json:"name" validate:"omitempty,min=2,max=100"`
	CollectionFrequency   *finance.Frequency `json:"collectionFrequency" validate:"omitempty,oneof=WEEKLY FORTNIGHTLY MONTHLY YEARLY"`
	CollectionDayOfMonth  *int               `json:"collectionDayOfMonth" validate:"omitempty,min=1,max=31"`
	CollectionDayOfWeek   *finance.Weekday   `json:"collectionDayOfWeek" validate:"omitempty,oneof=SUNDAY MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	CollectionWeekOfMonth *int               `json:"collectionWeekOfMonth" validate:"omitempty,min=1,max=4"`
	MonthlyContribution   *float64           `json:"monthlyContribution" validate:"omitempty,gte=0"`
	InterestRate          *float64           `json:"interestRate" validate:"omitempty,gte=0,lte=100"`
}

// Apply copies the set fields onto g
func (u *GroupUpdate) Apply(g *Group) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.CollectionFrequency != nil {
		g.CollectionFrequency = *u.CollectionFrequency
	}
	if u.CollectionDayOfMonth != nil {
		g.CollectionDayOfMonth = *u.CollectionDayOfMonth
	}
	if u.CollectionDayOfWeek != nil {
		g.CollectionDayOfWeek = *u.CollectionDayOfWeek
	}
	if u.CollectionWeekOfMonth != nil {
		g.CollectionWeekOfMonth = *u.CollectionWeekOfMonth
	}
	if u.MonthlyContribution != nil {
		g.MonthlyContribution = finance.Round2(*u.MonthlyContribution)
	}
	if u.InterestRate != nil {
		g.InterestRate = *u.InterestRate
	}
}
