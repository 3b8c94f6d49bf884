package models

import (
	"time"

	"shg-service/internal/finance"
)

// PeriodStatus defines the lifecycle state of a period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// Period represents one collection cycle of a group
type Period struct {
	ID                 int          `json:"id" db:"id"`
	GroupID            int          `json:"groupId" db:"group_id"`
	SequenceNumber     int          `json:"sequenceNumber" db:"sequence_number"`
	StartDate          time.Time    `json:"startDate" db:"start_date"`
	Status             PeriodStatus `json:"status" db:"status"`
	StandingAtStart    float64      `json:"standingAtStart" db:"standing_at_start"`
	OpeningCashInHand  float64      `json:"openingCashInHand" db:"opening_cash_in_hand"`
	OpeningCashInBank  float64      `json:"openingCashInBank" db:"opening_cash_in_bank"`
	CashInHandAtEnd    float64      `json:"cashInHandAtEnd" db:"cash_in_hand_at_end"`
	CashInBankAtEnd    float64      `json:"cashInBankAtEnd" db:"cash_in_bank_at_end"`
	TotalStandingAtEnd float64      `json:"totalStandingAtEnd" db:"total_standing_at_end"`
	TotalCollection    float64      `json:"totalCollection" db:"total_collection"`
	InterestEarned     float64      `json:"interestEarned" db:"interest_earned"`
	LateFinesCollected float64      `json:"lateFinesCollected" db:"late_fines_collected"`
	NewContributions   float64      `json:"newContributions" db:"new_contributions"`
	LoanAssetsAtEnd    float64      `json:"loanAssetsAtEnd" db:"loan_assets_at_end"`
	MembersPresent     int          `json:"membersPresent" db:"members_present"`
	ClosedAt           *time.Time   `json:"closedAt,omitempty" db:"closed_at"`
	ClosedBy           *int         `json:"closedBy,omitempty" db:"closed_by"`
	CreatedAt          time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time    `json:"updatedAt" db:"updated_at"`
}

// IsOpen reports whether the period still accepts payments
func (p *Period) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// PeriodOpenRequest represents a request to open a period. When StartDate is
// omitted the period starts today.
type PeriodOpenRequest struct {
	StartDate *Timestamp `json:"startDate"`
}

// PeriodView is a period together with its derived calendar
type PeriodView struct {
	*Period
	PeriodType finance.Frequency `json:"periodType"`
	DueDate    time.Time         `json:"dueDate"`
	EndDate    time.Time         `json:"endDate"`
}

// NewPeriodView derives the calendar of p from the group's schedule
func NewPeriodView(p *Period, schedule finance.Schedule) *PeriodView {
	return &PeriodView{
		Period:     p,
		PeriodType: schedule.Frequency,
		DueDate:    finance.PeriodDueDate(schedule, p.StartDate),
		EndDate:    finance.PeriodEndDate(schedule.Frequency, p.StartDate),
	}
}

// PeriodCloseRequest carries the optional default cash split for the close
type PeriodCloseRequest struct {
	BankPercent *float64 `json:"bankPercent" validate:"omitempty,gte=0,lte=100"`
}

// PeriodCloseResult describes a completed close
type PeriodCloseResult struct {
	ClosedPeriod        *Period              `json:"closedPeriod"`
	NextPeriod          *Period              `json:"nextPeriod"`
	NextPeriodReused    bool                 `json:"nextPeriodReused"`
	ContributionsSeeded int                  `json:"contributionsSeeded"`
	Totals              finance.PeriodTotals `json:"totals"`
}
