package models

import (
	"time"

	"shg-service/internal/finance"
)

// ContributionStatus is where a contribution stands against its minimum due
type ContributionStatus = finance.PaymentStatus

const (
	ContributionStatusPending = finance.StatusPending
	ContributionStatusPartial = finance.StatusPartial
	ContributionStatusPaid    = finance.StatusPaid
	ContributionStatusOverdue = finance.StatusOverdue
)

// Contribution represents what one member owes and has paid in one period
type Contribution struct {
	ID                         int                `json:"id" db:"id"`
	PeriodID                   int                `json:"periodId" db:"period_id"`
	MemberID                   int                `json:"memberId" db:"member_id"`
	MemberName                 string             `json:"memberName,omitempty" db:"-"`
	CompulsoryContributionDue  float64            `json:"compulsoryContributionDue" db:"compulsory_contribution_due"`
	LoanInterestDue            float64            `json:"loanInterestDue" db:"loan_interest_due"`
	LateFineAmount             float64            `json:"lateFineAmount" db:"late_fine_amount"`
	CarryForwardAmount         float64            `json:"carryForwardAmount" db:"carry_forward_amount"`
	MinimumDueAmount           float64            `json:"minimumDueAmount" db:"minimum_due_amount"`
	CompulsoryContributionPaid float64            `json:"compulsoryContributionPaid" db:"compulsory_contribution_paid"`
	LoanInterestPaid           float64            `json:"loanInterestPaid" db:"loan_interest_paid"`
	LateFinePaid               float64            `json:"lateFinePaid" db:"late_fine_paid"`
	TotalPaid                  float64            `json:"totalPaid" db:"total_paid"`
	RemainingAmount            float64            `json:"remainingAmount" db:"remaining_amount"`
	CreditBalance              float64            `json:"creditBalance" db:"credit_balance"`
	DaysLate                   int                `json:"daysLate" db:"days_late"`
	DueDate                    time.Time          `json:"dueDate" db:"due_date"`
	Status                     ContributionStatus `json:"status" db:"status"`
	PaidDate                   *time.Time         `json:"paidDate,omitempty" db:"paid_date"`
	CashAllocation             *CashAllocation    `json:"cashAllocation,omitempty" db:"cash_allocation"`
	CreatedAt                  time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt                  time.Time          `json:"updatedAt" db:"updated_at"`
}

// Dues returns the amounts owed
func (c *Contribution) Dues() finance.Dues {
	return finance.Dues{
		Compulsory:   c.CompulsoryContributionDue,
		Interest:     c.LoanInterestDue,
		LateFine:     c.LateFineAmount,
		CarryForward: c.CarryForwardAmount,
	}
}

// Settle recomputes the minimum due and applies the stored total paid to it.
// paidAt is recorded when the contribution becomes PAID.
func (c *Contribution) Settle(paidAt time.Time) {
	c.MinimumDueAmount = c.Dues().Minimum()

	total := c.TotalPaid
	s := finance.Settle(c.MinimumDueAmount, finance.Payment{Total: &total})
	c.apply(s, paidAt)
}

// ApplyPayment records p and settles against the current minimum due
func (c *Contribution) ApplyPayment(p finance.Payment, paidAt time.Time) {
	c.CompulsoryContributionPaid = finance.Round2(p.Compulsory)
	c.LoanInterestPaid = finance.Round2(p.Interest)
	c.LateFinePaid = finance.Round2(p.LateFine)
	c.MinimumDueAmount = c.Dues().Minimum()

	c.apply(finance.Settle(c.MinimumDueAmount, p), paidAt)
}

func (c *Contribution) apply(s finance.Settlement, paidAt time.Time) {
	c.TotalPaid = s.TotalPaid
	c.RemainingAmount = s.Remaining
	c.CreditBalance = s.CreditBalance
	c.Status = s.Status

	if s.Status == finance.StatusPaid {
		if c.PaidDate == nil {
			t := paidAt
			c.PaidDate = &t
		}
	} else {
		c.PaidDate = nil
	}
}

// Collected is the contribution as seen by period aggregation
func (c *Contribution) Collected(defaultBankPercent float64) finance.Collected {
	out := finance.Collected{
		TotalPaid:        c.TotalPaid,
		LoanInterestPaid: c.LoanInterestPaid,
		LateFinePaid:     c.LateFinePaid,
	}
	if c.CashAllocation != nil {
		if alloc, err := c.CashAllocation.Allocation(defaultBankPercent); err == nil {
			out.Allocation = alloc
		}
	}
	return out
}

// PaymentUpdate represents a payment submission against a contribution.
// Omitted paid fields keep their stored values.
type PaymentUpdate struct {
	CompulsoryContributionPaid *float64        `json:"compulsoryContributionPaid" validate:"omitempty,gte=0"`
	LoanInterestPaid           *float64        `json:"loanInterestPaid" validate:"omitempty,gte=0"`
	LateFinePaid               *float64        `json:"lateFinePaid" validate:"omitempty,gte=0"`
	TotalPaid                  *float64        `json:"totalPaid" validate:"omitempty,gte=0"`
	SubmissionDate             *Timestamp      `json:"submissionDate"`
	CashAllocation             *CashAllocation `json:"cashAllocation"`
}

// Payment merges the update with the stored paid amounts
func (u *PaymentUpdate) Payment(c *Contribution) finance.Payment {
	p := finance.Payment{
		Compulsory: c.CompulsoryContributionPaid,
		Interest:   c.LoanInterestPaid,
		LateFine:   c.LateFinePaid,
		Total:      u.TotalPaid,
	}
	if u.CompulsoryContributionPaid != nil {
		p.Compulsory = *u.CompulsoryContributionPaid
	}
	if u.LoanInterestPaid != nil {
		p.Interest = *u.LoanInterestPaid
	}
	if u.LateFinePaid != nil {
		p.LateFine = *u.LateFinePaid
	}
	return p
}

// ContributionUpsert represents a request to establish a member's dues in
// the current period. Omitted dues default from the group and the member's
// loans.
type ContributionUpsert struct {
	MemberID                  int        `json:"memberId" validate:"required,gt=0"`
	CompulsoryContributionDue *float64   `json:"compulsoryContributionDue" validate:"omitempty,gte=0"`
	LoanInterestDue           *float64   `json:"loanInterestDue" validate:"omitempty,gte=0"`
	CarryForwardAmount        *float64   `json:"carryForwardAmount" validate:"omitempty,gte=0"`
	DueDate                   *Timestamp `json:"dueDate"`
}

// CurrentContributions is the open period with its contributions
type CurrentContributions struct {
	Period               *PeriodView     `json:"period"`
	Contributions        []*Contribution `json:"contributions"`
	LatestCashAllocation *CashAllocation `json:"latestCashAllocation,omitempty"`
}
