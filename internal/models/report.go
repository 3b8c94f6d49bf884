package models

import "time"

// GroupSummary is the financial overview of a group
type GroupSummary struct {
	GroupID   int              `json:"groupId"`
	GroupName string           `json:"groupName"`
	Currency  string           `json:"currency"`
	Financial FinancialSummary `json:"financial"`
	Loans     LoanStatistics   `json:"loans"`
	Recent    []*PeriodDigest  `json:"recentActivity"`
	Trend     []*PeriodDigest  `json:"trend"`
	Generated time.Time        `json:"generatedAt"`
}

// FinancialSummary is the group's current standing
type FinancialSummary struct {
	CashInHand       float64 `json:"cashInHand"`
	CashInBank       float64 `json:"cashInBank"`
	LoanAssets       float64 `json:"loanAssets"`
	TotalStanding    float64 `json:"totalStanding"`
	MemberCount      int     `json:"memberCount"`
	ClosedPeriods    int     `json:"closedPeriods"`
	TotalCollected   float64 `json:"totalCollected"`
	InterestEarned   float64 `json:"interestEarned"`
	LateFinesEarned  float64 `json:"lateFinesEarned"`
	HasOpenPeriod    bool    `json:"hasOpenPeriod"`
	OpenPeriodNumber int     `json:"openPeriodNumber,omitempty"`
}

// LoanStatistics aggregates a group's loans
type LoanStatistics struct {
	ActiveLoans      int     `json:"activeLoans"`
	PaidLoans        int     `json:"paidLoans"`
	DefaultedLoans   int     `json:"defaultedLoans"`
	TotalDisbursed   float64 `json:"totalDisbursed"`
	OutstandingTotal float64 `json:"outstandingTotal"`
	AverageLoan      float64 `json:"averageLoan"`
	RepaymentRate    float64 `json:"repaymentRate"`
}

// PeriodDigest is a closed period reduced to its headline numbers
type PeriodDigest struct {
	PeriodID       int       `json:"periodId"`
	SequenceNumber int       `json:"sequenceNumber"`
	StartDate      time.Time `json:"startDate"`
	TotalCollected float64   `json:"totalCollected"`
	InterestEarned float64   `json:"interestEarned"`
	LateFines      float64   `json:"lateFines"`
	Standing       float64   `json:"standing"`
	MembersPresent int       `json:"membersPresent"`
}

// NewPeriodDigest summarizes p
func NewPeriodDigest(p *Period) *PeriodDigest {
	return &PeriodDigest{
		PeriodID:       p.ID,
		SequenceNumber: p.SequenceNumber,
		StartDate:      p.StartDate,
		TotalCollected: p.TotalCollection,
		InterestEarned: p.InterestEarned,
		LateFines:      p.LateFinesCollected,
		Standing:       p.TotalStandingAtEnd,
		MembersPresent: p.MembersPresent,
	}
}
