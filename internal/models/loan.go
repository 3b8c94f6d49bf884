package models

import (
	"errors"
	"time"

	"shg-service/internal/finance"
)

// LoanType defines the purpose of a loan
type LoanType string

const (
	LoanTypePersonal  LoanType = "PERSONAL"
	LoanTypeEducation LoanType = "EDUCATION"
	LoanTypeSocial    LoanType = "SOCIAL"
	LoanTypeMortgage  LoanType = "MORTGAGE"
	LoanTypeGrantor   LoanType = "GRANTOR"
	LoanTypeOther     LoanType = "OTHER"
)

// LoanStatus defines the status of a loan
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusPaid      LoanStatus = "PAID"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

var (
	ErrRepaymentNotPositive = errors.New("repayment amount must be positive")
	ErrRepaymentExceeds     = errors.New("repayment amount cannot exceed current loan balance")
	ErrLoanNotActive        = errors.New("loan is not active")
)

// Loan represents money lent by a group to one of its members
type Loan struct {
	ID             int        `json:"id" db:"id"`
	GroupID        int        `json:"groupId" db:"group_id"`
	MemberID       int        `json:"memberId" db:"member_id"`
	MemberName     string     `json:"memberName,omitempty" db:"-"`
	LoanType       LoanType   `json:"loanType" db:"loan_type"`
	OriginalAmount float64    `json:"originalAmount" db:"original_amount"`
	CurrentBalance float64    `json:"currentBalance" db:"current_balance"`
	InterestRate   float64    `json:"interestRate" db:"interest_rate"`
	DateIssued     time.Time  `json:"dateIssued" db:"date_issued"`
	Status         LoanStatus `json:"status" db:"status"`
	GrantorInfo    string     `json:"grantorInfo,omitempty" db:"grantor_info"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// ApplyRepayment reduces the balance and marks the loan PAID when it reaches zero
func (l *Loan) ApplyRepayment(amount float64) error {
	if l.Status != LoanStatusActive {
		return ErrLoanNotActive
	}
	if amount <= 0 {
		return ErrRepaymentNotPositive
	}
	if finance.Round2(amount) > l.CurrentBalance {
		return ErrRepaymentExceeds
	}

	l.CurrentBalance = finance.NonNegative(finance.Round2(l.CurrentBalance - amount))
	if l.CurrentBalance == 0 {
		l.Status = LoanStatusPaid
	}

	return nil
}

// LoanCreate represents a request to issue a loan
type LoanCreate struct {
	MemberID       int        `json:"memberId" validate:"required,gt=0"`
	LoanType       LoanType   `json:"loanType" validate:"required,oneof=PERSONAL EDUCATION SOCIAL MORTGAGE GRANTOR OTHER"`
	OriginalAmount float64    `json:"originalAmount" validate:"gt=0"`
	InterestRate   float64    `json:"interestRate" validate:"gte=0,lte=100"`
	DateIssued     *Timestamp `json:"dateIssued"`
	GrantorInfo    string     `json:"grantorInfo" validate:"max=255"`
}

// ToLoan converts LoanCreate to Loan
func (l *LoanCreate) ToLoan(groupID int, now time.Time) *Loan {
	issued := now
	if l.DateIssued != nil && !l.DateIssued.IsZero() {
		issued = l.DateIssued.Time
	}

	amount := finance.Round2(l.OriginalAmount)
	return &Loan{
		GroupID:        groupID,
		MemberID:       l.MemberID,
		LoanType:       l.LoanType,
		OriginalAmount: amount,
		CurrentBalance: amount,
		InterestRate:   l.InterestRate,
		DateIssued:     issued,
		Status:         LoanStatusActive,
		GrantorInfo:    l.GrantorInfo,
	}
}

// LoanRepayment represents a repayment against a loan, identified either
// directly or as the member's most recent active loan
type LoanRepayment struct {
	LoanID   int     `json:"loanId" validate:"required_without=MemberID,gte=0"`
	MemberID int     `json:"memberId" validate:"required_without=LoanID,gte=0"`
	Amount   float64 `json:"amount" validate:"gt=0"`
}

// LoanRepaymentResult describes a processed repayment
type LoanRepaymentResult struct {
	Loan            *Loan   `json:"loan"`
	PreviousBalance float64 `json:"previousBalance"`
	RepaymentAmount float64 `json:"repaymentAmount"`
}
