package models

import "time"

// Member represents a person in a group
type Member struct {
	ID       int    `json:"id" db:"id"`
	GroupID  int    `json:"groupId" db:"group_id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email,omitempty" db:"email"`
	Phone    string `json:"phone,omitempty" db:"phone"`
	IsActive bool   `json:"isActive" db:"is_active"`
	// LoanBalanceCache mirrors the sum of the member's active loans. It is
	// refreshed whenever loans change and is never used for calculations.
	LoanBalanceCache float64   `json:"loanBalanceCache" db:"loan_balance_cache"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// MemberCreate represents a request to add a member to a group
type MemberCreate struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

// ToMember converts MemberCreate to Member
func (m *MemberCreate) ToMember(groupID int) *Member {
	return &Member{
		GroupID:  groupID,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		IsActive: true,
	}
}
