package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"shg-service/internal/finance"
)

var (
	ErrAllocationType      = errors.New("cashAllocation.type must be EXPLICIT or DEFAULT_SPLIT")
	ErrAllocationBankShare = errors.New("cashAllocation.bankPercent must be between 0 and 100")
)

// CashAllocation is the wire and storage form of a contribution's cash
// allocation. Type selects which of the remaining fields are meaningful.
type CashAllocation struct {
	Type                     finance.AllocationKind `json:"type"`
	ContributionToCashInHand float64                `json:"contributionToCashInHand,omitempty"`
	ContributionToCashInBank float64                `json:"contributionToCashInBank,omitempty"`
	InterestToCashInHand     float64                `json:"interestToCashInHand,omitempty"`
	InterestToCashInBank     float64                `json:"interestToCashInBank,omitempty"`
	BankPercent              *float64               `json:"bankPercent,omitempty"`
}

// UnmarshalJSON treats a body without a type as an explicit allocation when
// any explicit part is present
func (a *CashAllocation) UnmarshalJSON(data []byte) error {
	type plain CashAllocation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	if p.Type == "" {
		switch {
		case p.ContributionToCashInHand != 0 || p.ContributionToCashInBank != 0 ||
			p.InterestToCashInHand != 0 || p.InterestToCashInBank != 0:
			p.Type = finance.AllocationExplicit
		case p.BankPercent != nil:
			p.Type = finance.AllocationDefaultSplit
		}
	}

	*a = CashAllocation(p)
	return nil
}

// Allocation decodes the record into its finance variant
func (a *CashAllocation) Allocation(defaultBankPercent float64) (finance.Allocation, error) {
	switch a.Type {
	case finance.AllocationExplicit:
		alloc := finance.ExplicitAllocation{
			ContributionToHand: finance.Round2(a.ContributionToCashInHand),
			ContributionToBank: finance.Round2(a.ContributionToCashInBank),
			InterestToHand:     finance.Round2(a.InterestToCashInHand),
			InterestToBank:     finance.Round2(a.InterestToCashInBank),
		}
		if err := alloc.Validate(); err != nil {
			return nil, err
		}
		return alloc, nil
	case finance.AllocationDefaultSplit:
		pct := defaultBankPercent
		if a.BankPercent != nil {
			pct = *a.BankPercent
		}
		if pct < 0 || pct > 100 {
			return nil, ErrAllocationBankShare
		}
		return finance.DefaultSplit{BankPercent: pct}, nil
	}

	return nil, ErrAllocationType
}

// NewCashAllocation encodes a finance allocation
func NewCashAllocation(alloc finance.Allocation) *CashAllocation {
	switch v := alloc.(type) {
	case finance.ExplicitAllocation:
		return &CashAllocation{
			Type:                     finance.AllocationExplicit,
			ContributionToCashInHand: v.ContributionToHand,
			ContributionToCashInBank: v.ContributionToBank,
			InterestToCashInHand:     v.InterestToHand,
			InterestToCashInBank:     v.InterestToBank,
		}
	case finance.DefaultSplit:
		pct := v.BankPercent
		return &CashAllocation{Type: finance.AllocationDefaultSplit, BankPercent: &pct}
	}
	return nil
}

// Value stores the allocation as jsonb
func (a *CashAllocation) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cash allocation: %w", err)
	}
	return string(b), nil
}

// Scan reads a jsonb allocation
func (a *CashAllocation) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported cash allocation source %T", src)
	}
	return json.Unmarshal(data, a)
}
