package finance

import "errors"

// AllocationKind tags the variant of a cash allocation.
type AllocationKind string

const (
	AllocationExplicit     AllocationKind = "EXPLICIT"
	AllocationDefaultSplit AllocationKind = "DEFAULT_SPLIT"
)

// DefaultBankPercent is the share of a payment banked when the collector did
// not say where the cash went.
const DefaultBankPercent = 70.0

var ErrAllocationNegative = errors.New("allocation amounts cannot be negative")

// Split is collected cash divided between cash in hand and the bank.
type Split struct {
	Hand float64 `json:"hand"`
	Bank float64 `json:"bank"`
}

// Add returns the component-wise sum of two splits.
func (s Split) Add(o Split) Split {
	return Split{Hand: Sum2(s.Hand, o.Hand), Bank: Sum2(s.Bank, o.Bank)}
}

// Allocation says how one contribution's payment is divided. The
// implementations are ExplicitAllocation and DefaultSplit.
type Allocation interface {
	Kind() AllocationKind
	Split(totalPaid float64) Split
	isAllocation()
}

// ExplicitAllocation records where the collector put each part of a payment.
type ExplicitAllocation struct {
	ContributionToHand float64
	ContributionToBank float64
	InterestToHand     float64
	InterestToBank     float64
}

// DefaultSplit banks BankPercent of the payment and keeps the rest in hand.
type DefaultSplit struct {
	BankPercent float64
}

func (ExplicitAllocation) Kind() AllocationKind { return AllocationExplicit }
func (DefaultSplit) Kind() AllocationKind       { return AllocationDefaultSplit }

func (ExplicitAllocation) isAllocation() {}
func (DefaultSplit) isAllocation()       {}

// Split returns the recorded amounts only. SplitPayment also places the part
// of the payment the allocation leaves unassigned.
func (a ExplicitAllocation) Split(float64) Split {
	return Split{
		Hand: Sum2(a.ContributionToHand, a.InterestToHand),
		Bank: Sum2(a.ContributionToBank, a.InterestToBank),
	}
}

// Total is the amount the allocation accounts for.
func (a ExplicitAllocation) Total() float64 {
	return Sum2(a.ContributionToHand, a.ContributionToBank, a.InterestToHand, a.InterestToBank)
}

// Validate rejects negative parts.
func (a ExplicitAllocation) Validate() error {
	if a.ContributionToHand < 0 || a.ContributionToBank < 0 || a.InterestToHand < 0 || a.InterestToBank < 0 {
		return ErrAllocationNegative
	}
	return nil
}

func (a DefaultSplit) Split(totalPaid float64) Split {
	pct := a.BankPercent
	if pct < 0 || pct > 100 {
		pct = DefaultBankPercent
	}
	bank := Round2(totalPaid * pct / 100)
	return Split{Hand: Round2(totalPaid - bank), Bank: bank}
}

// SplitPayment divides a payment of totalPaid between hand and bank. A nil
// allocation uses fallback. The remainder an explicit allocation leaves
// unassigned is split with fallback, and an explicit allocation larger than
// totalPaid no longer describes the payment, so fallback replaces it. The
// result always sums to totalPaid.
func SplitPayment(alloc Allocation, totalPaid float64, fallback DefaultSplit) Split {
	explicit, ok := alloc.(ExplicitAllocation)
	if !ok {
		if alloc == nil {
			alloc = fallback
		}
		return alloc.Split(totalPaid)
	}

	allocated := explicit.Total()
	if allocated > Round2(totalPaid) {
		return fallback.Split(totalPaid)
	}
	return explicit.Split(totalPaid).Add(fallback.Split(Sum2(totalPaid, -allocated)))
}
