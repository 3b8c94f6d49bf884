package finance

// PaymentStatus is where a contribution stands against its minimum due.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
	StatusOverdue PaymentStatus = "OVERDUE"
)

// Dues are the amounts a member owes for one period.
type Dues struct {
	Compulsory   float64
	Interest     float64
	LateFine     float64
	CarryForward float64
}

// Minimum is the least a member must pay to settle the period.
func (d Dues) Minimum() float64 {
	return Sum2(d.Compulsory, d.Interest, d.LateFine, d.CarryForward)
}

// Payment is what a member has paid against each due. Total, when set,
// overrides the sum of the parts.
type Payment struct {
	Compulsory float64
	Interest   float64
	LateFine   float64
	Total      *float64
}

// TotalPaid is Total if given, otherwise the rounded sum of the parts.
func (p Payment) TotalPaid() float64 {
	if p.Total != nil {
		return Round2(*p.Total)
	}
	return Sum2(p.Compulsory, p.Interest, p.LateFine)
}

// Settlement is the outcome of applying a payment to a minimum due.
type Settlement struct {
	TotalPaid     float64
	Remaining     float64
	CreditBalance float64
	Status        PaymentStatus
}

// Settle applies p to minimumDue. Remaining never goes negative; any excess
// is reported as CreditBalance.
func Settle(minimumDue float64, p Payment) Settlement {
	total := p.TotalPaid()
	diff := Round2(minimumDue - total)

	return Settlement{
		TotalPaid:     total,
		Remaining:     NonNegative(diff),
		CreditBalance: NonNegative(-diff),
		Status:        StatusFor(total, NonNegative(diff)),
	}
}

// StatusFor derives the payment status from what was paid and what remains.
func StatusFor(totalPaid, remaining float64) PaymentStatus {
	switch {
	case remaining < centTolerance:
		return StatusPaid
	case totalPaid > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}
