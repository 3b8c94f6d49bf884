package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/finance"
	"shg-service/internal/models"
	"shg-service/internal/repository"
	"shg-service/pkg/apperror"
)

const (
	recentPeriods = 6
	trendPeriods  = 12
)

// ReportSvc is an implementation of the service.ReportService interface
type ReportSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	config *configs.Config
	now    func() time.Time
}

// NewReportService creates a new ReportSvc
func NewReportService(deps Dependencies) *ReportSvc {
	return &ReportSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		config: deps.Config,
		now:    deps.clock(),
	}
}

// GetSummary builds the group's financial overview
func (s *ReportSvc) GetSummary(ctx context.Context, groupID int) (*models.GroupSummary, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.repos.Member.GetActiveByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	loans, err := s.repos.Loan.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	// newest first
	periods, err := s.repos.Period.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get periods: %w", err)
	}

	stats := loanStatistics(loans)

	summary := &models.GroupSummary{
		GroupID:   group.ID,
		GroupName: group.Name,
		Currency:  s.config.Finance.Currency,
		Loans:     stats,
		Recent:    []*models.PeriodDigest{},
		Trend:     []*models.PeriodDigest{},
		Generated: s.now(),
	}

	fin := &summary.Financial
	fin.CashInHand = group.CashInHand
	fin.CashInBank = group.CashInBank
	fin.LoanAssets = stats.OutstandingTotal
	fin.TotalStanding = finance.Standing(group.CashInHand, group.CashInBank, stats.OutstandingTotal)
	fin.MemberCount = len(members)

	collected := decimal.Zero
	interest := decimal.Zero
	fines := decimal.Zero

	for _, p := range periods {
		if p.IsOpen() {
			// the lowest open sequence is the current period
			if !fin.HasOpenPeriod || p.SequenceNumber < fin.OpenPeriodNumber {
				fin.HasOpenPeriod = true
				fin.OpenPeriodNumber = p.SequenceNumber
			}
			continue
		}

		fin.ClosedPeriods++
		collected = collected.Add(decimal.NewFromFloat(p.TotalCollection))
		interest = interest.Add(decimal.NewFromFloat(p.InterestEarned))
		fines = fines.Add(decimal.NewFromFloat(p.LateFinesCollected))

		if len(summary.Recent) < recentPeriods {
			summary.Recent = append(summary.Recent, models.NewPeriodDigest(p))
		}
		if len(summary.Trend) < trendPeriods {
			summary.Trend = append(summary.Trend, models.NewPeriodDigest(p))
		}
	}

	fin.TotalCollected = finance.Round2(collected.InexactFloat64())
	fin.InterestEarned = finance.Round2(interest.InexactFloat64())
	fin.LateFinesEarned = finance.Round2(fines.InexactFloat64())

	// oldest first for charting
	for i, j := 0, len(summary.Trend)-1; i < j; i, j = i+1, j-1 {
		summary.Trend[i], summary.Trend[j] = summary.Trend[j], summary.Trend[i]
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":       groupID,
		"closed_periods": fin.ClosedPeriods,
		"active_loans":   stats.ActiveLoans,
	}).Debug("Group summary generated")

	return summary, nil
}

func loanStatistics(loans []*models.Loan) models.LoanStatistics {
	var stats models.LoanStatistics
	disbursed := decimal.Zero
	outstanding := decimal.Zero

	for _, l := range loans {
		disbursed = disbursed.Add(decimal.NewFromFloat(l.OriginalAmount))

		switch l.Status {
		case models.LoanStatusActive:
			stats.ActiveLoans++
			outstanding = outstanding.Add(decimal.NewFromFloat(l.CurrentBalance))
		case models.LoanStatusPaid:
			stats.PaidLoans++
		case models.LoanStatusDefaulted:
			stats.DefaultedLoans++
			outstanding = outstanding.Add(decimal.NewFromFloat(l.CurrentBalance))
		}
	}

	stats.TotalDisbursed = finance.Round2(disbursed.InexactFloat64())
	stats.OutstandingTotal = finance.Round2(outstanding.InexactFloat64())

	if len(loans) > 0 {
		stats.AverageLoan = finance.Round2(disbursed.Div(decimal.NewFromInt(int64(len(loans)))).InexactFloat64())
	}
	if !disbursed.IsZero() {
		repaid := disbursed.Sub(outstanding)
		stats.RepaymentRate = finance.Round2(repaid.Div(disbursed).Mul(decimal.NewFromInt(100)).InexactFloat64())
	}

	return stats
}

// PeriodReportXML renders a period and its contributions as an XML document
// for the group's records
func (s *ReportSvc) PeriodReportXML(ctx context.Context, groupID, periodID int) ([]byte, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	period, err := s.repos.Period.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.GroupID != groupID {
		return nil, apperror.NotFound("period %d not found in group %d", periodID, groupID)
	}

	contributions, err := s.repos.Contribution.GetByPeriodID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions: %w", err)
	}

	currency := s.config.Finance.Currency

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("PeriodReport")
	root.CreateAttr("generated", s.now().UTC().Format(time.RFC3339))

	g := root.CreateElement("Group")
	g.CreateAttr("id", strconv.Itoa(group.ID))
	g.CreateElement("Name").SetText(group.Name)
	g.CreateElement("Frequency").SetText(string(group.CollectionFrequency))

	p := root.CreateElement("Period")
	p.CreateAttr("id", strconv.Itoa(period.ID))
	p.CreateAttr("sequence", strconv.Itoa(period.SequenceNumber))
	p.CreateAttr("status", string(period.Status))
	p.CreateElement("StartDate").SetText(period.StartDate.Format("2006-01-02"))
	p.CreateElement("DueDate").SetText(finance.PeriodDueDate(group.Schedule(), period.StartDate).Format("2006-01-02"))
	if period.ClosedAt != nil {
		p.CreateElement("ClosedAt").SetText(period.ClosedAt.UTC().Format(time.RFC3339))
	}

	totals := p.CreateElement("Totals")
	amountElement(totals, "StandingAtStart", period.StandingAtStart, currency)
	amountElement(totals, "TotalCollection", period.TotalCollection, currency)
	amountElement(totals, "InterestEarned", period.InterestEarned, currency)
	amountElement(totals, "LateFinesCollected", period.LateFinesCollected, currency)
	amountElement(totals, "NewContributions", period.NewContributions, currency)
	amountElement(totals, "CashInHandAtEnd", period.CashInHandAtEnd, currency)
	amountElement(totals, "CashInBankAtEnd", period.CashInBankAtEnd, currency)
	amountElement(totals, "LoanAssetsAtEnd", period.LoanAssetsAtEnd, currency)
	amountElement(totals, "TotalStandingAtEnd", period.TotalStandingAtEnd, currency)
	totals.CreateElement("MembersPresent").SetText(strconv.Itoa(period.MembersPresent))

	list := root.CreateElement("Contributions")
	list.CreateAttr("count", strconv.Itoa(len(contributions)))
	for _, c := range contributions {
		e := list.CreateElement("Contribution")
		e.CreateAttr("id", strconv.Itoa(c.ID))
		e.CreateAttr("memberId", strconv.Itoa(c.MemberID))
		e.CreateAttr("status", string(c.Status))
		e.CreateElement("Member").SetText(c.MemberName)
		amountElement(e, "MinimumDue", c.MinimumDueAmount, currency)
		amountElement(e, "TotalPaid", c.TotalPaid, currency)
		amountElement(e, "Remaining", c.RemainingAmount, currency)
		amountElement(e, "CreditBalance", c.CreditBalance, currency)
		amountElement(e, "LateFine", c.LateFineAmount, currency)
		e.CreateElement("DaysLate").SetText(strconv.Itoa(c.DaysLate))
	}

	doc.Indent(2)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render period report: %w", err)
	}

	return out, nil
}

func amountElement(parent *etree.Element, tag string, amount float64, currency string) {
	e := parent.CreateElement(tag)
	if currency != "" {
		e.CreateAttr("currency", currency)
	}
	e.SetText(strconv.FormatFloat(amount, 'f', 2, 64))
}
