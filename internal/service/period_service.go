package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/finance"
	"shg-service/internal/metrics"
	"shg-service/internal/models"
	"shg-service/internal/repository"
	"shg-service/pkg/apperror"
)

// PeriodSvc is an implementation of the service.PeriodService interface
type PeriodSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	metrics   *metrics.Metrics
	validator *validator.Validate
	email     EmailService
	now       func() time.Time
}

// NewPeriodService creates a new PeriodSvc
func NewPeriodService(deps Dependencies) *PeriodSvc {
	return &PeriodSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
		validator: newValidator(),
		email:     NewEmailService(deps),
		now:       deps.clock(),
	}
}

// Open starts a new period for the group. Periods are only ever opened here
// or by closing the previous one.
func (s *PeriodSvc) Open(ctx context.Context, groupID int, req *models.PeriodOpenRequest) (*models.PeriodView, error) {
	var view *models.PeriodView
	var seeded int

	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		group, err := repos.Group.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}

		open, err := repos.Period.GetCurrentOpen(ctx, groupID)
		if err == nil {
			return apperror.Conflict("group %d already has open period #%d", groupID, open.SequenceNumber)
		}
		if !apperror.Is(err, apperror.KindNotFound) {
			return err
		}

		latest, err := repos.Period.GetLatest(ctx, groupID)
		if err != nil && !apperror.Is(err, apperror.KindNotFound) {
			return err
		}

		sequence := 1
		start := finance.DateOnly(s.now())
		if latest != nil {
			sequence = latest.SequenceNumber + 1
			start = finance.NextPeriodStart(group.CollectionFrequency, latest.StartDate)
		}
		if req != nil && req.StartDate != nil && !req.StartDate.IsZero() {
			start = finance.DateOnly(req.StartDate.Time)
		}
		if latest != nil && start.Before(finance.DateOnly(latest.StartDate)) {
			return apperror.Validation("startDate cannot precede the previous period", map[string]string{
				"previousStartDate": latest.StartDate.Format("2006-01-02"),
			})
		}

		balances, err := repos.Loan.ActiveBalancesByGroup(ctx, groupID)
		if err != nil {
			return err
		}

		period := &models.Period{
			GroupID:           groupID,
			SequenceNumber:    sequence,
			StartDate:         start,
			Status:            models.PeriodStatusOpen,
			StandingAtStart:   finance.Standing(group.CashInHand, group.CashInBank, sumBalances(balances)),
			OpeningCashInHand: group.CashInHand,
			OpeningCashInBank: group.CashInBank,
		}

		id, err := repos.Period.Create(ctx, period)
		if err != nil {
			return err
		}
		period.ID = id

		seeded, err = s.seedContributions(ctx, repos, group, period, balances, nil)
		if err != nil {
			return err
		}

		view = models.NewPeriodView(period, group.Schedule())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":      groupID,
		"period_id":     view.ID,
		"sequence":      view.SequenceNumber,
		"contributions": seeded,
	}).Info("Period opened")

	return view, nil
}

// GetCurrent gets the group's open period with its calendar
func (s *PeriodSvc) GetCurrent(ctx context.Context, groupID int) (*models.PeriodView, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	period, err := s.repos.Period.GetCurrentOpen(ctx, groupID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("group %d has no open period", groupID)
		}
		return nil, err
	}

	return models.NewPeriodView(period, group.Schedule()), nil
}

// GetByGroupID gets all periods of a group, newest first
func (s *PeriodSvc) GetByGroupID(ctx context.Context, groupID int) ([]*models.Period, error) {
	periods, err := s.repos.Period.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get periods: %w", err)
	}
	return periods, nil
}

// CloseCurrent closes the group's open period
func (s *PeriodSvc) CloseCurrent(ctx context.Context, groupID, userID int, req *models.PeriodCloseRequest) (*models.PeriodCloseResult, error) {
	period, err := s.repos.Period.GetCurrentOpen(ctx, groupID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("group %d has no open period", groupID)
		}
		return nil, err
	}

	return s.Close(ctx, groupID, period.ID, userID, req)
}

// Close finalizes a period in one transaction: contributions are settled,
// totals and the cash split are written to the period, the group's cash is
// rolled forward and the next period is opened or, if it already exists,
// updated in place.
func (s *PeriodSvc) Close(ctx context.Context, groupID, periodID, userID int, req *models.PeriodCloseRequest) (*models.PeriodCloseResult, error) {
	bankPercent := s.config.Finance.DefaultBankPercent
	if req != nil {
		if err := validateRequest(s.validator, req); err != nil {
			return nil, err
		}
		if req.BankPercent != nil {
			bankPercent = *req.BankPercent
		}
	}

	var result *models.PeriodCloseResult

	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		period, err := repos.Period.GetByIDForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if period.GroupID != groupID {
			return apperror.NotFound("period %d not found in group %d", periodID, groupID)
		}
		if !period.IsOpen() {
			return apperror.Conflict("period #%d is already closed", period.SequenceNumber)
		}

		group, err := repos.Group.GetByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}

		rule, err := lateFineRule(ctx, repos, groupID)
		if err != nil {
			return err
		}

		now := s.now()
		contributions, err := repos.Contribution.GetByPeriodID(ctx, periodID)
		if err != nil {
			return err
		}

		collected := make([]finance.Collected, 0, len(contributions))
		carry := make(map[int]float64)
		present := 0

		for _, c := range contributions {
			finalizeContribution(c, group.Schedule(), period.StartDate, rule.Policy(), now)
			if err := repos.Contribution.Update(ctx, c); err != nil {
				return err
			}

			if c.TotalPaid > 0 {
				present++
			}
			if c.RemainingAmount > 0 {
				carry[c.MemberID] = c.RemainingAmount
			}
			collected = append(collected, c.Collected(bankPercent))
		}

		totals := finance.Aggregate(collected, finance.DefaultSplit{BankPercent: bankPercent})

		balances, err := repos.Loan.ActiveBalancesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		loanAssets := sumBalances(balances)

		cashInHand := finance.Sum2(group.CashInHand, totals.Cash.Hand)
		cashInBank := finance.Sum2(group.CashInBank, totals.Cash.Bank)
		standing := finance.Standing(cashInHand, cashInBank, loanAssets)

		period.Status = models.PeriodStatusClosed
		period.CashInHandAtEnd = cashInHand
		period.CashInBankAtEnd = cashInBank
		period.TotalStandingAtEnd = standing
		period.TotalCollection = totals.TotalCollected
		period.InterestEarned = totals.InterestCollected
		period.LateFinesCollected = totals.LateFinesCollected
		period.NewContributions = totals.NewContributions
		period.LoanAssetsAtEnd = loanAssets
		period.MembersPresent = present
		period.ClosedAt = &now
		period.ClosedBy = &userID

		if err := repos.Period.Update(ctx, period); err != nil {
			return err
		}

		if err := repos.Group.UpdateBalances(ctx, groupID, cashInHand, cashInBank); err != nil {
			return err
		}
		group.CashInHand = cashInHand
		group.CashInBank = cashInBank

		next, reused, err := s.nextPeriod(ctx, repos, group, period)
		if err != nil {
			return err
		}

		seeded, err := s.seedContributions(ctx, repos, group, next, balances, carry)
		if err != nil {
			return err
		}

		if err := repos.Member.RefreshGroupLoanBalanceCaches(ctx, groupID); err != nil {
			return err
		}

		result = &models.PeriodCloseResult{
			ClosedPeriod:        period,
			NextPeriod:          next,
			NextPeriodReused:    reused,
			ContributionsSeeded: seeded,
			Totals:              totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PeriodClosed(result.Totals.TotalCollected)
	s.logger.WithFields(logrus.Fields{
		"group_id":        groupID,
		"period_id":       periodID,
		"next_period_id":  result.NextPeriod.ID,
		"next_reused":     result.NextPeriodReused,
		"total_collected": result.Totals.TotalCollected,
		"standing":        result.ClosedPeriod.TotalStandingAtEnd,
	}).Info("Period closed")

	go func(res *models.PeriodCloseResult) {
		if err := s.email.SendPeriodClosed(context.Background(), groupID, res); err != nil {
			s.logger.Warnf("Failed to send period close summary for period %d: %v", periodID, err)
		}
	}(result)

	return result, nil
}

// nextPeriod returns the period following closed with its opening balances
// set. An existing stub is updated rather than duplicated.
func (s *PeriodSvc) nextPeriod(ctx context.Context, repos *repository.Repository, group *models.Group, closed *models.Period) (*models.Period, bool, error) {
	next, err := repos.Period.GetBySequence(ctx, group.ID, closed.SequenceNumber+1)
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return nil, false, err
	}

	if next != nil {
		if !next.IsOpen() {
			return nil, false, apperror.Conflict("period #%d is already closed", next.SequenceNumber)
		}
		next.StandingAtStart = closed.TotalStandingAtEnd
		next.OpeningCashInHand = closed.CashInHandAtEnd
		next.OpeningCashInBank = closed.CashInBankAtEnd
		if err := repos.Period.Update(ctx, next); err != nil {
			return nil, false, err
		}
		return next, true, nil
	}

	next = &models.Period{
		GroupID:           group.ID,
		SequenceNumber:    closed.SequenceNumber + 1,
		StartDate:         finance.NextPeriodStart(group.CollectionFrequency, closed.StartDate),
		Status:            models.PeriodStatusOpen,
		StandingAtStart:   closed.TotalStandingAtEnd,
		OpeningCashInHand: closed.CashInHandAtEnd,
		OpeningCashInBank: closed.CashInBankAtEnd,
	}

	id, err := repos.Period.Create(ctx, next)
	if err != nil {
		return nil, false, err
	}
	next.ID = id

	return next, false, nil
}

// seedContributions makes sure every active member has a contribution in
// period. Dues default from the group and each member's active loans; carry
// holds unpaid remainders from the previous period. Existing rows keep their
// payments but take the new carry-forward. It returns the number of rows
// inserted.
func (s *PeriodSvc) seedContributions(ctx context.Context, repos *repository.Repository, group *models.Group, period *models.Period, balances, carry map[int]float64) (int, error) {
	members, err := repos.Member.GetActiveByGroupID(ctx, group.ID)
	if err != nil {
		return 0, err
	}

	existing, err := repos.Contribution.GetByPeriodID(ctx, period.ID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	have := make(map[int]bool, len(existing))
	for _, c := range existing {
		have[c.MemberID] = true
		if c.CarryForwardAmount == carry[c.MemberID] {
			continue
		}
		c.CarryForwardAmount = carry[c.MemberID]
		c.Settle(now)
		if err := repos.Contribution.Update(ctx, c); err != nil {
			return 0, err
		}
	}

	due := finance.PeriodDueDate(group.Schedule(), period.StartDate)
	rows := make([]*models.Contribution, 0, len(members))
	for _, m := range members {
		if have[m.ID] {
			continue
		}
		c := &models.Contribution{
			PeriodID:                  period.ID,
			MemberID:                  m.ID,
			CompulsoryContributionDue: finance.Round2(group.MonthlyContribution),
			LoanInterestDue:           finance.PeriodInterest(balances[m.ID], group.InterestRate, group.CollectionFrequency),
			CarryForwardAmount:        carry[m.ID],
			DueDate:                   due,
		}
		c.Settle(now)
		rows = append(rows, c)
	}

	return repos.Contribution.CreateBatch(ctx, rows)
}

// finalizeContribution settles a contribution for close. Unpaid rows take
// the late fine owed as of now and are marked OVERDUE if still short.
func finalizeContribution(c *models.Contribution, schedule finance.Schedule, periodStart time.Time, rule finance.FineRule, now time.Time) {
	if c.Status != models.ContributionStatusPaid && rule != nil {
		info := finance.LateFineInfo(schedule, periodStart, now)
		c.DueDate = info.DueDate
		c.DaysLate = info.DaysLate
		c.LateFineAmount = finance.LateFine(rule, info.DaysLate, c.CompulsoryContributionDue)
	}

	c.Settle(now)
	if c.RemainingAmount > 0 {
		c.Status = models.ContributionStatusOverdue
	}
}

func sumBalances(balances map[int]float64) float64 {
	values := make([]float64, 0, len(balances))
	for _, b := range balances {
		values = append(values, b)
	}
	return finance.Sum2(values...)
}
