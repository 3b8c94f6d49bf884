package service

import (
	"context"
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

// ContributionSvc is an implementation of the service.ContributionService interface
type ContributionSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	metrics   *metrics.Metrics
	validator *validator.Validate
	email     EmailService
	now       func() time.Time
}

// NewContributionService creates a new ContributionSvc
func NewContributionService(deps Dependencies) *ContributionSvc {
	return &ContributionSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
		validator: newValidator(),
		email:     NewEmailService(deps),
		now:       deps.clock(),
	}
}

// RecordPayment applies a payment submission to a contribution. A
// submission date recomputes the late fine as of that date; without one the
// stored late fine stands.
func (s *ContributionSvc) RecordPayment(ctx context.Context, groupID, contributionID int, update *models.PaymentUpdate) (*models.Contribution, error) {
	if err := validateRequest(s.validator, update); err != nil {
		return nil, err
	}

	var contribution *models.Contribution
	var becamePaid bool

	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		c, err := repos.Contribution.GetByIDForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}

		period, err := repos.Period.GetByID(ctx, c.PeriodID)
		if err != nil {
			return err
		}
		if period.GroupID != groupID {
			return apperror.NotFound("contribution %d not found in group %d", contributionID, groupID)
		}
		if !period.IsOpen() {
			return apperror.Conflict("period #%d is closed; payments can no longer be recorded", period.SequenceNumber)
		}

		group, err := repos.Group.GetByID(ctx, groupID)
		if err != nil {
			return err
		}

		wasPaid := c.Status == models.ContributionStatusPaid
		paidAt := s.now()

		if update.SubmissionDate != nil && !update.SubmissionDate.IsZero() {
			paidAt = update.SubmissionDate.Time

			rule, err := lateFineRule(ctx, repos, groupID)
			if err != nil {
				return err
			}

			info := finance.LateFineInfo(group.Schedule(), period.StartDate, paidAt)
			c.DueDate = info.DueDate
			c.DaysLate = info.DaysLate
			c.LateFineAmount = finance.LateFine(rule.Policy(), info.DaysLate, c.CompulsoryContributionDue)
		}

		c.ApplyPayment(update.Payment(c), paidAt)

		if update.CashAllocation != nil {
			alloc, err := s.allocation(update.CashAllocation, c.TotalPaid)
			if err != nil {
				return err
			}
			c.CashAllocation = models.NewCashAllocation(alloc)
		} else if err := s.checkStoredAllocation(c); err != nil {
			return err
		}

		if err := repos.Contribution.Update(ctx, c); err != nil {
			return err
		}

		contribution = c
		becamePaid = !wasPaid && c.Status == models.ContributionStatusPaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentRecorded(string(contribution.Status))
	s.logger.WithFields(logrus.Fields{
		"group_id":        groupID,
		"contribution_id": contributionID,
		"member_id":       contribution.MemberID,
		"total_paid":      contribution.TotalPaid,
		"remaining":       contribution.RemainingAmount,
		"status":          contribution.Status,
	}).Info("Payment recorded")

	if becamePaid {
		receipt := *contribution
		go func() {
			if err := s.email.SendPaymentReceipt(context.Background(), &receipt); err != nil {
				s.logger.Warnf("Failed to send payment receipt for contribution %d: %v", receipt.ID, err)
			}
		}()
	}

	return contribution, nil
}

// allocation validates a submitted cash allocation against the amount paid
func (s *ContributionSvc) allocation(in *models.CashAllocation, totalPaid float64) (finance.Allocation, error) {
	alloc, err := in.Allocation(s.config.Finance.DefaultBankPercent)
	if err != nil {
		return nil, apperror.Validation("invalid cash allocation", err.Error())
	}

	if explicit, ok := alloc.(finance.ExplicitAllocation); ok && explicit.Total() > totalPaid {
		return nil, apperror.Validation("cash allocation exceeds total paid", map[string]float64{
			"allocated": explicit.Total(),
			"totalPaid": totalPaid,
		})
	}

	return alloc, nil
}

// checkStoredAllocation rejects a payment that leaves the recorded explicit
// allocation above the new total paid. The caller must send a new allocation
// with such a correction.
func (s *ContributionSvc) checkStoredAllocation(c *models.Contribution) error {
	if c.CashAllocation == nil || c.CashAllocation.Type != finance.AllocationExplicit {
		return nil
	}

	alloc, err := c.CashAllocation.Allocation(s.config.Finance.DefaultBankPercent)
	if err != nil {
		return nil
	}

	if explicit, ok := alloc.(finance.ExplicitAllocation); ok && explicit.Total() > c.TotalPaid {
		return apperror.Validation("recorded cash allocation exceeds total paid; send a new cash allocation", map[string]float64{
			"allocated": explicit.Total(),
			"totalPaid": c.TotalPaid,
		})
	}

	return nil
}

// Upsert establishes a member's dues in a period, creating the contribution
// or updating the existing one. There is never more than one row per period
// and member.
func (s *ContributionSvc) Upsert(ctx context.Context, periodID int, dues *models.ContributionUpsert) (*models.Contribution, error) {
	if err := validateRequest(s.validator, dues); err != nil {
		return nil, err
	}

	var contribution *models.Contribution
	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		period, err := repos.Period.GetByID(ctx, periodID)
		if err != nil {
			return err
		}

		contribution, err = s.upsert(ctx, repos, period, dues)
		return err
	})
	if err != nil {
		return nil, err
	}

	return contribution, nil
}

// UpsertCurrent upserts into the group's open period. It never opens a
// period; without one the caller gets NotFound.
func (s *ContributionSvc) UpsertCurrent(ctx context.Context, groupID int, dues *models.ContributionUpsert) (*models.Contribution, error) {
	if err := validateRequest(s.validator, dues); err != nil {
		return nil, err
	}

	var contribution *models.Contribution
	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		period, err := repos.Period.GetCurrentOpen(ctx, groupID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.NotFound("group %d has no open period; open one before recording contributions", groupID)
			}
			return err
		}

		contribution, err = s.upsert(ctx, repos, period, dues)
		return err
	})
	if err != nil {
		return nil, err
	}

	return contribution, nil
}

func (s *ContributionSvc) upsert(ctx context.Context, repos *repository.Repository, period *models.Period, dues *models.ContributionUpsert) (*models.Contribution, error) {
	if !period.IsOpen() {
		return nil, apperror.Conflict("period #%d is closed", period.SequenceNumber)
	}

	group, err := repos.Group.GetByID(ctx, period.GroupID)
	if err != nil {
		return nil, err
	}

	if _, err := memberInGroup(ctx, repos, group.ID, dues.MemberID); err != nil {
		return nil, err
	}

	c, err := repos.Contribution.GetByPeriodAndMemberForUpdate(ctx, period.ID, dues.MemberID)
	if err != nil {
		if !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		c = &models.Contribution{PeriodID: period.ID, MemberID: dues.MemberID}
	}

	compulsory := group.MonthlyContribution
	if dues.CompulsoryContributionDue != nil {
		compulsory = *dues.CompulsoryContributionDue
	}

	var interest float64
	if dues.LoanInterestDue != nil {
		interest = *dues.LoanInterestDue
	} else {
		balance, err := repos.Loan.SumActiveByMember(ctx, dues.MemberID)
		if err != nil {
			return nil, err
		}
		interest = finance.PeriodInterest(balance, group.InterestRate, group.CollectionFrequency)
	}

	c.CompulsoryContributionDue = finance.Round2(compulsory)
	c.LoanInterestDue = finance.Round2(interest)
	if dues.CarryForwardAmount != nil {
		c.CarryForwardAmount = finance.Round2(*dues.CarryForwardAmount)
	}

	switch {
	case dues.DueDate != nil && !dues.DueDate.IsZero():
		c.DueDate = finance.DateOnly(dues.DueDate.Time)
	case c.DueDate.IsZero():
		c.DueDate = finance.PeriodDueDate(group.Schedule(), period.StartDate)
	}

	c.Settle(s.now())

	id, err := repos.Contribution.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":        group.ID,
		"period_id":       period.ID,
		"member_id":       dues.MemberID,
		"contribution_id": id,
		"minimum_due":     c.MinimumDueAmount,
	}).Info("Contribution upserted")

	return repos.Contribution.GetByID(ctx, id)
}

// GetCurrent returns the group's open period, or its latest period when none
// is open, with the period's contributions and latest cash allocation
func (s *ContributionSvc) GetCurrent(ctx context.Context, groupID int) (*models.CurrentContributions, error) {
	group, err := s.repos.Group.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	period, err := s.repos.Period.GetCurrentOpen(ctx, groupID)
	if err != nil {
		if !apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		period, err = s.repos.Period.GetLatest(ctx, groupID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, apperror.NotFound("group %d has no periods", groupID)
			}
			return nil, err
		}
	}

	contributions, err := s.repos.Contribution.GetByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, err
	}
	if contributions == nil {
		contributions = []*models.Contribution{}
	}

	latest, err := s.repos.Contribution.LatestCashAllocation(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	return &models.CurrentContributions{
		Period:               models.NewPeriodView(period, group.Schedule()),
		Contributions:        contributions,
		LatestCashAllocation: latest,
	}, nil
}
