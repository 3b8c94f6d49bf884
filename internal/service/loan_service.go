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

// LoanSvc is an implementation of the service.LoanService interface
type LoanSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	metrics   *metrics.Metrics
	validator *validator.Validate
	now       func() time.Time
}

// NewLoanService creates a new LoanSvc
func NewLoanService(deps Dependencies) *LoanSvc {
	return &LoanSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
		validator: newValidator(),
		now:       deps.clock(),
	}
}

// Create issues a loan to a member of the group
func (s *LoanSvc) Create(ctx context.Context, groupID int, req *models.LoanCreate) (*models.Loan, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	loan := req.ToLoan(groupID, s.now())

	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		member, err := memberInGroup(ctx, repos, groupID, req.MemberID)
		if err != nil {
			return err
		}
		loan.MemberName = member.Name

		id, err := repos.Loan.Create(ctx, loan)
		if err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		loan.ID = id

		return repos.Member.UpdateLoanBalanceCache(ctx, member.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LoanIssued()
	s.logger.WithFields(logrus.Fields{
		"group_id":  groupID,
		"member_id": loan.MemberID,
		"loan_id":   loan.ID,
		"amount":    loan.OriginalAmount,
	}).Info("Loan issued")

	return loan, nil
}

// GetByGroupID gets all loans of a group
func (s *LoanSvc) GetByGroupID(ctx context.Context, groupID int) ([]*models.Loan, error) {
	loans, err := s.repos.Loan.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	return loans, nil
}

// Repay applies a repayment to a loan identified directly or as the member's
// most recent active loan
func (s *LoanSvc) Repay(ctx context.Context, groupID int, req *models.LoanRepayment) (*models.LoanRepaymentResult, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	var result *models.LoanRepaymentResult
	err := s.repos.WithTx(ctx, func(repos *repository.Repository) error {
		var loan *models.Loan
		var err error

		if req.LoanID > 0 {
			loan, err = repos.Loan.GetByIDForUpdate(ctx, req.LoanID)
			if err != nil {
				return err
			}
			if loan.GroupID != groupID {
				return apperror.NotFound("loan %d not found in group %d", req.LoanID, groupID)
			}
		} else {
			if _, err := memberInGroup(ctx, repos, groupID, req.MemberID); err != nil {
				return err
			}
			loan, err = repos.Loan.GetLatestActiveByMemberForUpdate(ctx, req.MemberID)
			if err != nil {
				if apperror.Is(err, apperror.KindNotFound) {
					return apperror.NotFound("member %d has no active loan", req.MemberID)
				}
				return err
			}
		}

		previous := loan.CurrentBalance
		if err := loan.ApplyRepayment(req.Amount); err != nil {
			return apperror.Validation(err.Error(), map[string]float64{"currentBalance": previous})
		}

		if err := repos.Loan.UpdateBalance(ctx, loan); err != nil {
			return err
		}
		if err := repos.Member.UpdateLoanBalanceCache(ctx, loan.MemberID); err != nil {
			return err
		}

		result = &models.LoanRepaymentResult{
			Loan:            loan,
			PreviousBalance: previous,
			RepaymentAmount: finance.Round2(previous - loan.CurrentBalance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":  groupID,
		"loan_id":   result.Loan.ID,
		"amount":    result.RepaymentAmount,
		"remaining": result.Loan.CurrentBalance,
	}).Info("Loan repayment recorded")

	return result, nil
}

func memberInGroup(ctx context.Context, repos *repository.Repository, groupID, memberID int) (*models.Member, error) {
	member, err := repos.Member.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.GroupID != groupID {
		return nil, apperror.NotFound("member %d not found in group %d", memberID, groupID)
	}
	return member, nil
}
