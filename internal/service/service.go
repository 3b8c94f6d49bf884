package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/metrics"
	"shg-service/internal/models"
	"shg-service/internal/repository"
)

// UserService defines methods for user service
type UserService interface {
	Register(ctx context.Context, user *models.UserRegistration) (int, error)
	Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// GroupService defines methods for group service
type GroupService interface {
	Create(ctx context.Context, leaderID int, group *models.GroupCreate) (*models.Group, error)
	GetByID(ctx context.Context, groupID int) (*models.Group, error)
	GetByLeaderID(ctx context.Context, leaderID int) ([]*models.Group, error)
	Update(ctx context.Context, groupID int, update *models.GroupUpdate) (*models.Group, error)
	Authorize(ctx context.Context, groupID, userID int) (*models.Group, error)
	AddMember(ctx context.Context, groupID int, member *models.MemberCreate) (*models.Member, error)
	GetMembers(ctx context.Context, groupID int) ([]*models.Member, error)
	GetLateFineRule(ctx context.Context, groupID int) (*models.LateFineRule, error)
	SetLateFineRule(ctx context.Context, groupID int, rule *models.LateFineRuleInput) (*models.LateFineRule, error)
}

// LoanService defines methods for loan service
type LoanService interface {
	Create(ctx context.Context, groupID int, loan *models.LoanCreate) (*models.Loan, error)
	GetByGroupID(ctx context.Context, groupID int) ([]*models.Loan, error)
	Repay(ctx context.Context, groupID int, repayment *models.LoanRepayment) (*models.LoanRepaymentResult, error)
}

// PeriodService defines methods for period service
type PeriodService interface {
	Open(ctx context.Context, groupID int, req *models.PeriodOpenRequest) (*models.PeriodView, error)
	GetCurrent(ctx context.Context, groupID int) (*models.PeriodView, error)
	GetByGroupID(ctx context.Context, groupID int) ([]*models.Period, error)
	Close(ctx context.Context, groupID, periodID, userID int, req *models.PeriodCloseRequest) (*models.PeriodCloseResult, error)
	CloseCurrent(ctx context.Context, groupID, userID int, req *models.PeriodCloseRequest) (*models.PeriodCloseResult, error)
}

// ContributionService defines methods for contribution service
type ContributionService interface {
	RecordPayment(ctx context.Context, groupID, contributionID int, update *models.PaymentUpdate) (*models.Contribution, error)
	Upsert(ctx context.Context, periodID int, dues *models.ContributionUpsert) (*models.Contribution, error)
	UpsertCurrent(ctx context.Context, groupID int, dues *models.ContributionUpsert) (*models.Contribution, error)
	GetCurrent(ctx context.Context, groupID int) (*models.CurrentContributions, error)
}

// ReportService defines methods for report service
type ReportService interface {
	GetSummary(ctx context.Context, groupID int) (*models.GroupSummary, error)
	PeriodReportXML(ctx context.Context, groupID, periodID int) ([]byte, error)
}

// EmailService defines methods for email service
type EmailService interface {
	SendPeriodClosed(ctx context.Context, groupID int, result *models.PeriodCloseResult) error
	SendPaymentReceipt(ctx context.Context, contribution *models.Contribution) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos   *repository.Repository
	Logger  *logrus.Logger
	Config  *configs.Config
	Metrics *metrics.Metrics
	// Mailer overrides the SMTP dialer built from Config.Email
	Mailer Sender
	// Clock defaults to time.Now
	Clock func() time.Time
}

func (d Dependencies) clock() func() time.Time {
	if d.Clock != nil {
		return d.Clock
	}
	return time.Now
}

// Service is a composition of all services
type Service struct {
	User         UserService
	Group        GroupService
	Loan         LoanService
	Period       PeriodService
	Contribution ContributionService
	Report       ReportService
	Email        EmailService
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	return &Service{
		User:         NewUserService(deps),
		Group:        NewGroupService(deps),
		Loan:         NewLoanService(deps),
		Period:       NewPeriodService(deps),
		Contribution: NewContributionService(deps),
		Report:       NewReportService(deps),
		Email:        NewEmailService(deps),
	}
}
