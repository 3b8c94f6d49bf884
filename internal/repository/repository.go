package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shg-service/internal/models"
	"shg-service/internal/repository/postgres"
)

// TransactionManager runs a function against repositories bound to one
// database transaction
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(repos *Repository) error) error
}

// UserRepository defines methods for user repository
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// GroupRepository defines methods for group repository
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) (int, error)
	GetByID(ctx context.Context, id int) (*models.Group, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Group, error)
	GetByLeaderID(ctx context.Context, leaderID int) ([]*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	UpdateBalances(ctx context.Context, id int, cashInHand, cashInBank float64) error
}

// MemberRepository defines methods for member repository
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) (int, error)
	GetByID(ctx context.Context, id int) (*models.Member, error)
	GetByGroupID(ctx context.Context, groupID int) ([]*models.Member, error)
	GetActiveByGroupID(ctx context.Context, groupID int) ([]*models.Member, error)
	UpdateLoanBalanceCache(ctx context.Context, memberID int) error
	RefreshGroupLoanBalanceCaches(ctx context.Context, groupID int) error
}

// LoanRepository defines methods for loan repository
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) (int, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Loan, error)
	GetLatestActiveByMemberForUpdate(ctx context.Context, memberID int) (*models.Loan, error)
	GetByGroupID(ctx context.Context, groupID int) ([]*models.Loan, error)
	UpdateBalance(ctx context.Context, loan *models.Loan) error
	SumActiveByMember(ctx context.Context, memberID int) (float64, error)
	ActiveBalancesByGroup(ctx context.Context, groupID int) (map[int]float64, error)
}

// LateFineRuleRepository defines methods for late fine rule repository
type LateFineRuleRepository interface {
	GetByGroupID(ctx context.Context, groupID int) (*models.LateFineRule, error)
	Replace(ctx context.Context, rule *models.LateFineRule) (int, error)
}

// PeriodRepository defines methods for period repository
type PeriodRepository interface {
	Create(ctx context.Context, period *models.Period) (int, error)
	GetByID(ctx context.Context, id int) (*models.Period, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Period, error)
	GetCurrentOpen(ctx context.Context, groupID int) (*models.Period, error)
	GetBySequence(ctx context.Context, groupID, sequence int) (*models.Period, error)
	GetLatest(ctx context.Context, groupID int) (*models.Period, error)
	GetByGroupID(ctx context.Context, groupID int) ([]*models.Period, error)
	GetClosed(ctx context.Context, groupID, limit int) ([]*models.Period, error)
	Update(ctx context.Context, period *models.Period) error
}

// ContributionRepository defines methods for contribution repository
type ContributionRepository interface {
	GetByID(ctx context.Context, id int) (*models.Contribution, error)
	GetByIDForUpdate(ctx context.Context, id int) (*models.Contribution, error)
	GetByPeriodAndMember(ctx context.Context, periodID, memberID int) (*models.Contribution, error)
	GetByPeriodAndMemberForUpdate(ctx context.Context, periodID, memberID int) (*models.Contribution, error)
	GetByPeriodID(ctx context.Context, periodID int) ([]*models.Contribution, error)
	Upsert(ctx context.Context, contribution *models.Contribution) (int, error)
	Update(ctx context.Context, contribution *models.Contribution) error
	CreateBatch(ctx context.Context, contributions []*models.Contribution) (int, error)
	LatestCashAllocation(ctx context.Context, periodID int) (*models.CashAllocation, error)
}

// Repository is a composition of all repositories
type Repository struct {
	User         UserRepository
	Group        GroupRepository
	Member       MemberRepository
	Loan         LoanRepository
	LateFineRule LateFineRuleRepository
	Period       PeriodRepository
	Contribution ContributionRepository

	// Tx is nil when the repositories are already bound to a transaction or
	// are in-memory test doubles; WithTx then runs fn on r itself.
	Tx TransactionManager
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	repos := newRepository(db)
	repos.Tx = &sqlTxManager{db: db}
	return repos
}

func newRepository(db postgres.DBTX) *Repository {
	return &Repository{
		User:         postgres.NewUserRepository(db),
		Group:        postgres.NewGroupRepository(db),
		Member:       postgres.NewMemberRepository(db),
		Loan:         postgres.NewLoanRepository(db),
		LateFineRule: postgres.NewLateFineRuleRepository(db),
		Period:       postgres.NewPeriodRepository(db),
		Contribution: postgres.NewContributionRepository(db),
	}
}

// WithTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(repos *Repository) error) error {
	if r.Tx == nil {
		return fn(r)
	}
	return r.Tx.WithTx(ctx, fn)
}

type sqlTxManager struct {
	db *sql.DB
}

func (m *sqlTxManager) WithTx(ctx context.Context, fn func(repos *Repository) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newRepository(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
