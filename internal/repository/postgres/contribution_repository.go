package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shg-service/internal/models"
	"shg-service/pkg/apperror"
)

// ContributionRepo is a PostgreSQL implementation of the repository.ContributionRepository interface
type ContributionRepo struct {
	db DBTX
}

// NewContributionRepository creates a new ContributionRepo
func NewContributionRepository(db DBTX) *ContributionRepo {
	return &ContributionRepo{db: db}
}

const contributionColumns = `c.id, c.period_id, c.member_id, m.name, c.compulsory_contribution_due,
             c.loan_interest_due, c.late_fine_amount, c.carry_forward_amount, c.minimum_due_amount,
             c.compulsory_contribution_paid, c.loan_interest_paid, c.late_fine_paid, c.total_paid,
             c.remaining_amount, c.credit_balance, c.days_late, c.due_date, c.status, c.paid_date,
             c.cash_allocation, c.created_at, c.updated_at`

const contributionFrom = ` FROM member_contributions c JOIN members m ON m.id = c.member_id`

// GetByID gets a contribution by ID
func (r *ContributionRepo) GetByID(ctx context.Context, id int) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + contributionFrom + ` WHERE c.id = $1`
	return scanContribution(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate gets a contribution and locks its row until the transaction ends
func (r *ContributionRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + contributionFrom + ` WHERE c.id = $1 FOR UPDATE OF c`
	return scanContribution(r.db.QueryRowContext(ctx, query, id))
}

// GetByPeriodAndMember gets the contribution for a member in a period
func (r *ContributionRepo) GetByPeriodAndMember(ctx context.Context, periodID, memberID int) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + contributionFrom + ` WHERE c.period_id = $1 AND c.member_id = $2`
	return scanContribution(r.db.QueryRowContext(ctx, query, periodID, memberID))
}

// GetByPeriodAndMemberForUpdate gets the contribution for a member in a
// period and locks its row until the transaction ends
func (r *ContributionRepo) GetByPeriodAndMemberForUpdate(ctx context.Context, periodID, memberID int) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + contributionFrom + ` WHERE c.period_id = $1 AND c.member_id = $2 FOR UPDATE OF c`
	return scanContribution(r.db.QueryRowContext(ctx, query, periodID, memberID))
}

// GetByPeriodID gets all contributions of a period
func (r *ContributionRepo) GetByPeriodID(ctx context.Context, periodID int) ([]*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + contributionFrom + `
             WHERE c.period_id = $1
             ORDER BY m.name, c.member_id`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, wrapQueryErr(err, "contributions", "get")
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		contribution, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, contribution)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "contributions", "iterate")
	}

	return contributions, nil
}

// Upsert creates the contribution for its (period, member) pair or, when one
// exists, overwrites its dues and the amounts derived from them. The derived
// amounts were computed from c.TotalPaid, so an existing row whose total paid
// has moved since it was read is left alone and Conflict is returned.
func (r *ContributionRepo) Upsert(ctx context.Context, c *models.Contribution) (int, error) {
	query := `INSERT INTO member_contributions (period_id, member_id, compulsory_contribution_due,
             loan_interest_due, late_fine_amount, carry_forward_amount, minimum_due_amount,
             remaining_amount, credit_balance, due_date, status, paid_date)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
             ON CONFLICT (period_id, member_id) DO UPDATE
             SET compulsory_contribution_due = EXCLUDED.compulsory_contribution_due,
                 loan_interest_due = EXCLUDED.loan_interest_due,
                 late_fine_amount = EXCLUDED.late_fine_amount,
                 carry_forward_amount = EXCLUDED.carry_forward_amount,
                 minimum_due_amount = EXCLUDED.minimum_due_amount,
                 remaining_amount = EXCLUDED.remaining_amount,
                 credit_balance = EXCLUDED.credit_balance,
                 due_date = EXCLUDED.due_date,
                 status = EXCLUDED.status,
                 paid_date = EXCLUDED.paid_date,
                 updated_at = NOW()
             WHERE member_contributions.total_paid = $13
             RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		c.PeriodID,
		c.MemberID,
		c.CompulsoryContributionDue,
		c.LoanInterestDue,
		c.LateFineAmount,
		c.CarryForwardAmount,
		c.MinimumDueAmount,
		c.RemainingAmount,
		c.CreditBalance,
		c.DueDate,
		c.Status,
		c.PaidDate,
		c.TotalPaid,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.Conflict("contribution for member %d changed while its dues were updated; retry", c.MemberID)
	}
	if err != nil {
		return 0, wrapQueryErr(err, "contribution", "upsert")
	}

	return id, nil
}

// Update writes a contribution's dues, payments and derived amounts
func (r *ContributionRepo) Update(ctx context.Context, c *models.Contribution) error {
	query := `UPDATE member_contributions
             SET compulsory_contribution_due = $1, loan_interest_due = $2, late_fine_amount = $3,
                 carry_forward_amount = $4, minimum_due_amount = $5,
                 compulsory_contribution_paid = $6, loan_interest_paid = $7, late_fine_paid = $8,
                 total_paid = $9, remaining_amount = $10, credit_balance = $11, days_late = $12,
                 due_date = $13, status = $14, paid_date = $15, cash_allocation = $16,
                 updated_at = NOW()
             WHERE id = $17`

	result, err := r.db.ExecContext(
		ctx,
		query,
		c.CompulsoryContributionDue,
		c.LoanInterestDue,
		c.LateFineAmount,
		c.CarryForwardAmount,
		c.MinimumDueAmount,
		c.CompulsoryContributionPaid,
		c.LoanInterestPaid,
		c.LateFinePaid,
		c.TotalPaid,
		c.RemainingAmount,
		c.CreditBalance,
		c.DaysLate,
		c.DueDate,
		c.Status,
		c.PaidDate,
		c.CashAllocation,
		c.ID,
	)

	if err != nil {
		return wrapQueryErr(err, "contribution", "update")
	}

	return checkAffected(result, "contribution")
}

// CreateBatch inserts contributions, skipping any (period, member) pair that
// already has a row. It returns the number of rows inserted.
func (r *ContributionRepo) CreateBatch(ctx context.Context, contributions []*models.Contribution) (int, error) {
	if len(contributions) == 0 {
		return 0, nil
	}

	const cols = 10
	valueStrings := make([]string, 0, len(contributions))
	valueArgs := make([]interface{}, 0, len(contributions)*cols)

	for i, c := range contributions {
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")

		valueArgs = append(valueArgs,
			c.PeriodID,
			c.MemberID,
			c.CompulsoryContributionDue,
			c.LoanInterestDue,
			c.LateFineAmount,
			c.CarryForwardAmount,
			c.MinimumDueAmount,
			c.RemainingAmount,
			c.DueDate,
			c.Status,
		)
	}

	query := fmt.Sprintf(`INSERT INTO member_contributions (period_id, member_id, compulsory_contribution_due,
             loan_interest_due, late_fine_amount, carry_forward_amount, minimum_due_amount,
             remaining_amount, due_date, status)
             VALUES %s
             ON CONFLICT (period_id, member_id) DO NOTHING`, strings.Join(valueStrings, ","))

	result, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return 0, wrapQueryErr(err, "contributions", "create")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(inserted), nil
}

// LatestCashAllocation gets the most recently recorded cash allocation in a
// period, or nil when none was recorded
func (r *ContributionRepo) LatestCashAllocation(ctx context.Context, periodID int) (*models.CashAllocation, error) {
	query := `SELECT cash_allocation FROM member_contributions
             WHERE period_id = $1 AND cash_allocation IS NOT NULL
             ORDER BY updated_at DESC, id DESC
             LIMIT 1`

	alloc := &models.CashAllocation{}
	err := r.db.QueryRowContext(ctx, query, periodID).Scan(alloc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapQueryErr(err, "cash allocation", "get")
	}

	return alloc, nil
}

func scanContribution(row rowScanner) (*models.Contribution, error) {
	c := &models.Contribution{}
	err := row.Scan(
		&c.ID,
		&c.PeriodID,
		&c.MemberID,
		&c.MemberName,
		&c.CompulsoryContributionDue,
		&c.LoanInterestDue,
		&c.LateFineAmount,
		&c.CarryForwardAmount,
		&c.MinimumDueAmount,
		&c.CompulsoryContributionPaid,
		&c.LoanInterestPaid,
		&c.LateFinePaid,
		&c.TotalPaid,
		&c.RemainingAmount,
		&c.CreditBalance,
		&c.DaysLate,
		&c.DueDate,
		&c.Status,
		&c.PaidDate,
		&c.CashAllocation,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "contribution", "get")
	}

	return c, nil
}
