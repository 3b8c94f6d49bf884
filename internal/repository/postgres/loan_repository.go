package postgres

import (
	"context"

	"shg-service/internal/models"
)

// LoanRepo is a PostgreSQL implementation of the repository.LoanRepository interface
type LoanRepo struct {
	db DBTX
}

// NewLoanRepository creates a new LoanRepo
func NewLoanRepository(db DBTX) *LoanRepo {
	return &LoanRepo{db: db}
}

const loanColumns = `l.id, l.group_id, l.member_id, m.name, l.loan_type, l.original_amount,
             l.current_balance, l.interest_rate, l.date_issued, l.status, l.grantor_info,
             l.created_at, l.updated_at`

// Create creates a new loan in the database
func (r *LoanRepo) Create(ctx context.Context, loan *models.Loan) (int, error) {
	query := `INSERT INTO loans (group_id, member_id, loan_type, original_amount, current_balance,
             interest_rate, date_issued, status, grantor_info)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		loan.GroupID,
		loan.MemberID,
		loan.LoanType,
		loan.OriginalAmount,
		loan.CurrentBalance,
		loan.InterestRate,
		loan.DateIssued,
		loan.Status,
		loan.GrantorInfo,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "loan", "create")
	}

	return id, nil
}

// GetByIDForUpdate gets a loan and locks its row until the transaction ends
func (r *LoanRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + `
             FROM loans l JOIN members m ON m.id = l.member_id
             WHERE l.id = $1
             FOR UPDATE OF l`

	return scanLoan(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestActiveByMemberForUpdate gets a member's most recently issued
// active loan and locks it
func (r *LoanRepo) GetLatestActiveByMemberForUpdate(ctx context.Context, memberID int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + `
             FROM loans l JOIN members m ON m.id = l.member_id
             WHERE l.member_id = $1 AND l.status = 'ACTIVE'
             ORDER BY l.date_issued DESC, l.id DESC
             LIMIT 1
             FOR UPDATE OF l`

	return scanLoan(r.db.QueryRowContext(ctx, query, memberID))
}

// GetByGroupID gets all loans of a group
func (r *LoanRepo) GetByGroupID(ctx context.Context, groupID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + `
             FROM loans l JOIN members m ON m.id = l.member_id
             WHERE l.group_id = $1
             ORDER BY l.date_issued DESC, l.id DESC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, wrapQueryErr(err, "loans", "get")
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "loans", "iterate")
	}

	return loans, nil
}

// UpdateBalance stores a loan's balance and status
func (r *LoanRepo) UpdateBalance(ctx context.Context, loan *models.Loan) error {
	query := `UPDATE loans SET current_balance = $1, status = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, loan.CurrentBalance, loan.Status, loan.ID)
	if err != nil {
		return wrapQueryErr(err, "loan", "update")
	}

	return checkAffected(result, "loan")
}

// SumActiveByMember is the member's outstanding balance over active loans
func (r *LoanRepo) SumActiveByMember(ctx context.Context, memberID int) (float64, error) {
	query := `SELECT COALESCE(SUM(current_balance), 0) FROM loans WHERE member_id = $1 AND status = 'ACTIVE'`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, memberID).Scan(&total); err != nil {
		return 0, wrapQueryErr(err, "loan balance", "sum")
	}

	return total, nil
}

// ActiveBalancesByGroup maps each member with active loans in the group to
// the member's outstanding balance
func (r *LoanRepo) ActiveBalancesByGroup(ctx context.Context, groupID int) (map[int]float64, error) {
	query := `SELECT member_id, SUM(current_balance)
             FROM loans
             WHERE group_id = $1 AND status = 'ACTIVE'
             GROUP BY member_id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, wrapQueryErr(err, "loan balances", "get")
	}
	defer rows.Close()

	balances := make(map[int]float64)
	for rows.Next() {
		var memberID int
		var balance float64
		if err := rows.Scan(&memberID, &balance); err != nil {
			return nil, wrapQueryErr(err, "loan balance", "scan")
		}
		balances[memberID] = balance
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "loan balances", "iterate")
	}

	return balances, nil
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(
		&loan.ID,
		&loan.GroupID,
		&loan.MemberID,
		&loan.MemberName,
		&loan.LoanType,
		&loan.OriginalAmount,
		&loan.CurrentBalance,
		&loan.InterestRate,
		&loan.DateIssued,
		&loan.Status,
		&loan.GrantorInfo,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "loan", "get")
	}

	return loan, nil
}
