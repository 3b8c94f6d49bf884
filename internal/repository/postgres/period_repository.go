package postgres

import (
	"context"

	"shg-service/internal/models"
)

// PeriodRepo is a PostgreSQL implementation of the repository.PeriodRepository interface
type PeriodRepo struct {
	db DBTX
}

// NewPeriodRepository creates a new PeriodRepo
func NewPeriodRepository(db DBTX) *PeriodRepo {
	return &PeriodRepo{db: db}
}

const periodColumns = `id, group_id, sequence_number, start_date, status, standing_at_start,
             opening_cash_in_hand, opening_cash_in_bank, cash_in_hand_at_end, cash_in_bank_at_end,
             total_standing_at_end, total_collection, interest_earned, late_fines_collected,
             new_contributions, loan_assets_at_end, members_present, closed_at, closed_by,
             created_at, updated_at`

// Create creates a new open period in the database
func (r *PeriodRepo) Create(ctx context.Context, period *models.Period) (int, error) {
	query := `INSERT INTO group_periods (group_id, sequence_number, start_date, status, standing_at_start,
             opening_cash_in_hand, opening_cash_in_bank)
             VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		period.GroupID,
		period.SequenceNumber,
		period.StartDate,
		period.Status,
		period.StandingAtStart,
		period.OpeningCashInHand,
		period.OpeningCashInBank,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "period", "create")
	}

	return id, nil
}

// GetByID gets a period by ID
func (r *PeriodRepo) GetByID(ctx context.Context, id int) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods WHERE id = $1`
	return scanPeriod(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate gets a period and locks its row until the transaction ends
func (r *PeriodRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods WHERE id = $1 FOR UPDATE`
	return scanPeriod(r.db.QueryRowContext(ctx, query, id))
}

// GetCurrentOpen gets the group's earliest open period
func (r *PeriodRepo) GetCurrentOpen(ctx context.Context, groupID int) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods
             WHERE group_id = $1 AND status = 'OPEN'
             ORDER BY sequence_number
             LIMIT 1`

	return scanPeriod(r.db.QueryRowContext(ctx, query, groupID))
}

// GetBySequence gets the group's period with the given sequence number
func (r *PeriodRepo) GetBySequence(ctx context.Context, groupID, sequence int) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods WHERE group_id = $1 AND sequence_number = $2`
	return scanPeriod(r.db.QueryRowContext(ctx, query, groupID, sequence))
}

// GetLatest gets the group's period with the highest sequence number
func (r *PeriodRepo) GetLatest(ctx context.Context, groupID int) (*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods
             WHERE group_id = $1
             ORDER BY sequence_number DESC
             LIMIT 1`

	return scanPeriod(r.db.QueryRowContext(ctx, query, groupID))
}

// GetByGroupID gets all periods of a group, newest first
func (r *PeriodRepo) GetByGroupID(ctx context.Context, groupID int) ([]*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods
             WHERE group_id = $1
             ORDER BY sequence_number DESC`

	return r.list(ctx, query, groupID)
}

// GetClosed gets up to limit of the group's closed periods, newest first
func (r *PeriodRepo) GetClosed(ctx context.Context, groupID, limit int) ([]*models.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM group_periods
             WHERE group_id = $1 AND status = 'CLOSED'
             ORDER BY sequence_number DESC
             LIMIT $2`

	return r.list(ctx, query, groupID, limit)
}

// Update writes every mutable column of a period
func (r *PeriodRepo) Update(ctx context.Context, period *models.Period) error {
	query := `UPDATE group_periods
             SET start_date = $1, status = $2, standing_at_start = $3,
                 opening_cash_in_hand = $4, opening_cash_in_bank = $5,
                 cash_in_hand_at_end = $6, cash_in_bank_at_end = $7, total_standing_at_end = $8,
                 total_collection = $9, interest_earned = $10, late_fines_collected = $11,
                 new_contributions = $12, loan_assets_at_end = $13, members_present = $14,
                 closed_at = $15, closed_by = $16, updated_at = NOW()
             WHERE id = $17`

	result, err := r.db.ExecContext(
		ctx,
		query,
		period.StartDate,
		period.Status,
		period.StandingAtStart,
		period.OpeningCashInHand,
		period.OpeningCashInBank,
		period.CashInHandAtEnd,
		period.CashInBankAtEnd,
		period.TotalStandingAtEnd,
		period.TotalCollection,
		period.InterestEarned,
		period.LateFinesCollected,
		period.NewContributions,
		period.LoanAssetsAtEnd,
		period.MembersPresent,
		period.ClosedAt,
		period.ClosedBy,
		period.ID,
	)

	if err != nil {
		return wrapQueryErr(err, "period", "update")
	}

	return checkAffected(result, "period")
}

func (r *PeriodRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Period, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr(err, "periods", "get")
	}
	defer rows.Close()

	var periods []*models.Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "periods", "iterate")
	}

	return periods, nil
}

func scanPeriod(row rowScanner) (*models.Period, error) {
	period := &models.Period{}
	err := row.Scan(
		&period.ID,
		&period.GroupID,
		&period.SequenceNumber,
		&period.StartDate,
		&period.Status,
		&period.StandingAtStart,
		&period.OpeningCashInHand,
		&period.OpeningCashInBank,
		&period.CashInHandAtEnd,
		&period.CashInBankAtEnd,
		&period.TotalStandingAtEnd,
		&period.TotalCollection,
		&period.InterestEarned,
		&period.LateFinesCollected,
		&period.NewContributions,
		&period.LoanAssetsAtEnd,
		&period.MembersPresent,
		&period.ClosedAt,
		&period.ClosedBy,
		&period.CreatedAt,
		&period.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "period", "get")
	}

	return period, nil
}
