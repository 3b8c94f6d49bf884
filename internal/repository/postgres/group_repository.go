package postgres

import (
	"context"

	"shg-service/internal/models"
)

// GroupRepo is a PostgreSQL implementation of the repository.GroupRepository interface
type GroupRepo struct {
	db DBTX
}

// NewGroupRepository creates a new GroupRepo
func NewGroupRepository(db DBTX) *GroupRepo {
	return &GroupRepo{db: db}
}

const groupColumns = `id, name, leader_id, collection_frequency, collection_day_of_month,
             collection_day_of_week, collection_week_of_month, monthly_contribution, interest_rate,
             cash_in_hand, cash_in_bank, created_at, updated_at`

// Create creates a new group in the database
func (r *GroupRepo) Create(ctx context.Context, group *models.Group) (int, error) {
	query := `INSERT INTO groups (name, leader_id, collection_frequency, collection_day_of_month,
             collection_day_of_week, collection_week_of_month, monthly_contribution, interest_rate,
             cash_in_hand, cash_in_bank)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		group.Name,
		group.LeaderID,
		group.CollectionFrequency,
		group.CollectionDayOfMonth,
		group.CollectionDayOfWeek,
		group.CollectionWeekOfMonth,
		group.MonthlyContribution,
		group.InterestRate,
		group.CashInHand,
		group.CashInBank,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "group", "create")
	}

	return id, nil
}

// GetByID gets a group by ID
func (r *GroupRepo) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return r.scanGroup(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate gets a group and locks its row until the transaction ends
func (r *GroupRepo) GetByIDForUpdate(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 FOR UPDATE`
	return r.scanGroup(r.db.QueryRowContext(ctx, query, id))
}

// GetByLeaderID gets all groups led by a user
func (r *GroupRepo) GetByLeaderID(ctx context.Context, leaderID int) ([]*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE leader_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, leaderID)
	if err != nil {
		return nil, wrapQueryErr(err, "groups", "get")
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := r.scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "groups", "iterate")
	}

	return groups, nil
}

// Update updates a group's settings
func (r *GroupRepo) Update(ctx context.Context, group *models.Group) error {
	query := `UPDATE groups
             SET name = $1, collection_frequency = $2, collection_day_of_month = $3,
                 collection_day_of_week = $4, collection_week_of_month = $5,
                 monthly_contribution = $6, interest_rate = $7, updated_at = NOW()
             WHERE id = $8`

	result, err := r.db.ExecContext(
		ctx,
		query,
		group.Name,
		group.CollectionFrequency,
		group.CollectionDayOfMonth,
		group.CollectionDayOfWeek,
		group.CollectionWeekOfMonth,
		group.MonthlyContribution,
		group.InterestRate,
		group.ID,
	)

	if err != nil {
		return wrapQueryErr(err, "group", "update")
	}

	return checkAffected(result, "group")
}

// UpdateBalances sets a group's cash in hand and bank
func (r *GroupRepo) UpdateBalances(ctx context.Context, id int, cashInHand, cashInBank float64) error {
	query := `UPDATE groups SET cash_in_hand = $1, cash_in_bank = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, cashInHand, cashInBank, id)
	if err != nil {
		return wrapQueryErr(err, "group", "update balances of")
	}

	return checkAffected(result, "group")
}

func (r *GroupRepo) scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.LeaderID,
		&group.CollectionFrequency,
		&group.CollectionDayOfMonth,
		&group.CollectionDayOfWeek,
		&group.CollectionWeekOfMonth,
		&group.MonthlyContribution,
		&group.InterestRate,
		&group.CashInHand,
		&group.CashInBank,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "group", "get")
	}

	return group, nil
}
