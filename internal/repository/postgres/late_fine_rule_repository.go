package postgres

import (
	"context"
	"fmt"
	"strings"

	"shg-service/internal/models"
)

// LateFineRuleRepo is a PostgreSQL implementation of the repository.LateFineRuleRepository interface
type LateFineRuleRepo struct {
	db DBTX
}

// NewLateFineRuleRepository creates a new LateFineRuleRepo
func NewLateFineRuleRepository(db DBTX) *LateFineRuleRepo {
	return &LateFineRuleRepo{db: db}
}

// GetByGroupID gets a group's rule together with its tiers
func (r *LateFineRuleRepo) GetByGroupID(ctx context.Context, groupID int) (*models.LateFineRule, error) {
	query := `SELECT id, group_id, rule_type, is_enabled, daily_amount, daily_percentage, created_at, updated_at
             FROM late_fine_rules WHERE group_id = $1`

	rule := &models.LateFineRule{}
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(
		&rule.ID,
		&rule.GroupID,
		&rule.RuleType,
		&rule.IsEnabled,
		&rule.DailyAmount,
		&rule.DailyPercentage,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "late fine rule", "get")
	}

	tiers, err := r.getTiers(ctx, rule.ID)
	if err != nil {
		return nil, err
	}
	rule.Tiers = tiers

	return rule, nil
}

// Replace stores rule as the group's only rule, replacing any existing tiers.
// It must run inside a transaction.
func (r *LateFineRuleRepo) Replace(ctx context.Context, rule *models.LateFineRule) (int, error) {
	query := `INSERT INTO late_fine_rules (group_id, rule_type, is_enabled, daily_amount, daily_percentage)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (group_id) DO UPDATE
             SET rule_type = EXCLUDED.rule_type,
                 is_enabled = EXCLUDED.is_enabled,
                 daily_amount = EXCLUDED.daily_amount,
                 daily_percentage = EXCLUDED.daily_percentage,
                 updated_at = NOW()
             RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		rule.GroupID,
		rule.RuleType,
		rule.IsEnabled,
		rule.DailyAmount,
		rule.DailyPercentage,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "late fine rule", "save")
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM late_fine_rule_tiers WHERE rule_id = $1`, id); err != nil {
		return 0, wrapQueryErr(err, "late fine rule tiers", "delete")
	}

	if len(rule.Tiers) == 0 {
		return id, nil
	}

	valueStrings := make([]string, 0, len(rule.Tiers))
	valueArgs := make([]interface{}, 0, len(rule.Tiers)*5)

	for i, tier := range rule.Tiers {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))

		valueArgs = append(valueArgs,
			id,
			tier.StartDay,
			tier.EndDay,
			tier.Amount,
			tier.IsPercentage,
		)
	}

	insert := fmt.Sprintf(`INSERT INTO late_fine_rule_tiers (rule_id, start_day, end_day, amount, is_percentage)
             VALUES %s`, strings.Join(valueStrings, ","))

	if _, err := r.db.ExecContext(ctx, insert, valueArgs...); err != nil {
		return 0, wrapQueryErr(err, "late fine rule tiers", "create")
	}

	return id, nil
}

func (r *LateFineRuleRepo) getTiers(ctx context.Context, ruleID int) ([]*models.LateFineTier, error) {
	query := `SELECT id, rule_id, start_day, end_day, amount, is_percentage
             FROM late_fine_rule_tiers WHERE rule_id = $1
             ORDER BY start_day, id`

	rows, err := r.db.QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, wrapQueryErr(err, "late fine rule tiers", "get")
	}
	defer rows.Close()

	var tiers []*models.LateFineTier
	for rows.Next() {
		tier := &models.LateFineTier{}
		if err := rows.Scan(
			&tier.ID,
			&tier.RuleID,
			&tier.StartDay,
			&tier.EndDay,
			&tier.Amount,
			&tier.IsPercentage,
		); err != nil {
			return nil, wrapQueryErr(err, "late fine rule tier", "scan")
		}
		tiers = append(tiers, tier)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "late fine rule tiers", "iterate")
	}

	return tiers, nil
}
