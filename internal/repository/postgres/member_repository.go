package postgres

import (
	"context"

	"shg-service/internal/models"
)

// MemberRepo is a PostgreSQL implementation of the repository.MemberRepository interface
type MemberRepo struct {
	db DBTX
}

// NewMemberRepository creates a new MemberRepo
func NewMemberRepository(db DBTX) *MemberRepo {
	return &MemberRepo{db: db}
}

const memberColumns = `id, group_id, name, email, phone, is_active, loan_balance_cache, created_at, updated_at`

// Create creates a new member in the database
func (r *MemberRepo) Create(ctx context.Context, member *models.Member) (int, error) {
	query := `INSERT INTO members (group_id, name, email, phone, is_active)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		member.GroupID,
		member.Name,
		member.Email,
		member.Phone,
		member.IsActive,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "member", "create")
	}

	return id, nil
}

// GetByID gets a member by ID
func (r *MemberRepo) GetByID(ctx context.Context, id int) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.db.QueryRowContext(ctx, query, id))
}

// GetByGroupID gets all members of a group
func (r *MemberRepo) GetByGroupID(ctx context.Context, groupID int) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE group_id = $1 ORDER BY name, id`
	return r.list(ctx, query, groupID)
}

// GetActiveByGroupID gets the active members of a group
func (r *MemberRepo) GetActiveByGroupID(ctx context.Context, groupID int) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE group_id = $1 AND is_active ORDER BY name, id`
	return r.list(ctx, query, groupID)
}

// UpdateLoanBalanceCache recomputes a member's cached loan balance from the
// member's active loans
func (r *MemberRepo) UpdateLoanBalanceCache(ctx context.Context, memberID int) error {
	query := `UPDATE members
             SET loan_balance_cache = COALESCE((
                     SELECT SUM(current_balance) FROM loans
                     WHERE member_id = $1 AND status = 'ACTIVE'
                 ), 0),
                 updated_at = NOW()
             WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, memberID)
	if err != nil {
		return wrapQueryErr(err, "member", "refresh loan balance of")
	}

	return checkAffected(result, "member")
}

// RefreshGroupLoanBalanceCaches recomputes the cached loan balance of every
// member in a group
func (r *MemberRepo) RefreshGroupLoanBalanceCaches(ctx context.Context, groupID int) error {
	query := `UPDATE members m
             SET loan_balance_cache = COALESCE((
                     SELECT SUM(l.current_balance) FROM loans l
                     WHERE l.member_id = m.id AND l.status = 'ACTIVE'
                 ), 0),
                 updated_at = NOW()
             WHERE m.group_id = $1`

	if _, err := r.db.ExecContext(ctx, query, groupID); err != nil {
		return wrapQueryErr(err, "members", "refresh loan balances of")
	}

	return nil
}

func (r *MemberRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr(err, "members", "get")
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr(err, "members", "iterate")
	}

	return members, nil
}

func scanMember(row rowScanner) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.ID,
		&member.GroupID,
		&member.Name,
		&member.Email,
		&member.Phone,
		&member.IsActive,
		&member.LoanBalanceCache,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "member", "get")
	}

	return member, nil
}
