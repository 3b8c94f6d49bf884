package postgres

import (
	"context"

	"shg-service/internal/models"
)

// UserRepo is a PostgreSQL implementation of the repository.UserRepository interface
type UserRepo struct {
	db DBTX
}

// NewUserRepository creates a new UserRepo
func NewUserRepository(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, created_at, updated_at`

// Create creates a new user in the database
func (r *UserRepo) Create(ctx context.Context, user *models.User) (int, error) {
	query := `INSERT INTO users (username, email, password_hash, first_name, last_name)
             VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PassHash,
		user.FirstName,
		user.LastName,
	).Scan(&id)

	if err != nil {
		return 0, wrapQueryErr(err, "user", "create")
	}

	return id, nil
}

// GetByID gets a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByUsername gets a user by username
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByEmail gets a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PassHash,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, wrapQueryErr(err, "user", "get")
	}

	return user, nil
}
