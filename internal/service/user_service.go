package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"shg-service/configs"
	"shg-service/internal/models"
	"shg-service/internal/repository"
	"shg-service/pkg/apperror"
	"shg-service/pkg/crypto"
)

// UserSvc is an implementation of the service.UserService interface
type UserSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	config    *configs.Config
	validator *validator.Validate
	hasher    *crypto.PasswordHasher
	jwtSecret string
	jwtTTL    time.Duration
	now       func() time.Time
}

// NewUserService creates a new UserSvc
func NewUserService(deps Dependencies) *UserSvc {
	return &UserSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		config:    deps.Config,
		validator: newValidator(),
		hasher:    crypto.NewPasswordHasher(),
		jwtSecret: deps.Config.JWT.Secret,
		jwtTTL:    time.Duration(deps.Config.JWT.TTL) * time.Hour,
		now:       deps.clock(),
	}
}

// Register registers a new user
func (s *UserSvc) Register(ctx context.Context, userReg *models.UserRegistration) (int, error) {
	userReg.Sanitize()
	if err := validateRequest(s.validator, userReg); err != nil {
		return 0, err
	}
	if err := userReg.CheckPasswordStrength(); err != nil {
		return 0, apperror.Validation(err.Error(), nil)
	}

	// Check if username already exists
	_, err := s.repos.User.GetByUsername(ctx, userReg.Username)
	if err == nil {
		return 0, apperror.Conflict("username already exists")
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return 0, err
	}

	// Check if email already exists
	_, err = s.repos.User.GetByEmail(ctx, userReg.Email)
	if err == nil {
		return 0, apperror.Conflict("email already exists")
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return 0, err
	}

	user := userReg.ToUser()

	hashedPassword, err := s.hasher.HashPassword(user.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PassHash = hashedPassword

	id, err := s.repos.User.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("User registered: %d", id)

	return id, nil
}

// Login logs in a user and returns a JWT token
func (s *UserSvc) Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error) {
	if err := validateRequest(s.validator, login); err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByUsername(ctx, login.Username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	if !s.hasher.CheckPasswordHash(login.Password, user.PassHash) {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	expirationTime := s.now().Add(s.jwtTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infof("User logged in: %d", user.ID)

	return &models.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// GetByID gets a user by ID
func (s *UserSvc) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PassHash = ""

	return user, nil
}
