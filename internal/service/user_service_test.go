package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shg-service/internal/models"
	"shg-service/pkg/apperror"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Now())

	reg := &models.UserRegistration{
		Username:  "leader01",
		Email:     "leader01@example.com",
		Password:  "Str0ngPass!",
		FirstName: "Asha",
		LastName:  "Patil",
	}
	id, err := f.svc.User.Register(ctx, reg)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = f.svc.User.Register(ctx, reg)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	token, err := f.svc.User.Login(ctx, &models.UserLogin{Username: "leader01", Password: "Str0ngPass!"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(f.cfg.JWT.Secret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(id), claims["user_id"])

	_, err = f.svc.User.Login(ctx, &models.UserLogin{Username: "leader01", Password: "wrong-password"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = f.svc.User.Login(ctx, &models.UserLogin{Username: "nobody", Password: "Str0ngPass!"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	user, err := f.svc.User.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, user.PassHash)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture(time.Now())

	_, err := f.svc.User.Register(context.Background(), &models.UserRegistration{
		Username:  "leader02",
		Email:     "leader02@example.com",
		Password:  "alllowercase",
		FirstName: "Asha",
		LastName:  "Patil",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
