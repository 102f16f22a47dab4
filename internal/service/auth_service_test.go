package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/internal/auth"
	"roombooking/internal/db"
	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, "secret", time.Hour, quietLogger())
	ctx := context.Background()

	profile, err := svc.Register(ctx, entities.RegisterRequest{FullName: " Eva Prado ", Email: "Eva@Escola.br", Password: "senha-forte"})
	require.NoError(t, err)
	assert.Equal(t, "eva@escola.br", profile.Email)
	assert.Equal(t, "Eva Prado", profile.FullName)
	assert.Equal(t, db.RoleStudent, profile.Role)
	assert.NotEqual(t, "senha-forte", profile.PasswordHash)

	_, err = svc.Register(ctx, entities.RegisterRequest{FullName: "Eva", Email: "eva@escola.br", Password: "outra-senha"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	_, err = svc.Register(ctx, entities.RegisterRequest{FullName: "Eva", Email: "eva2@escola.br", Password: "curta"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	resp, err := svc.Login(ctx, entities.LoginRequest{Email: "EVA@escola.br", Password: "senha-forte"})
	require.NoError(t, err)
	assert.Equal(t, db.RoleStudent, resp.Role)
	actor, err := auth.ParseToken([]byte("secret"), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, actor.UserID)

	_, err = svc.Login(ctx, entities.LoginRequest{Email: "eva@escola.br", Password: "errada123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, entities.LoginRequest{Email: "ninguem@escola.br", Password: "errada123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
