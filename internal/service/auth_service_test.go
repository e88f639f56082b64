package service

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)

	user := env.register(t, "  "+username+" ", password, domain.RoleUser)
	assert.Equal(t, username, user.Username)
	assert.NotEqual(t, password, user.PasswordHash)

	loggedIn, err := env.auth.Login(ctx, username, password)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	require.Len(t, env.recorder.ofType(events.EventUserRegistered), 1)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "", "pw", domain.RoleUser)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = env.auth.Register(ctx, "carol", "", domain.RoleUser)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = env.auth.Register(ctx, "carol", "pw", domain.Role("root"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dave", "pw1", domain.RoleUser)

	_, err := env.auth.Register(context.Background(), "dave", "pw2", domain.RoleTechnician)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, "Username already exists.", apperrors.PublicMessage(err))

	n, err := env.users.CountByRole(context.Background(), domain.RoleTechnician)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "erin", "right", domain.RoleUser)

	_, err := env.auth.Login(ctx, "erin", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = env.auth.Login(ctx, "nobody", "right")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	assert.Equal(t, "Invalid credentials.", apperrors.PublicMessage(err))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "frank", "old-pass", domain.RoleUser)
	require.NoError(t, env.users.UpdatePassword(ctx, user.ID, user.PasswordHash, true))

	err := env.auth.ChangePassword(ctx, user.ID, "bad-guess", "new-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	err = env.auth.ChangePassword(ctx, user.ID, "old-pass", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	require.NoError(t, env.auth.ChangePassword(ctx, user.ID, "old-pass", "new-pass"))

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.MustChangePassword)

	_, err = env.auth.Login(ctx, "frank", "old-pass")
	assert.Error(t, err)
	_, err = env.auth.Login(ctx, "frank", "new-pass")
	assert.NoError(t, err)
	assert.Len(t, env.recorder.ofType(events.EventPasswordChanged), 1)
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cfg := config.AdminConfig{Username: "admin", Password: "admin123"}

	created, err := env.auth.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.auth.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := env.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.MustChangePassword)
}

func TestEnsureAdminConflictsWithNonAdminUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "admin", "whatever", domain.RoleUser)

	_, err := env.auth.EnsureAdmin(context.Background(), config.AdminConfig{Username: "admin", Password: "admin123"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
