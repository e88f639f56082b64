package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

func newTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	cfg := config.StoreConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "helpdesk.db"),
	}
	store, err := persistence.Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, persistence.RunMigrations(store, zap.NewNop()))
	return store
}

func createUser(t *testing.T, repo UserRepository, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     gofakeit.Username() + "_" + gofakeit.DigitN(6),
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
