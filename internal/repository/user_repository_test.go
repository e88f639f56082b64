package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))

	user := &domain.User{Username: "alice", PasswordHash: "hash", Role: domain.RoleUser, MustChangePassword: true}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, domain.RoleUser, byID.Role)
	assert.True(t, byID.MustChangePassword)
	assert.Equal(t, user.CreatedAt.Unix(), byID.CreatedAt.Unix())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))

	require.NoError(t, repo.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h", Role: domain.RoleUser}))
	err := repo.Create(ctx, &domain.User{Username: "bob", PasswordHash: "h2", Role: domain.RoleAdmin})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))

	_, err := repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.UpdateRole(ctx, 404, domain.RoleAdmin), ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, 404, "h", false), ErrNotFound)
}

func TestUserRepositoryListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))

	admin := createUser(t, repo, domain.RoleAdmin)
	createUser(t, repo, domain.RoleTechnician)
	createUser(t, repo, domain.RoleUser)
	createUser(t, repo, domain.RoleUser)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, admin.ID, users[0].ID)
	for i := 1; i < len(users); i++ {
		assert.Less(t, users[i-1].ID, users[i].ID)
	}

	n, err := repo.CountByRole(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUserRepositoryUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))
	user := createUser(t, repo, domain.RoleUser)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, domain.RoleTechnician))
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash", true))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, got.Role)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.True(t, got.MustChangePassword)
}

func TestUserRepositoryUpdateRoleKeepsLastAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))
	first := createUser(t, repo, domain.RoleAdmin)
	second := createUser(t, repo, domain.RoleAdmin)

	require.NoError(t, repo.UpdateRole(ctx, first.ID, domain.RoleUser))
	assert.ErrorIs(t, repo.UpdateRole(ctx, second.ID, domain.RoleTechnician), ErrLastAdmin)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	require.NoError(t, repo.UpdateRole(ctx, first.ID, domain.RoleAdmin))
	assert.ErrorIs(t, repo.UpdateRole(ctx, 404, domain.RoleUser), ErrNotFound)
}

func TestUserRepositoryConcurrentDemotionsLeaveOneAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))
	admins := []*domain.User{createUser(t, repo, domain.RoleAdmin), createUser(t, repo, domain.RoleAdmin)}

	var wg sync.WaitGroup
	errs := make([]error, len(admins))
	for i, admin := range admins {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = repo.UpdateRole(ctx, id, domain.RoleUser)
		}(i, admin.ID)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrLastAdmin)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	n, err := repo.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
