package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
	// UpdateRole returns ErrLastAdmin instead of demoting the only admin.
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error
}

type userRepository struct {
	store *persistence.Store
}

// NewUserRepository returns a store-backed implementation.
func NewUserRepository(store *persistence.Store) UserRepository {
	return &userRepository{store: store}
}

const userColumns = `id, username, password, role, must_change_password, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.users.Create"
	const query = `
        INSERT INTO users (username, password, role, must_change_password, created_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	err := r.store.DB.QueryRowContext(ctx, r.store.Rebind(query),
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.MustChangePassword,
		formatTimestamp(user.CreatedAt),
	).Scan(&user.ID)
	if err != nil {
		if persistence.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "repository.users.GetByID"
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.store.DB.QueryRowContext(ctx, r.store.Rebind(query), id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const op = "repository.users.GetByUsername"
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user, err := scanUser(r.store.DB.QueryRowContext(ctx, r.store.Rebind(query), username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const op = "repository.users.List"
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.store.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	const op = "repository.users.CountByRole"
	const query = `SELECT COUNT(*) FROM users WHERE role = ?`

	var count int
	if err := r.store.DB.QueryRowContext(ctx, r.store.Rebind(query), string(role)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Admin head count used by the guarded role update. Postgres locks the admin rows so
// concurrent demotions wait and re-count; sqlite already serializes writers.
const (
	adminCountSQLite   = `(SELECT COUNT(*) FROM users WHERE role = 'admin')`
	adminCountPostgres = `(SELECT COUNT(*) FROM (SELECT id FROM users WHERE role = 'admin' FOR UPDATE) admins)`
)

// UpdateRole refuses, in the same statement, to demote the only remaining admin.
func (r *userRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	const op = "repository.users.UpdateRole"
	const promote = `UPDATE users SET role = ? WHERE id = ?`

	if role == domain.RoleAdmin {
		return r.execOne(ctx, op, promote, string(role), id)
	}

	adminCount := adminCountSQLite
	if r.store.Driver() == config.DriverPostgres {
		adminCount = adminCountPostgres
	}
	guarded := `UPDATE users SET role = ? WHERE id = ? AND (role <> 'admin' OR ` + adminCount + ` > 1)`

	err := r.execOne(ctx, op, guarded, string(role), id)
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return err
	}
	return fmt.Errorf("%s: %w", op, ErrLastAdmin)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error {
	const op = "repository.users.UpdatePassword"
	const query = `UPDATE users SET password = ?, must_change_password = ? WHERE id = ?`

	return r.execOne(ctx, op, query, hash, mustChange, id)
}

func (r *userRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.store.DB.ExecContext(ctx, r.store.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user      domain.User
		role      string
		createdAt string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&role,
		&user.MustChangePassword,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.Role = domain.Role(role)
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	user.CreatedAt = ts
	return &user, nil
}
