package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account with the given role.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("Username and password required.", nil)
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, apperrors.NewValidationError("Unknown role.", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Username already exists.", map[string]any{"username": username})
		}
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Actor:     events.Actor{UserID: user.ID, Role: user.Role},
		Payload:   events.UserRegisteredPayload{Username: user.Username, Role: user.Role},
	})
	return user, nil
}

// Login verifies credentials and returns the matching account.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid credentials.")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("Invalid credentials.")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
// A successful change clears the forced-change flag.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("New password required.", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return apperrors.NewInternalError(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return apperrors.NewUnauthorized("Current password is incorrect.")
	}
	if currentPassword == newPassword {
		return apperrors.NewValidationError("New password must differ from the current one.", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventPasswordChanged,
		SubjectID: user.ID,
		Actor:     events.Actor{UserID: user.ID, Role: user.Role},
	})
	return nil
}

// EnsureAdmin seeds an admin account when none exists. The seeded account must change
// its password on first login. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	count, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	admin := &domain.User{
		Username:           cfg.Username,
		PasswordHash:       hash,
		Role:               domain.RoleAdmin,
		MustChangePassword: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, apperrors.NewConflict("bootstrap admin username is taken by a non-admin account; set ADMIN_USERNAME", map[string]any{"username": cfg.Username})
		}
		return false, apperrors.NewInternalError(err)
	}

	s.logger.Warn("seeded default admin account; password change required at first login",
		zap.String("username", admin.Username),
		zap.Int64("user_id", admin.ID))
	return true, nil
}
