package service

import (
	"context"
	"errors"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService backs the admin user-management screens.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher) *UserService {
	return &UserService{users: users, dispatcher: dispatcher}
}

// ListUsers returns every account ordered by id.
func (s *UserService) ListUsers(ctx context.Context, requester *domain.User) ([]domain.User, error) {
	if requester == nil || !auth.Allowed(requester.Role, auth.ActionManageUsers) {
		return nil, apperrors.NewForbidden("You do not have permission.")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// ListRefs returns id/username pairs for assignee pickers.
func (s *UserService) ListRefs(ctx context.Context) ([]domain.UserRef, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refs := make([]domain.UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, domain.UserRef{ID: u.ID, Username: u.Username})
	}
	return refs, nil
}

// ChangeRole sets a new role on an account. The last admin cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, requester *domain.User, userID int64, newRole string) (*domain.User, error) {
	if requester == nil || !auth.Allowed(requester.Role, auth.ActionManageUsers) {
		return nil, apperrors.NewForbidden("You do not have permission.")
	}
	role, ok := domain.ParseRole(newRole)
	if !ok {
		return nil, apperrors.NewValidationError("Unknown role.", map[string]any{"role": newRole})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		if errors.Is(err, repository.ErrLastAdmin) {
			return nil, apperrors.NewValidationError("At least one admin must remain.", nil)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, apperrors.NewInternalError(err)
	}

	oldRole := user.Role
	user.Role = role
	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventUserRoleChanged,
		SubjectID: user.ID,
		Actor:     actorOf(requester),
		Payload:   events.UserRoleChangedPayload{OldRole: oldRole, NewRole: role},
	})
	return user, nil
}
