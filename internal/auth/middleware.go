package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User      *domain.User
	SessionID string
}

// Can reports whether the principal's role permits action.
func (p *Principal) Can(action Action) bool {
	return p != nil && p.User != nil && Allowed(p.User.Role, action)
}

// SessionMiddleware resolves the session cookie into a Principal.
type SessionMiddleware struct {
	sessions *SessionManager
	users    repository.UserRepository
	logger   *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions *SessionManager, users repository.UserRepository, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users, logger: logger}
}

// Identify loads the principal when a valid session is present. It never rejects a request.
func (m *SessionMiddleware) Identify(c *fiber.Ctx) error {
	claims, ok := m.sessions.Current(c)
	if !ok {
		return c.Next()
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		// The account behind the token is gone; drop the stale cookie.
		if endErr := m.sessions.End(c); endErr != nil {
			m.logger.Warn("end stale session", zap.Error(endErr))
		}
		return c.Next()
	}

	c.Locals(principalKey, &Principal{User: user, SessionID: claims.ID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}
