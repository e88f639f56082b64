package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "helpdesk_session"

// SessionManager binds authenticated user ids to signed session cookies.
type SessionManager struct {
	tokens  *TokenManager
	revoked RevocationStore
	secure  bool
	logger  *zap.Logger
}

// NewSessionManager constructs a manager.
func NewSessionManager(tokens *TokenManager, revoked RevocationStore, secureCookie bool, logger *zap.Logger) *SessionManager {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &SessionManager{tokens: tokens, revoked: revoked, secure: secureCookie, logger: logger}
}

// Start issues a session for userID and sets the cookie.
func (m *SessionManager) Start(c *fiber.Ctx, userID int64) error {
	token, claims, err := m.tokens.GenerateToken(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Current returns the claims of a valid, unrevoked session on the request.
func (m *SessionManager) Current(c *fiber.Ctx) (*Claims, bool) {
	raw := c.Cookies(SessionCookie)
	if raw == "" {
		return nil, false
	}
	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return nil, false
	}
	revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
	if err != nil {
		m.logger.Warn("revocation lookup failed", zap.Error(err))
		return nil, false
	}
	if revoked {
		return nil, false
	}
	return claims, true
}

// End revokes the request's session, if any, and clears the cookie.
func (m *SessionManager) End(c *fiber.Ctx) error {
	var err error
	if raw := c.Cookies(SessionCookie); raw != "" {
		if claims, parseErr := m.tokens.ParseToken(raw); parseErr == nil {
			err = m.revoked.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return err
}
