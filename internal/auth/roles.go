package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/flash"
)

// Paths the guards redirect to.
const (
	LoginPath          = "/login"
	DashboardPath      = "/"
	ChangePasswordPath = "/change_password"
	LogoutPath         = "/logout"
)

// RequireLogin redirects anonymous callers to the login page. Accounts flagged for a
// password change are held on the change-password page until they pick a new one.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return flash.Redirect(c, LoginPath, flash.Warning, "Please log in to access this page.")
		}
		if principal.User.MustChangePassword && c.Path() != ChangePasswordPath && c.Path() != LogoutPath {
			return flash.Redirect(c, ChangePasswordPath, flash.Warning, "You must change your password before continuing.")
		}
		return c.Next()
	}
}

// RequireAction ensures the principal's role permits action.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return flash.Redirect(c, LoginPath, flash.Warning, "Please log in.")
		}
		if !principal.Can(action) {
			return flash.Redirect(c, DashboardPath, flash.Danger, "You do not have permission.")
		}
		return c.Next()
	}
}
