package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/api/flash"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AuthHandler serves registration, login, logout and password change.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionManager
	logger   *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, logger: logger}
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Title": "Register", "Roles": domain.Roles})
}

// Register handles POST /register. Only an admin may choose the new account's role.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/register", flash.Warning, "Username and password required.")
	}

	role := domain.RoleUser
	principal, isLoggedIn := auth.PrincipalFromContext(c)
	byAdmin := isLoggedIn && principal.Can(auth.ActionManageUsers)
	if byAdmin && req.Role != "" {
		role = domain.Role(req.Role)
	}

	user, err := h.auth.Register(c.UserContext(), req.Username, req.Password, role)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeValidation) && !apperrors.HasCode(err, apperrors.CodeConflict) {
			h.logger.Error("register failed", zap.Error(err))
		}
		return failRedirect(c, "/register", err)
	}

	if byAdmin {
		return flash.Redirect(c, "/manage_users", flash.Success, "User "+user.Username+" created.")
	}
	return flash.Redirect(c, auth.LoginPath, flash.Success, "Registered successfully.")
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); ok {
		return c.Redirect(auth.DashboardPath)
	}
	return render(c, "login", fiber.Map{"Title": "Login"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		flash.Add(c, flash.Danger, "Invalid credentials.")
		return render(c, "login", fiber.Map{"Title": "Login"})
	}

	user, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			h.logger.Error("login failed", zap.Error(err))
		}
		flash.Add(c, flash.Danger, apperrors.PublicMessage(err))
		return render(c, "login", fiber.Map{"Title": "Login", "Username": req.Username})
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		return err
	}
	if user.MustChangePassword {
		return flash.Redirect(c, auth.ChangePasswordPath, flash.Warning, "You must change your password before continuing.")
	}
	return flash.Redirect(c, auth.DashboardPath, flash.Success, "Logged in successfully.")
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.End(c); err != nil {
		h.logger.Warn("end session", zap.Error(err))
	}
	return flash.Redirect(c, auth.LoginPath, flash.Info, "Logged out.")
}

// ChangePasswordPage handles GET /change_password.
func (h *AuthHandler) ChangePasswordPage(c *fiber.Ctx) error {
	return render(c, "change_password", fiber.Map{"Title": "Change password"})
}

// ChangePassword handles POST /change_password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in to access this page.")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, auth.ChangePasswordPath, flash.Warning, "New password required.")
	}
	if req.NewPassword != req.ConfirmPassword {
		return flash.Redirect(c, auth.ChangePasswordPath, flash.Warning, "Passwords do not match.")
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return failRedirect(c, auth.ChangePasswordPath, err)
	}
	return flash.Redirect(c, auth.DashboardPath, flash.Success, "Password updated.")
}
