package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/api/flash"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// UsersHandler exposes admin user management.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// ManageUsers handles GET /manage_users.
func (h *UsersHandler) ManageUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath)
	}
	users, err := h.users.ListUsers(c.UserContext(), principal.User)
	if err != nil {
		return failRedirect(c, auth.DashboardPath, err)
	}
	return render(c, "manage_users", fiber.Map{
		"Title": "Manage users",
		"Users": users,
		"Roles": domain.Roles,
	})
}

// ChangeRole handles POST /change_role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath)
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/manage_users", flash.Warning, "Invalid payload.")
	}
	userID, err := parseID(req.UserID, "user id")
	if err != nil {
		return failRedirect(c, "/manage_users", err)
	}
	if _, err := h.users.ChangeRole(c.UserContext(), principal.User, userID, req.Role); err != nil {
		return failRedirect(c, "/manage_users", err)
	}
	return flash.Redirect(c, "/manage_users", flash.Success, "Role updated.")
}
