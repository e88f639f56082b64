package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/flash"
	"github.com/spec-kit/helpdesk/internal/auth"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Layout wraps every page.
const Layout = "layouts/main"

// render adds the common page data and renders name inside the layout.
func render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		data["User"] = principal.User
		data["IsStaff"] = principal.Can(auth.ActionViewAllTickets)
		data["IsAdmin"] = principal.Can(auth.ActionManageUsers)
	}
	data["Flashes"] = flash.Pop(c)
	return c.Render(name, data, Layout)
}

// failRedirect surfaces err as a notice and redirects. Internal details stay out of the notice.
func failRedirect(c *fiber.Ctx, location string, err error) error {
	level := flash.Danger
	if apperrors.HasCode(err, apperrors.CodeValidation) {
		level = flash.Warning
	}
	return flash.Redirect(c, location, level, apperrors.PublicMessage(err))
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid "+field+".", map[string]any{field: raw})
	}
	return id, nil
}

// parseOptionalID treats an empty value as "none".
func parseOptionalID(raw, field string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
