package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/flash"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
)

// ExportHandler serves ticket downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export handles GET /export/:format (csv or xlsx).
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in.")
	}
	data, format, err := h.exports.Export(c.UserContext(), principal.User, c.Params("format"))
	if err != nil {
		return failRedirect(c, auth.DashboardPath, err)
	}
	c.Attachment(format.Filename())
	c.Set(fiber.HeaderContentType, format.ContentType())
	return c.Send(data)
}
