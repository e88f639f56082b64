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

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	users   *service.UserService
	logger  *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, userService *service.UserService, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, users: userService, logger: logger}
}

// NewTicketPage handles GET /new.
func (h *TicketsHandler) NewTicketPage(c *fiber.Ctx) error {
	users, err := h.users.ListRefs(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "new_ticket", fiber.Map{"Title": "New ticket", "Users": users})
}

// CreateTicket handles POST /new.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in to access this page.")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, "/new", flash.Warning, "Title and description are required.")
	}
	assignee, err := parseOptionalID(req.AssignedTo, "assigned_to")
	if err != nil {
		return failRedirect(c, "/new", err)
	}

	_, err = h.tickets.CreateTicket(c.UserContext(), principal.User.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignee,
	})
	if err != nil {
		h.logUnexpected("create ticket", err)
		return failRedirect(c, "/new", err)
	}
	return flash.Redirect(c, auth.DashboardPath, flash.Success, "Ticket created.")
}

// TicketDetail handles GET /ticket/:id. Owners see their own tickets; staff see all.
func (h *TicketsHandler) TicketDetail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in to access this page.")
	}
	id, err := parseID(c.Params("id"), "ticket id")
	if err != nil {
		return failRedirect(c, auth.DashboardPath, err)
	}

	ctx := c.UserContext()
	ticket, err := h.tickets.GetTicket(ctx, principal.User, id)
	if err != nil {
		h.logUnexpected("view ticket", err)
		return failRedirect(c, auth.DashboardPath, err)
	}
	data := fiber.Map{
		"Title":    ticket.Title,
		"Ticket":   *ticket,
		"Statuses": domain.TicketStatuses,
	}
	if principal.Can(auth.ActionAssignTicket) {
		users, err := h.users.ListRefs(ctx)
		if err != nil {
			return err
		}
		data["Users"] = users
	}
	return render(c, "ticket", data)
}

// UpdateStatus handles POST /update_status and answers with JSON.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in to access this page.")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return statusFailure(c, apperrors.NewValidationError("Invalid payload.", nil))
	}
	id, err := parseID(req.ID, "ticket id")
	if err != nil {
		return statusFailure(c, err)
	}

	if _, err := h.tickets.UpdateStatus(c.UserContext(), id, req.Status, principal.User); err != nil {
		h.logUnexpected("update status", err)
		return statusFailure(c, err)
	}
	return c.JSON(dto.StatusResponse{Success: true})
}

// AssignTicket handles POST /assign_ticket.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return flash.Redirect(c, auth.LoginPath, flash.Warning, "Please log in.")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return flash.Redirect(c, auth.DashboardPath, flash.Warning, "Invalid payload.")
	}
	ticketID, err := parseID(req.TicketID, "ticket id")
	if err != nil {
		return failRedirect(c, auth.DashboardPath, err)
	}
	assignee, err := parseOptionalID(req.AssignedTo, "assigned_to")
	if err != nil {
		return failRedirect(c, auth.DashboardPath, err)
	}

	if _, err := h.tickets.AssignTicket(c.UserContext(), ticketID, assignee, principal.User); err != nil {
		h.logUnexpected("assign ticket", err)
		return failRedirect(c, auth.DashboardPath, err)
	}
	return flash.Redirect(c, auth.DashboardPath, flash.Success, "Ticket assigned.")
}

func (h *TicketsHandler) logUnexpected(action string, err error) {
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		h.logger.Error(action+" failed", zap.Error(err))
	}
}

func statusFailure(c *fiber.Ctx, err error) error {
	de := apperrors.ToDomainError(err)
	return c.Status(de.HTTPStatus).JSON(dto.StatusResponse{
		Success: false,
		Error:   apperrors.PublicMessage(err),
	})
}
