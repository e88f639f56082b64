package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// DashboardHandler renders the landing page.
type DashboardHandler struct {
	tickets *service.TicketService
	users   *service.UserService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, users *service.UserService) *DashboardHandler {
	return &DashboardHandler{tickets: tickets, users: users}
}

// Dashboard handles GET /. Query params q and status narrow the ticket list; the
// counters always cover the whole table.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return c.Redirect(auth.LoginPath)
	}
	ctx := c.UserContext()

	opts := service.TicketListOptions{Search: strings.TrimSpace(c.Query("q"))}
	if status, ok := domain.ParseTicketStatus(c.Query("status")); ok {
		opts.Status = &status
	}

	tickets, err := h.tickets.ListTickets(ctx, principal.User, opts)
	if err != nil {
		return err
	}
	counts, err := h.tickets.StatusCounts(ctx)
	if err != nil {
		return err
	}
	users, err := h.users.ListRefs(ctx)
	if err != nil {
		return err
	}

	statusFilter := ""
	if opts.Status != nil {
		statusFilter = string(*opts.Status)
	}
	return render(c, "dashboard", fiber.Map{
		"Title":        "Dashboard",
		"Tickets":      tickets,
		"Counts":       counts,
		"Users":        users,
		"Statuses":     domain.TicketStatuses,
		"Query":        opts.Search,
		"StatusFilter": statusFilter,
	})
}
