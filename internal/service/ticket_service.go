package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	AssignedTo  *int64
}

// TicketListOptions narrows a listing beyond role scoping.
type TicketListOptions struct {
	Status *domain.TicketStatus
	Search string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket owned by creatorID. Only staff may pick an assignee.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID int64, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("Title and description are required.", nil)
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("Unknown ticket owner.", map[string]any{"created_by": creatorID})
		}
		return nil, apperrors.NewInternalError(err)
	}

	if input.AssignedTo != nil {
		if !auth.Allowed(creator.Role, auth.ActionAssignTicket) {
			return nil, apperrors.NewForbidden("You do not have permission to assign tickets.")
		}
		if err := s.ensureUserExists(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   creator.ID,
		AssignedTo:  input.AssignedTo,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Actor:     actorOf(creator),
		Payload:   events.TicketCreatedPayload{Title: ticket.Title, AssignedTo: ticket.AssignedTo},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to requester, newest first. Staff see every
// ticket; other users see only their own.
func (s *TicketService) ListTickets(ctx context.Context, requester *domain.User, opts TicketListOptions) ([]domain.TicketView, error) {
	if requester == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	filter := repository.TicketFilter{
		Status: opts.Status,
		Search: opts.Search,
	}
	if !auth.Allowed(requester.Role, auth.ActionViewAllTickets) {
		owner := requester.ID
		filter.CreatedBy = &owner
	}
	views, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return views, nil
}

// GetTicket returns a single ticket view if requester may see it.
func (s *TicketService) GetTicket(ctx context.Context, requester *domain.User, ticketID int64) (*domain.TicketView, error) {
	view, err := s.tickets.GetView(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Ticket", ticketID)
	}
	if requester == nil || (!auth.Allowed(requester.Role, auth.ActionViewAllTickets) && view.CreatedBy != requester.ID) {
		return nil, apperrors.NewForbidden("Permission denied")
	}
	return view, nil
}

// UpdateStatus moves a ticket to newStatus. Staff may update any ticket; owners
// only their own.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID int64, newStatus string, requester *domain.User) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Ticket", ticketID)
	}
	if !canUpdateStatus(requester, ticket) {
		return nil, apperrors.NewForbidden("Permission denied")
	}
	status, ok := domain.ParseTicketStatus(newStatus)
	if !ok {
		return nil, apperrors.NewValidationError("Invalid status.", map[string]any{"status": newStatus})
	}
	if status == ticket.Status {
		return ticket, nil
	}

	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		return nil, notFoundOrInternal(err, "Ticket", ticketID)
	}
	oldStatus := ticket.Status
	ticket.Status = status

	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventTicketStatusChanged,
		SubjectID: ticket.ID,
		Actor:     actorOf(requester),
		Payload:   events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return ticket, nil
}

// AssignTicket sets or clears (assigneeID == nil) the ticket's assignee.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID int64, assigneeID *int64, requester *domain.User) (*domain.Ticket, error) {
	if requester == nil || !auth.Allowed(requester.Role, auth.ActionAssignTicket) {
		return nil, apperrors.NewForbidden("You do not have permission.")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Ticket", ticketID)
	}
	if assigneeID != nil {
		if err := s.ensureUserExists(ctx, *assigneeID); err != nil {
			return nil, err
		}
	}

	if err := s.tickets.UpdateAssignee(ctx, ticket.ID, assigneeID); err != nil {
		return nil, notFoundOrInternal(err, "Ticket", ticketID)
	}
	oldAssignee := ticket.AssignedTo
	ticket.AssignedTo = assigneeID

	publish(ctx, s.dispatcher, events.Event{
		Type:      events.EventTicketAssigned,
		SubjectID: ticket.ID,
		Actor:     actorOf(requester),
		Payload:   events.TicketAssignedPayload{OldAssignee: oldAssignee, NewAssignee: assigneeID},
	})
	return ticket, nil
}

// StatusCounts returns per-status counts over the whole ticket table.
func (s *TicketService) StatusCounts(ctx context.Context) (domain.StatusCounts, error) {
	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return domain.StatusCounts{}, apperrors.NewInternalError(err)
	}
	return counts, nil
}

func (s *TicketService) ensureUserExists(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("Assignee does not exist.", map[string]any{"assigned_to": userID})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func canUpdateStatus(requester *domain.User, ticket *domain.Ticket) bool {
	if requester == nil {
		return false
	}
	if auth.Allowed(requester.Role, auth.ActionUpdateAnyStatus) {
		return true
	}
	return ticket.CreatedBy == requester.ID && auth.Allowed(requester.Role, auth.ActionUpdateOwnStatus)
}

func notFoundOrInternal(err error, resource string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}
