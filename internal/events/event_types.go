package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventUserRegistered      EventType = "user_registered"
	EventUserRoleChanged     EventType = "user_role_changed"
	EventPasswordChanged     EventType = "password_changed"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID int64       `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string `json:"title"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee *int64 `json:"old_assignee,omitempty"`
	NewAssignee *int64 `json:"new_assignee,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
