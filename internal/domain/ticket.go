package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists every status in workflow order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// ParseTicketStatus validates a status value.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch st := TicketStatus(s); st {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return st, true
	default:
		return "", false
	}
}

// Ticket is a support request raised by a user.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	CreatedBy   int64
	AssignedTo  *int64
	CreatedAt   time.Time
}

// TicketView is a ticket with creator and assignee usernames resolved.
type TicketView struct {
	Ticket
	CreatedByName  string
	AssignedToName *string
}

// AssigneeName returns the assignee username or an empty string.
func (v TicketView) AssigneeName() string {
	if v.AssignedToName == nil {
		return ""
	}
	return *v.AssignedToName
}

// StatusCounts holds whole-table ticket counts per status.
type StatusCounts struct {
	Open       int
	InProgress int
	Closed     int
}

// Total returns the number of tickets counted.
func (c StatusCounts) Total() int {
	return c.Open + c.InProgress + c.Closed
}
