package dto

// CreateTicketRequest is the new ticket form. AssignedTo is empty when unassigned.
type CreateTicketRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	AssignedTo  string `form:"assigned_to" json:"assigned_to"`
}

// UpdateStatusRequest is posted by the dashboard status control.
type UpdateStatusRequest struct {
	ID     string `form:"id" json:"id"`
	Status string `form:"status" json:"status"`
}

// AssignTicketRequest is the assignment form. An empty AssignedTo clears the assignee.
type AssignTicketRequest struct {
	TicketID   string `form:"ticket_id" json:"ticket_id"`
	AssignedTo string `form:"assigned_to" json:"assigned_to"`
}

// StatusResponse is the JSON result of a status update.
type StatusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
