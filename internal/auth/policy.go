package auth

import "github.com/spec-kit/helpdesk/internal/domain"

// Action is a capability gated by role.
type Action string

const (
	ActionViewAllTickets  Action = "view_all_tickets"
	ActionCreateTicket    Action = "create_ticket"
	ActionUpdateAnyStatus Action = "update_any_status"
	ActionUpdateOwnStatus Action = "update_own_status"
	ActionAssignTicket    Action = "assign_ticket"
	ActionManageUsers     Action = "manage_users"
	ActionExportTickets   Action = "export_tickets"
)

// Allowed reports whether role may perform action. Unknown roles get nothing.
func Allowed(role domain.Role, action Action) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return action != ActionManageUsers
	case domain.RoleUser:
		return action == ActionCreateTicket || action == ActionUpdateOwnStatus
	default:
		return false
	}
}
