package domain

import "time"

// Role governs which actions a user may perform.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// Roles lists every recognized role in display order.
var Roles = []Role{RoleAdmin, RoleTechnician, RoleUser}

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleTechnician, RoleUser:
		return r, true
	default:
		return "", false
	}
}

// IsStaff reports whether the role triages tickets (admin or technician).
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleTechnician:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// User is an account able to sign in to the helpdesk.
type User struct {
	ID                 int64
	Username           string
	PasswordHash       string
	Role               Role
	MustChangePassword bool
	CreatedAt          time.Time
}

// UserRef is the minimal projection used to populate assignee pickers.
type UserRef struct {
	ID       int64
	Username string
}
