package dto

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// ChangePasswordRequest is the password change form.
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ChangeRoleRequest is the admin role change form.
type ChangeRoleRequest struct {
	UserID string `form:"user_id" json:"user_id"`
	Role   string `form:"role" json:"role"`
}
