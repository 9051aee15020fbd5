package model

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the identity bound to a device
type User struct {
	Username string `json:"username"`
	DeviceID string `json:"deviceId"`
	Role     string `json:"role,omitempty"` // Older records may lack a role
}

// IsAdmin reports whether the user sees every log
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthRequest is the body of register and login calls
type AuthRequest struct {
	Username string `json:"username" binding:"required"`
}
