package model

import "time"

// Role is the authorization role attached to a user.
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleVoter || r == RoleAdmin
}

// User is an account that can sign in. PasswordHash never leaves the service layer.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds the voter's display data.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRole links a user to a role.
type UserRole struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// PrimaryRole picks the role used for routing: admin wins over voter.
func PrimaryRole(roles []Role) Role {
	primary := Role("")
	for _, r := range roles {
		if r == RoleAdmin {
			return RoleAdmin
		}
		if r == RoleVoter {
			primary = RoleVoter
		}
	}
	return primary
}
