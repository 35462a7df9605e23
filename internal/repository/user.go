package repository

import (
	"context"

	"pilketos/internal/model"
)

// Registration is everything written when a registration code is redeemed.
type Registration struct {
	User    model.User
	Profile model.Profile
	Code    string
}

// UserRepository persists accounts, profiles and roles.
type UserRepository interface {
	// Register atomically creates the user, redeems the code, stores the profile and grants the voter role.
	// It returns ErrCodeUnavailable when the code does not exist or was already redeemed,
	// and ErrUniqueViolation when the email is taken.
	Register(ctx context.Context, reg Registration) error

	// CreateAdmin creates a user with a profile and the admin role.
	CreateAdmin(ctx context.Context, user model.User, profile model.Profile) error

	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindProfile(ctx context.Context, userID string) (*model.Profile, error)
	Roles(ctx context.Context, userID string) ([]model.Role, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}
