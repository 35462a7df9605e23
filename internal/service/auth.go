package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"pilketos/internal/auth"
	"pilketos/internal/metrics"
	"pilketos/internal/model"
	"pilketos/internal/repository"
)

const minPasswordLength = 6

// RegisterInput is what a voter submits to redeem a registration code.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Class    string `json:"class"`
	Code     string `json:"registration_code"`
}

// Session is an issued bearer token.
type Session struct {
	Token     string     `json:"access_token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UserID    string     `json:"user_id"`
	Role      model.Role `json:"role"`
}

// Account is the signed-in user's profile with the role used for routing.
type Account struct {
	UserID   string     `json:"user_id"`
	FullName string     `json:"full_name"`
	Class    string     `json:"class"`
	Role     model.Role `json:"role"`
}

// AuthService handles sign-up, sign-in and the bootstrap admin.
type AuthService interface {
	// Register redeems a registration code and creates a voter account, then signs it in.
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, userID string) (*Account, error)
	// EnsureAdmin creates the admin account when it does not exist yet. An empty email is a no-op.
	EnsureAdmin(ctx context.Context, email, password, fullName string) error
}

type authService struct {
	users   repository.UserRepository
	tokens  *auth.TokenIssuer
	metrics *metrics.Election
	logger  *slog.Logger
	now     func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, m *metrics.Election, logger *slog.Logger) AuthService {
	return &authService{
		users:   users,
		tokens:  tokens,
		metrics: m,
		logger:  logger.With("component", "auth"),
		now:     time.Now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return email, nil
}

// NormalizeCode trims and upper-cases a registration code as typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (in RegisterInput) validate() (RegisterInput, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return in, err
	}
	out := RegisterInput{
		Email:    email,
		Password: in.Password,
		FullName: strings.TrimSpace(in.FullName),
		Class:    strings.TrimSpace(in.Class),
		Code:     NormalizeCode(in.Code),
	}
	switch {
	case len(out.Password) < minPasswordLength:
		return out, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	case out.FullName == "":
		return out, fmt.Errorf("%w: full name is required", ErrValidation)
	case out.Class == "":
		return out, fmt.Errorf("%w: class is required", ErrValidation)
	case out.Code == "":
		return out, fmt.Errorf("%w: registration code is required", ErrValidation)
	}
	return out, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	id := uuid.NewString()
	reg := repository.Registration{
		User:    model.User{ID: id, Email: in.Email, PasswordHash: hash, CreatedAt: now},
		Profile: model.Profile{ID: id, FullName: in.FullName, Class: in.Class, CreatedAt: now},
		Code:    in.Code,
	}
	if err := s.users.Register(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repository.ErrCodeUnavailable):
			return nil, ErrInvalidCode
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register voter: %w", err)
	}

	s.metrics.Registered()
	s.logger.Info("voter_registered", "user_id", id)

	return s.issue(id, model.RoleVoter)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.users.Roles(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	role := model.PrimaryRole(roles)
	if role == "" {
		return nil, ErrNoRole
	}
	return s.issue(u.ID, role)
}

func (s *authService) issue(userID string, role model.Role) (*Session, error) {
	token, exp, err := s.tokens.Issue(userID, role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, UserID: userID, Role: role}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*Account, error) {
	p, err := s.users.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	roles, err := s.users.Roles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return &Account{
		UserID:   p.ID,
		FullName: p.FullName,
		Class:    p.Class,
		Role:     model.PrimaryRole(roles),
	}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		roles, err := s.users.Roles(ctx, existing.ID)
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}
		if model.PrimaryRole(roles) != model.RoleAdmin {
			s.logger.Warn("admin_bootstrap_conflict", "detail", "account exists without admin role")
		}
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("find admin: %w", err)
	}

	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: admin password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	id := uuid.NewString()
	err = s.users.CreateAdmin(ctx,
		model.User{ID: id, Email: email, PasswordHash: hash, CreatedAt: now},
		model.Profile{ID: id, FullName: strings.TrimSpace(fullName), CreatedAt: now},
	)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin_bootstrapped", "user_id", id)
	return nil
}
