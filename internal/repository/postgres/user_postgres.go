package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const (
	qInsertUser = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`
	qInsertProfile = `
		INSERT INTO profiles (id, full_name, class, created_at)
		VALUES ($1, $2, $3, $4)`
	qInsertRole = `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	qRedeemCode = `
		UPDATE registration_codes
		SET is_used = true, used_by = $1, used_at = $2
		WHERE code = $3 AND NOT is_used
		RETURNING id`
)

// Register writes the voter account and redeems the code in a single transaction.
// The conditional UPDATE is what makes a code single-use under concurrent sign-ups:
// the loser of a race sees zero rows and the whole transaction rolls back.
func (r *UserPostgres) Register(ctx context.Context, reg repository.Registration) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	u := reg.User
	if _, err = tx.ExecContext(ctx, qInsertUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		return translateError(err)
	}

	var codeID string
	err = tx.QueryRowContext(ctx, qRedeemCode, u.ID, u.CreatedAt, reg.Code).Scan(&codeID)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrCodeUnavailable
	}
	if err != nil {
		return err
	}

	p := reg.Profile
	if _, err = tx.ExecContext(ctx, qInsertProfile, u.ID, p.FullName, p.Class, u.CreatedAt); err != nil {
		return translateError(err)
	}
	if _, err = tx.ExecContext(ctx, qInsertRole, u.ID, string(model.RoleVoter)); err != nil {
		return translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// CreateAdmin writes an admin account with its profile in a single transaction.
func (r *UserPostgres) CreateAdmin(ctx context.Context, u model.User, p model.Profile) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, qInsertUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt); err != nil {
		return translateError(err)
	}
	if _, err = tx.ExecContext(ctx, qInsertProfile, u.ID, p.FullName, p.Class, u.CreatedAt); err != nil {
		return translateError(err)
	}
	if _, err = tx.ExecContext(ctx, qInsertRole, u.ID, string(model.RoleAdmin)); err != nil {
		return translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit admin: %w", err)
	}
	return nil
}

// FindByEmail looks a user up by email, case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindProfile returns the profile of a user.
func (r *UserPostgres) FindProfile(ctx context.Context, userID string) (*model.Profile, error) {
	const q = `SELECT id, full_name, class, created_at FROM profiles WHERE id = $1`
	var p model.Profile
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.FullName, &p.Class, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Roles lists the roles granted to a user.
func (r *UserPostgres) Roles(ctx context.Context, userID string) ([]model.Role, error) {
	const q = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]model.Role, 0, 1)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, model.Role(role))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// CountByRole counts users holding the given role.
func (r *UserPostgres) CountByRole(ctx context.Context, role model.Role) (int, error) {
	const q = `SELECT COUNT(*) FROM user_roles WHERE role = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, string(role)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
