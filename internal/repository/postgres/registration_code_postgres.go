package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// RegistrationCodePostgres is a PostgreSQL implementation of repository.RegistrationCodeRepository.
type RegistrationCodePostgres struct {
	db *sql.DB
}

// NewRegistrationCodePostgres creates a new RegistrationCodePostgres repository.
func NewRegistrationCodePostgres(db *sql.DB) *RegistrationCodePostgres {
	return &RegistrationCodePostgres{db: db}
}

var _ repository.RegistrationCodeRepository = (*RegistrationCodePostgres)(nil)

func scanCode(row rowScanner) (*model.RegistrationCode, error) {
	var (
		c      model.RegistrationCode
		usedBy sql.NullString
		usedAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Code, &c.IsUsed, &usedBy, &usedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	if usedBy.Valid {
		c.UsedBy = &usedBy.String
	}
	if usedAt.Valid {
		c.UsedAt = &usedAt.Time
	}
	return &c, nil
}

// CreateBatch inserts the given codes; duplicates are skipped by ON CONFLICT.
func (r *RegistrationCodePostgres) CreateBatch(ctx context.Context, codes []string) (out []model.RegistrationCode, err error) {
	const q = `
		INSERT INTO registration_codes (code)
		VALUES ($1)
		ON CONFLICT (code) DO NOTHING
		RETURNING id, code, is_used, used_by, used_at, created_at
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	out = make([]model.RegistrationCode, 0, len(codes))
	for _, code := range codes {
		c, scanErr := scanCode(tx.QueryRowContext(ctx, q, code))
		if errors.Is(scanErr, sql.ErrNoRows) {
			continue
		}
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		out = append(out, *c)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit codes: %w", err)
	}
	return out, nil
}

// List returns codes newest first with LIMIT/OFFSET pagination and a total count.
func (r *RegistrationCodePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.RegistrationCode], error) {
	const qCount = `SELECT COUNT(*) FROM registration_codes`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, code, is_used, used_by, used_at, created_at
		FROM registration_codes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RegistrationCode, 0)
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.RegistrationCode]{
		Items: items,
		Total: total,
	}, nil
}
