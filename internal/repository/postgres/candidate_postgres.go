package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// CandidatePostgres is a PostgreSQL implementation of repository.CandidateRepository.
type CandidatePostgres struct {
	db *sql.DB
}

// NewCandidatePostgres creates a new CandidatePostgres repository.
func NewCandidatePostgres(db *sql.DB) *CandidatePostgres {
	return &CandidatePostgres{db: db}
}

var _ repository.CandidateRepository = (*CandidatePostgres)(nil)

const candidateColumns = `id, candidate_number, chairman_name, vice_chairman_name,
		chairman_photo, vice_chairman_photo, vision, mission, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*model.Candidate, error) {
	var c model.Candidate
	if err := row.Scan(
		&c.ID,
		&c.Number,
		&c.ChairmanName,
		&c.ViceChairmanName,
		&c.ChairmanPhoto,
		&c.ViceChairmanPhoto,
		&c.Vision,
		&c.Mission,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new candidate row and returns the stored record.
func (r *CandidatePostgres) Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	const q = `
		INSERT INTO candidates (id, candidate_number, chairman_name, vice_chairman_name,
			chairman_photo, vice_chairman_photo, vision, mission, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + candidateColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Number,
		c.ChairmanName,
		c.ViceChairmanName,
		c.ChairmanPhoto,
		c.ViceChairmanPhoto,
		c.Vision,
		c.Mission,
		c.CreatedAt,
	)
	out, err := scanCandidate(row)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// Update overwrites the text columns and bumps updated_at. Photo columns are untouched.
func (r *CandidatePostgres) Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	const q = `
		UPDATE candidates
		SET candidate_number = $2, chairman_name = $3, vice_chairman_name = $4,
			vision = $5, mission = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + candidateColumns
	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Number,
		c.ChairmanName,
		c.ViceChairmanName,
		c.Vision,
		c.Mission,
	)
	out, err := scanCandidate(row)
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

var setPhotoQueries = map[model.PhotoSlot]string{
	model.SlotChairman: `UPDATE candidates SET chairman_photo = $2, updated_at = now()
		WHERE id = $1 RETURNING ` + candidateColumns,
	model.SlotViceChairman: `UPDATE candidates SET vice_chairman_photo = $2, updated_at = now()
		WHERE id = $1 RETURNING ` + candidateColumns,
}

// SetPhoto writes a single photo column; sql.ErrNoRows when the candidate does not exist.
func (r *CandidatePostgres) SetPhoto(ctx context.Context, id string, slot model.PhotoSlot, url string) (*model.Candidate, error) {
	q, ok := setPhotoQueries[slot]
	if !ok {
		return nil, fmt.Errorf("unknown photo slot %q", slot)
	}
	return scanCandidate(r.db.QueryRowContext(ctx, q, id, url))
}

// FindByID fetches a single candidate by its ID.
func (r *CandidatePostgres) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	const q = `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(r.db.QueryRowContext(ctx, q, id))
}

// List returns all candidates ordered by their ballot number.
func (r *CandidatePostgres) List(ctx context.Context) ([]model.Candidate, error) {
	const q = `SELECT ` + candidateColumns + ` FROM candidates ORDER BY candidate_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a candidate by ID. Candidates that already received votes are
// protected by the votes foreign key and yield ErrForeignKeyViolation.
func (r *CandidatePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM candidates WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
