package repository

import (
	"context"

	"pilketos/internal/model"
)

// CandidateRepository persists candidate pairs.
type CandidateRepository interface {
	// Create inserts a candidate and returns the stored row.
	Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error)
	// Update overwrites the text fields and number of the candidate with c.ID.
	// Photo columns are left as stored.
	Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error)
	// SetPhoto stores url in the photo column of slot only.
	SetPhoto(ctx context.Context, id string, slot model.PhotoSlot, url string) (*model.Candidate, error)
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
	// List returns every candidate ordered by candidate number.
	List(ctx context.Context) ([]model.Candidate, error)
	// Delete removes a candidate; sql.ErrNoRows when it does not exist.
	Delete(ctx context.Context, id string) error
}
