package repository

import (
	"context"

	"pilketos/internal/model"
)

// VoteRepository persists ballots and answers result queries.
type VoteRepository interface {
	// Create inserts a vote. A second vote by the same voter yields ErrUniqueViolation,
	// an unknown candidate yields ErrForeignKeyViolation.
	Create(ctx context.Context, v *model.Vote) (*model.Vote, error)

	FindByVoter(ctx context.Context, voterID string) (*model.Vote, error)

	// ListVoters returns cast votes joined with voter profile and candidate, newest first.
	// candidateNumber 0 means every candidate.
	ListVoters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error)

	// Tally returns every candidate with its vote count, ordered by candidate number.
	Tally(ctx context.Context) ([]model.CandidateTally, error)
}
