package postgres

import (
	"context"
	"database/sql"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// VotePostgres is a PostgreSQL implementation of repository.VoteRepository.
type VotePostgres struct {
	db *sql.DB
}

// NewVotePostgres creates a new VotePostgres repository.
func NewVotePostgres(db *sql.DB) *VotePostgres {
	return &VotePostgres{db: db}
}

var _ repository.VoteRepository = (*VotePostgres)(nil)

// Create inserts a vote. votes.voter_id is UNIQUE, so a repeat ballot fails here.
func (r *VotePostgres) Create(ctx context.Context, v *model.Vote) (*model.Vote, error) {
	const q = `
		INSERT INTO votes (id, voter_id, candidate_id, voted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, voter_id, candidate_id, voted_at
	`
	var out model.Vote
	err := r.db.QueryRowContext(ctx, q, v.ID, v.VoterID, v.CandidateID, v.VotedAt).
		Scan(&out.ID, &out.VoterID, &out.CandidateID, &out.VotedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// FindByVoter returns the vote cast by voterID.
func (r *VotePostgres) FindByVoter(ctx context.Context, voterID string) (*model.Vote, error) {
	const q = `SELECT id, voter_id, candidate_id, voted_at FROM votes WHERE voter_id = $1`
	var v model.Vote
	if err := r.db.QueryRowContext(ctx, q, voterID).Scan(&v.ID, &v.VoterID, &v.CandidateID, &v.VotedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVoters joins votes with profiles and candidates. Voters without a profile show as "N/A".
func (r *VotePostgres) ListVoters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error) {
	const q = `
		SELECT v.id, COALESCE(p.full_name, 'N/A'), COALESCE(p.class, 'N/A'), v.voted_at,
			c.candidate_number, c.chairman_name, c.vice_chairman_name
		FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		LEFT JOIN profiles p ON p.id = v.voter_id
		WHERE $1 = 0 OR c.candidate_number = $1
		ORDER BY v.voted_at DESC, v.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, candidateNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.VoterEntry, 0)
	for rows.Next() {
		var e model.VoterEntry
		if err := rows.Scan(
			&e.VoteID,
			&e.FullName,
			&e.Class,
			&e.VotedAt,
			&e.CandidateNumber,
			&e.ChairmanName,
			&e.ViceChairmanName,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Tally counts votes per candidate, including candidates with none.
func (r *VotePostgres) Tally(ctx context.Context) ([]model.CandidateTally, error) {
	const q = `
		SELECT c.id, c.candidate_number, c.chairman_name, c.vice_chairman_name, COUNT(v.id)
		FROM candidates c
		LEFT JOIN votes v ON v.candidate_id = c.id
		GROUP BY c.id, c.candidate_number, c.chairman_name, c.vice_chairman_name
		ORDER BY c.candidate_number
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CandidateTally, 0)
	for rows.Next() {
		var t model.CandidateTally
		if err := rows.Scan(&t.CandidateID, &t.CandidateNumber, &t.ChairmanName, &t.ViceChairmanName, &t.Votes); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
