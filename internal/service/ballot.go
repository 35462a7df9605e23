package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pilketos/internal/config"
	"pilketos/internal/metrics"
	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// ElectionStatus describes the election as seen at Now.
type ElectionStatus struct {
	Title    string     `json:"title"`
	Phase    string     `json:"phase"`
	OpensAt  *time.Time `json:"opens_at,omitempty"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
	Now      time.Time  `json:"now"`
}

// Receipt confirms the voter's ballot.
type Receipt struct {
	Vote      model.Vote      `json:"vote"`
	Candidate model.Candidate `json:"candidate"`
}

// BallotService accepts votes.
type BallotService interface {
	Status() ElectionStatus
	// Cast records the voter's single vote. A second call fails with ErrAlreadyVoted.
	Cast(ctx context.Context, voterID, candidateID string) (*model.Vote, error)
	MyVote(ctx context.Context, voterID string) (*Receipt, error)
}

type ballotService struct {
	votes      repository.VoteRepository
	candidates repository.CandidateRepository
	election   config.ElectionConfig
	metrics    *metrics.Election
	logger     *slog.Logger
	now        func() time.Time
}

func NewBallotService(votes repository.VoteRepository, candidates repository.CandidateRepository, election config.ElectionConfig, m *metrics.Election, logger *slog.Logger) BallotService {
	return &ballotService{
		votes:      votes,
		candidates: candidates,
		election:   election,
		metrics:    m,
		logger:     logger.With("component", "ballot"),
		now:        time.Now,
	}
}

func (s *ballotService) Status() ElectionStatus {
	now := s.now()
	st := ElectionStatus{
		Title: s.election.Title,
		Phase: s.election.Phase(now),
		Now:   now.UTC(),
	}
	if !s.election.OpensAt.IsZero() {
		t := s.election.OpensAt
		st.OpensAt = &t
	}
	if !s.election.ClosesAt.IsZero() {
		t := s.election.ClosesAt
		st.ClosesAt = &t
	}
	return st
}

func (s *ballotService) Cast(ctx context.Context, voterID, candidateID string) (*model.Vote, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return nil, fmt.Errorf("%w: candidate_id is required", ErrValidation)
	}
	if _, err := uuid.Parse(candidateID); err != nil {
		return nil, ErrCandidateNotFound
	}

	now := s.now()
	if !s.election.IsOpen(now) {
		return nil, ErrElectionNotOpen
	}

	v, err := s.votes.Create(ctx, &model.Vote{
		ID:          uuid.NewString(),
		VoterID:     voterID,
		CandidateID: candidateID,
		VotedAt:     now.UTC(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, ErrAlreadyVoted
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("cast vote: %w", err)
	}

	s.metrics.VoteCast()
	s.logger.Info("vote_cast", "vote_id", v.ID)
	return v, nil
}

func (s *ballotService) MyVote(ctx context.Context, voterID string) (*Receipt, error) {
	v, err := s.votes.FindByVoter(ctx, voterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotVoted
		}
		return nil, fmt.Errorf("find vote: %w", err)
	}
	c, err := s.candidates.FindByID(ctx, v.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return &Receipt{Vote: *v, Candidate: *c}, nil
}
