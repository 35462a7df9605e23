package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/gocarina/gocsv"

	"pilketos/internal/config"
	"pilketos/internal/model"
	"pilketos/internal/repository"
)

// ResultService reports turnout and results.
type ResultService interface {
	Stats(ctx context.Context) (*model.VotingStats, error)
	// PublicResults returns Stats once the election has closed.
	PublicResults(ctx context.Context) (*model.VotingStats, error)
	// Voters lists cast votes; candidateNumber 0 means all candidates.
	Voters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error)
	// ExportVotersCSV writes Voters as CSV to w.
	ExportVotersCSV(ctx context.Context, w io.Writer, candidateNumber int) error
}

type resultService struct {
	users    repository.UserRepository
	votes    repository.VoteRepository
	election config.ElectionConfig
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewResultService(users repository.UserRepository, votes repository.VoteRepository, election config.ElectionConfig, loc *time.Location, logger *slog.Logger) ResultService {
	if loc == nil {
		loc = time.UTC
	}
	return &resultService{
		users:    users,
		votes:    votes,
		election: election,
		loc:      loc,
		logger:   logger.With("component", "results"),
		now:      time.Now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) * 100 / float64(whole))
}

// BuildStats derives turnout and per-candidate shares from raw counts.
// Percentages are rounded to one decimal and are 0 when the denominator is 0.
func BuildStats(totalVoters int, tallies []model.CandidateTally, at time.Time) *model.VotingStats {
	totalVotes := 0
	for _, t := range tallies {
		totalVotes += t.Votes
	}
	candidates := make([]model.CandidateTally, len(tallies))
	for i, t := range tallies {
		t.Percentage = percent(t.Votes, totalVotes)
		candidates[i] = t
	}
	return &model.VotingStats{
		TotalVoters:       totalVoters,
		TotalVotes:        totalVotes,
		ParticipationRate: percent(totalVotes, totalVoters),
		Candidates:        candidates,
		GeneratedAt:       at,
	}
}

func (s *resultService) Stats(ctx context.Context) (*model.VotingStats, error) {
	voters, err := s.users.CountByRole(ctx, model.RoleVoter)
	if err != nil {
		return nil, fmt.Errorf("count voters: %w", err)
	}
	tallies, err := s.votes.Tally(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return BuildStats(voters, tallies, s.now().UTC()), nil
}

func (s *resultService) PublicResults(ctx context.Context) (*model.VotingStats, error) {
	if s.election.Phase(s.now()) != config.PhaseClosed {
		return nil, ErrResultsNotPublished
	}
	return s.Stats(ctx)
}

func (s *resultService) Voters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error) {
	if candidateNumber < 0 {
		return nil, fmt.Errorf("%w: candidate must not be negative", ErrValidation)
	}
	items, err := s.votes.ListVoters(ctx, candidateNumber)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	if items == nil {
		items = []model.VoterEntry{}
	}
	return items, nil
}

// voterRow is the CSV layout of the voters export.
type voterRow struct {
	No               int    `csv:"no"`
	FullName         string `csv:"full_name"`
	Class            string `csv:"class"`
	CandidateNumber  int    `csv:"candidate_number"`
	ChairmanName     string `csv:"chairman_name"`
	ViceChairmanName string `csv:"vice_chairman_name"`
	VotedAt          string `csv:"voted_at"`
}

func (s *resultService) ExportVotersCSV(ctx context.Context, w io.Writer, candidateNumber int) error {
	items, err := s.Voters(ctx, candidateNumber)
	if err != nil {
		return err
	}
	rows := make([]*voterRow, len(items))
	for i, v := range items {
		rows[i] = &voterRow{
			No:               i + 1,
			FullName:         v.FullName,
			Class:            v.Class,
			CandidateNumber:  v.CandidateNumber,
			ChairmanName:     v.ChairmanName,
			ViceChairmanName: v.ViceChairmanName,
			VotedAt:          v.VotedAt.In(s.loc).Format("2006-01-02 15:04:05"),
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	s.logger.Info("voters_exported", "rows", len(rows), "candidate_number", candidateNumber)
	return nil
}
