package service

import (
	"context"
	"fmt"
	"log/slog"

	"pilketos/internal/auth"
	"pilketos/internal/model"
	"pilketos/internal/repository"
)

const (
	MaxCodesPerBatch = 50
	codeRetryRounds  = 3
	defaultCodeLimit = 50
	maxCodeLimit     = 200
)

// CodeListResult is a page of registration codes.
type CodeListResult struct {
	Items []model.RegistrationCode `json:"data"`
	Total int                      `json:"total"`
}

// CodeService issues and lists registration codes.
type CodeService interface {
	// Generate creates count fresh codes, 1 <= count <= MaxCodesPerBatch.
	Generate(ctx context.Context, count int) ([]model.RegistrationCode, error)
	List(ctx context.Context, limit, offset int) (*CodeListResult, error)
}

type codeService struct {
	repo     repository.RegistrationCodeRepository
	logger   *slog.Logger
	generate func(n int) (string, error)
}

func NewCodeService(repo repository.RegistrationCodeRepository, logger *slog.Logger) CodeService {
	return &codeService{
		repo:     repo,
		logger:   logger.With("component", "codes"),
		generate: auth.GenerateCode,
	}
}

func (s *codeService) Generate(ctx context.Context, count int) ([]model.RegistrationCode, error) {
	if count < 1 || count > MaxCodesPerBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrValidation, MaxCodesPerBatch)
	}

	out := make([]model.RegistrationCode, 0, count)
	for round := 0; round < codeRetryRounds && len(out) < count; round++ {
		batch, err := s.candidates(count - len(out))
		if err != nil {
			return nil, err
		}
		created, err := s.repo.CreateBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("store codes: %w", err)
		}
		if skipped := len(batch) - len(created); skipped > 0 {
			s.logger.Debug("registration_code_collision", "round", round+1, "skipped", skipped)
		}
		out = append(out, created...)
	}
	if len(out) < count {
		return out, fmt.Errorf("%w: created %d of %d", ErrCodeGeneration, len(out), count)
	}

	s.logger.Info("registration_codes_generated", "count", len(out))
	return out, nil
}

// candidates returns n distinct codes.
func (s *codeService) candidates(n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	codes := make([]string, 0, n)
	for len(codes) < n {
		c, err := s.generate(auth.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}
	return codes, nil
}

func (s *codeService) List(ctx context.Context, limit, offset int) (*CodeListResult, error) {
	if limit <= 0 {
		limit = defaultCodeLimit
	}
	limit = min(limit, maxCodeLimit)
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := res.Items
	if items == nil {
		items = []model.RegistrationCode{}
	}
	return &CodeListResult{Items: items, Total: res.Total}, nil
}
