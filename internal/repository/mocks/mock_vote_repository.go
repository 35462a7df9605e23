package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
)

type MockVoteRepository struct {
	mock.Mock
}

func (m *MockVoteRepository) Create(ctx context.Context, v *model.Vote) (*model.Vote, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vote), args.Error(1)
}

func (m *MockVoteRepository) FindByVoter(ctx context.Context, voterID string) (*model.Vote, error) {
	args := m.Called(ctx, voterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vote), args.Error(1)
}

func (m *MockVoteRepository) ListVoters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error) {
	args := m.Called(ctx, candidateNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VoterEntry), args.Error(1)
}

func (m *MockVoteRepository) Tally(ctx context.Context) ([]model.CandidateTally, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CandidateTally), args.Error(1)
}
