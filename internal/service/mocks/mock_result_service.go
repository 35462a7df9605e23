package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
)

type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Stats(ctx context.Context) (*model.VotingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VotingStats), args.Error(1)
}

func (m *MockResultService) PublicResults(ctx context.Context) (*model.VotingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VotingStats), args.Error(1)
}

func (m *MockResultService) Voters(ctx context.Context, candidateNumber int) ([]model.VoterEntry, error) {
	args := m.Called(ctx, candidateNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VoterEntry), args.Error(1)
}

func (m *MockResultService) ExportVotersCSV(ctx context.Context, w io.Writer, candidateNumber int) error {
	args := m.Called(ctx, w, candidateNumber)
	if f, ok := args.Get(0).(func(context.Context, io.Writer, int) error); ok {
		return f(ctx, w, candidateNumber)
	}
	return args.Error(0)
}
