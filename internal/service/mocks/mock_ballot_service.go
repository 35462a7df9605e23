package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
	"pilketos/internal/service"
)

type MockBallotService struct {
	mock.Mock
}

func (m *MockBallotService) Status() service.ElectionStatus {
	args := m.Called()
	return args.Get(0).(service.ElectionStatus)
}

func (m *MockBallotService) Cast(ctx context.Context, voterID, candidateID string) (*model.Vote, error) {
	args := m.Called(ctx, voterID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Vote), args.Error(1)
}

func (m *MockBallotService) MyVote(ctx context.Context, voterID string) (*service.Receipt, error) {
	args := m.Called(ctx, voterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Receipt), args.Error(1)
}
