package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
	"pilketos/internal/service"
)

type MockCodeService struct {
	mock.Mock
}

func (m *MockCodeService) Generate(ctx context.Context, count int) ([]model.RegistrationCode, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegistrationCode), args.Error(1)
}

func (m *MockCodeService) List(ctx context.Context, limit, offset int) (*service.CodeListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CodeListResult), args.Error(1)
}
