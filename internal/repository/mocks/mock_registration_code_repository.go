package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
	"pilketos/internal/repository"
)

type MockRegistrationCodeRepository struct {
	mock.Mock
}

func (m *MockRegistrationCodeRepository) CreateBatch(ctx context.Context, codes []string) ([]model.RegistrationCode, error) {
	args := m.Called(ctx, codes)
	if f, ok := args.Get(0).(func(context.Context, []string) []model.RegistrationCode); ok {
		return f(ctx, codes), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RegistrationCode), args.Error(1)
}

func (m *MockRegistrationCodeRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.RegistrationCode], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.RegistrationCode]), args.Error(1)
}
