package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pilketos/internal/model"
	"pilketos/internal/service"
	"pilketos/internal/storage"
)

type MockCandidateService struct {
	mock.Mock
}

func (m *MockCandidateService) List(ctx context.Context) ([]model.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Get(ctx context.Context, id string) (*model.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Create(ctx context.Context, in service.CandidateInput) (*model.Candidate, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Update(ctx context.Context, id string, in service.CandidateInput) (*model.Candidate, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCandidateService) UploadPhoto(ctx context.Context, id string, slot service.PhotoSlot, r io.Reader, contentType string, size int64) (*model.Candidate, error) {
	args := m.Called(ctx, id, slot, r, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Photo(ctx context.Context, id string, slot service.PhotoSlot) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id, slot)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockCandidateService) PhotoLink(ctx context.Context, id string, slot service.PhotoSlot) (string, error) {
	args := m.Called(ctx, id, slot)
	return args.String(0), args.Error(1)
}
