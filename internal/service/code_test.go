package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pilketos/internal/model"
	"pilketos/internal/repository"
	repoMocks "pilketos/internal/repository/mocks"
)

// sequence yields CODE0001, CODE0002, ... so collisions can be scripted.
func sequence() func(int) (string, error) {
	i := 0
	return func(int) (string, error) {
		i++
		return fmt.Sprintf("CODE%04d", i), nil
	}
}

func toCodes(values []string) []model.RegistrationCode {
	out := make([]model.RegistrationCode, len(values))
	for i, v := range values {
		out[i] = model.RegistrationCode{ID: "id-" + v, Code: v}
	}
	return out
}

func TestCodeService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("single round", func(t *testing.T) {
		repo := new(repoMocks.MockRegistrationCodeRepository)
		repo.On("CreateBatch", ctx, []string{"CODE0001", "CODE0002", "CODE0003"}).
			Return(func(_ context.Context, codes []string) []model.RegistrationCode { return toCodes(codes) }, nil)

		svc := NewCodeService(repo, testLogger()).(*codeService)
		svc.generate = sequence()

		codes, err := svc.Generate(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, codes, 3)
		repo.AssertExpectations(t)
	})

	t.Run("retries collisions", func(t *testing.T) {
		repo := new(repoMocks.MockRegistrationCodeRepository)
		repo.On("CreateBatch", ctx, []string{"CODE0001", "CODE0002"}).
			Return(toCodes([]string{"CODE0001"}), nil).Once()
		repo.On("CreateBatch", ctx, []string{"CODE0003"}).
			Return(toCodes([]string{"CODE0003"}), nil).Once()

		svc := NewCodeService(repo, testLogger()).(*codeService)
		svc.generate = sequence()

		codes, err := svc.Generate(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "CODE0001", codes[0].Code)
		assert.Equal(t, "CODE0003", codes[1].Code)
		repo.AssertExpectations(t)
	})

	t.Run("gives up after three rounds", func(t *testing.T) {
		repo := new(repoMocks.MockRegistrationCodeRepository)
		repo.On("CreateBatch", ctx, mock.Anything).Return([]model.RegistrationCode{}, nil).Times(3)

		svc := NewCodeService(repo, testLogger()).(*codeService)
		svc.generate = sequence()

		codes, err := svc.Generate(ctx, 1)
		assert.ErrorIs(t, err, ErrCodeGeneration)
		assert.Empty(t, codes)
		repo.AssertExpectations(t)
	})

	t.Run("dedupes within a batch", func(t *testing.T) {
		repo := new(repoMocks.MockRegistrationCodeRepository)
		repo.On("CreateBatch", ctx, []string{"SAME0000", "NEXT0000"}).
			Return(func(_ context.Context, codes []string) []model.RegistrationCode { return toCodes(codes) }, nil)

		values := []string{"SAME0000", "SAME0000", "NEXT0000"}
		svc := NewCodeService(repo, testLogger()).(*codeService)
		svc.generate = func(int) (string, error) {
			v := values[0]
			values = values[1:]
			return v, nil
		}

		codes, err := svc.Generate(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, codes, 2)
	})

	t.Run("count bounds", func(t *testing.T) {
		svc := NewCodeService(new(repoMocks.MockRegistrationCodeRepository), testLogger())
		for _, n := range []int{0, -1, MaxCodesPerBatch + 1} {
			_, err := svc.Generate(ctx, n)
			assert.ErrorIs(t, err, ErrValidation, "count %d", n)
		}
	})

	t.Run("store error", func(t *testing.T) {
		repo := new(repoMocks.MockRegistrationCodeRepository)
		repo.On("CreateBatch", ctx, mock.Anything).Return(nil, errors.New("tx aborted"))

		_, err := NewCodeService(repo, testLogger()).Generate(ctx, 5)
		assert.ErrorContains(t, err, "store codes: tx aborted")
	})
}

func TestCodeService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRegistrationCodeRepository)
	repo.On("List", ctx, repository.PageQuery{Limit: 50, Offset: 0}).
		Return(&repository.PageResult[model.RegistrationCode]{Total: 0}, nil)
	repo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 20}).
		Return(&repository.PageResult[model.RegistrationCode]{Items: toCodes([]string{"A"}), Total: 21}, nil)

	svc := NewCodeService(repo, testLogger())

	res, err := svc.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, res.Total)

	res, err = svc.List(ctx, 10, 20)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 21, res.Total)
	repo.AssertExpectations(t)
}

func TestCodeService_ListCapsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRegistrationCodeRepository)
	repo.On("List", ctx, repository.PageQuery{Limit: 200, Offset: 0}).
		Return(&repository.PageResult[model.RegistrationCode]{Total: 5000}, nil).Once()

	_, err := NewCodeService(repo, testLogger()).List(ctx, 100000, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
