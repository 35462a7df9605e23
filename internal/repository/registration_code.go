package repository

import (
	"context"

	"pilketos/internal/model"
)

// RegistrationCodeRepository persists one-time registration codes.
type RegistrationCodeRepository interface {
	// CreateBatch inserts codes in one transaction, silently skipping values that already exist.
	// Only the rows actually inserted are returned.
	CreateBatch(ctx context.Context, codes []string) ([]model.RegistrationCode, error)

	// List returns codes newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.RegistrationCode], error)
}
