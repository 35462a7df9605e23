// Package repository defines persistence contracts for the election data.
// Implementations live in subpackages (e.g., postgres) and contain no business logic.
package repository

import "errors"

// Constraint failures are translated to these sentinels so callers never
// inspect driver specific error types. Missing rows surface as sql.ErrNoRows.
var (
	ErrUniqueViolation     = errors.New("unique constraint violated")
	ErrForeignKeyViolation = errors.New("foreign key constraint violated")
	ErrCodeUnavailable     = errors.New("registration code is invalid or already used")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
