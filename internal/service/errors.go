package service

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP status codes;
// anything else is treated as an internal failure.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCode         = errors.New("registration code is invalid or already used")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNoRole              = errors.New("account has no role")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrDuplicateNumber     = errors.New("candidate number already in use")
	ErrCandidateHasVotes   = errors.New("candidate already has votes")
	ErrInvalidPhotoSlot    = errors.New("invalid photo slot")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrElectionNotOpen     = errors.New("election is not open")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrNotVoted            = errors.New("voter has not voted yet")
	ErrResultsNotPublished = errors.New("results are published after the election closes")
	ErrCodeGeneration      = errors.New("could not generate enough unique codes")
)
