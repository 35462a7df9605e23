package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pilketos/internal/http/middleware"
	"pilketos/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type apiError struct {
	status  int
	code    string
	message string
}

var serviceErrors = []struct {
	err error
	apiError
}{
	{service.ErrInvalidCode, apiError{fiber.StatusBadRequest, "INVALID_CODE", "registration code is invalid or already used"}},
	{service.ErrEmailTaken, apiError{fiber.StatusConflict, "EMAIL_TAKEN", "email is already registered"}},
	{service.ErrInvalidCredentials, apiError{fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"}},
	{service.ErrNoRole, apiError{fiber.StatusForbidden, "NO_ROLE", "account has no role"}},
	{service.ErrCandidateNotFound, apiError{fiber.StatusNotFound, "CANDIDATE_NOT_FOUND", "candidate not found"}},
	{service.ErrDuplicateNumber, apiError{fiber.StatusConflict, "DUPLICATE_NUMBER", "candidate number already in use"}},
	{service.ErrCandidateHasVotes, apiError{fiber.StatusConflict, "CANDIDATE_HAS_VOTES", "candidate already has votes"}},
	{service.ErrInvalidPhotoSlot, apiError{fiber.StatusBadRequest, "INVALID_PHOTO_SLOT", "photo slot must be chairman or vice_chairman"}},
	{service.ErrPhotoNotFound, apiError{fiber.StatusNotFound, "PHOTO_NOT_FOUND", "photo not found"}},
	{service.ErrElectionNotOpen, apiError{fiber.StatusForbidden, "ELECTION_NOT_OPEN", "voting is not open"}},
	{service.ErrAlreadyVoted, apiError{fiber.StatusConflict, "ALREADY_VOTED", "you have already voted"}},
	{service.ErrNotVoted, apiError{fiber.StatusNotFound, "NOT_VOTED", "you have not voted yet"}},
	{service.ErrResultsNotPublished, apiError{fiber.StatusForbidden, "RESULTS_NOT_PUBLISHED", "results are published after the election closes"}},
	{service.ErrCodeGeneration, apiError{fiber.StatusServiceUnavailable, "CODE_GENERATION_FAILED", "could not generate unique codes, try again"}},
}

// serviceError writes the response for a service error. Unknown errors are
// returned to Fiber so the request logger records them and ErrorHandler answers 500.
func serviceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrValidation) {
		// Validation messages are written for end users.
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}
	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			return writeError(c, e.status, e.code, e.message)
		}
	}
	return err
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
