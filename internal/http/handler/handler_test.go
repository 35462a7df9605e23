package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pilketos/internal/auth"
	"pilketos/internal/http/middleware"
	"pilketos/internal/model"
	"pilketos/internal/realtime"
	"pilketos/internal/service"
	serviceMocks "pilketos/internal/service/mocks"
)

// newTestApp returns an app with the production error handler and request IDs.
func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	return app
}

// as marks the request as authenticated by userID with role.
func as(userID string, role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDLocalKey, userID)
		c.Locals(middleware.RoleLocalKey, role)
		return c.Next()
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrInvalidCode, http.StatusBadRequest, "INVALID_CODE"},
		{service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{service.ErrCandidateHasVotes, http.StatusConflict, "CANDIDATE_HAS_VOTES"},
		{service.ErrElectionNotOpen, http.StatusForbidden, "ELECTION_NOT_OPEN"},
		{service.ErrAlreadyVoted, http.StatusConflict, "ALREADY_VOTED"},
		{service.ErrResultsNotPublished, http.StatusForbidden, "RESULTS_NOT_PUBLISHED"},
		{errors.New("driver: bad connection"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			app := newTestApp()
			app.Get("/x", func(c *fiber.Ctx) error { return serviceError(c, tc.err) })

			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.RequestID)
			assert.NotContains(t, body.Error.Message, "driver")
		})
	}

	t.Run("validation message is passed through", func(t *testing.T) {
		app := newTestApp()
		app.Get("/x", func(c *fiber.Ctx) error {
			return serviceError(c, errors.Join(service.ErrValidation, errors.New("class is required")))
		})
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "class is required")
	})
}

type routeDeps struct {
	issuer     *auth.TokenIssuer
	auth       *serviceMocks.MockAuthService
	candidates *serviceMocks.MockCandidateService
	codes      *serviceMocks.MockCodeService
	ballot     *serviceMocks.MockBallotService
	results    *serviceMocks.MockResultService
}

func newRoutedApp(t *testing.T) (*fiber.App, routeDeps) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("routes-secret", time.Hour)
	require.NoError(t, err)
	d := routeDeps{
		issuer:     issuer,
		auth:       new(serviceMocks.MockAuthService),
		candidates: new(serviceMocks.MockCandidateService),
		codes:      new(serviceMocks.MockCodeService),
		ballot:     new(serviceMocks.MockBallotService),
		results:    new(serviceMocks.MockResultService),
	}
	app := newTestApp()
	RegisterRoutes(app, Dependencies{
		Tokens:     issuer,
		Auth:       d.auth,
		Candidates: d.candidates,
		Codes:      d.codes,
		Ballot:     d.ballot,
		Results:    d.results,
		Hub:        realtime.NewHub(),
	})
	return app, d
}

func bearer(t *testing.T, issuer *auth.TokenIssuer, userID string, role model.Role) string {
	t.Helper()
	token, _, err := issuer.Issue(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouting(t *testing.T) {
	app, d := newRoutedApp(t)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("admin routes need a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("voters cannot reach admin routes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/codes", nil)
		req.Header.Set("Authorization", bearer(t, d.issuer, "v1", model.RoleVoter))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
		d.codes.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admins cannot vote", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/votes", castVoteRequest{CandidateID: "c1"})
		req.Header.Set("Authorization", bearer(t, d.issuer, "a1", model.RoleAdmin))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("voter casts vote with subject from token", func(t *testing.T) {
		d.ballot.On("Cast", mock.Anything, "v1", "c1").Return(&model.Vote{ID: "vote-1"}, nil).Once()

		req := jsonRequest(http.MethodPost, "/votes", castVoteRequest{CandidateID: "c1"})
		req.Header.Set("Authorization", bearer(t, d.issuer, "v1", model.RoleVoter))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		d.ballot.AssertExpectations(t)
	})

	t.Run("admin reads stats", func(t *testing.T) {
		d.results.On("Stats", mock.Anything).Return(&model.VotingStats{TotalVoters: 3}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
		req.Header.Set("Authorization", bearer(t, d.issuer, "a1", model.RoleAdmin))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"total_voters":3`)
	})

	t.Run("query token rejected outside the stream", func(t *testing.T) {
		token := strings.TrimPrefix(bearer(t, d.issuer, "a1", model.RoleAdmin), "Bearer ")
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/stats?access_token="+token, nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stream accepts query token and still checks role", func(t *testing.T) {
		token := strings.TrimPrefix(bearer(t, d.issuer, "v1", model.RoleVoter), "Bearer ")
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/stats/stream?access_token="+token, nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("stream without token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/stats/stream", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("public candidate list", func(t *testing.T) {
		d.candidates.On("List", mock.Anything).Return([]model.Candidate{{ID: "c1", Number: 1}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/candidates", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
