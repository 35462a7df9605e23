package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pilketos/internal/http/middleware"
	"pilketos/internal/metrics"
	"pilketos/internal/model"
	"pilketos/internal/realtime"
	"pilketos/internal/service"
)

// StreamKeepAlive is the interval between SSE keep-alive comments.
const StreamKeepAlive = 15 * time.Second

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	DB         pinger
	Tokens     middleware.TokenVerifier
	Auth       service.AuthService
	Candidates service.CandidateService
	Codes      service.CodeService
	Ballot     service.BallotService
	Results    service.ResultService
	Hub        *realtime.Hub
	Metrics    *metrics.Election
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, call one service method, map the result.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Get("/election", GetElection(d.Ballot))
	app.Get("/results", PublicResults(d.Results))

	app.Get("/candidates", ListCandidates(d.Candidates))
	app.Get("/candidates/:id", GetCandidate(d.Candidates))
	app.Get("/candidates/:id/photos/:slot", GetCandidatePhoto(d.Candidates))

	authn := middleware.Authenticate(d.Tokens)

	ag := app.Group("/auth")
	ag.Post("/register", Register(d.Auth))
	ag.Post("/login", Login(d.Auth))
	ag.Get("/me", authn, Me(d.Auth))

	vg := app.Group("/votes", authn, middleware.RequireRole(model.RoleVoter))
	vg.Post("", CastVote(d.Ballot))
	vg.Get("/me", MyVote(d.Ballot))

	// Registered ahead of the /admin group so its middleware does not run first.
	app.Get("/admin/stats/stream",
		middleware.AuthenticateStream(d.Tokens),
		middleware.RequireRole(model.RoleAdmin),
		StatsStream(d.Results, d.Hub, d.Metrics, StreamKeepAlive),
	)

	adm := app.Group("/admin", authn, middleware.RequireRole(model.RoleAdmin))
	adm.Post("/candidates", CreateCandidate(d.Candidates))
	adm.Put("/candidates/:id", UpdateCandidate(d.Candidates))
	adm.Delete("/candidates/:id", DeleteCandidate(d.Candidates))
	adm.Put("/candidates/:id/photos/:slot", UploadCandidatePhoto(d.Candidates))

	adm.Get("/codes", ListCodes(d.Codes))
	adm.Post("/codes", GenerateCodes(d.Codes))

	adm.Get("/voters", ListVoters(d.Results))
	adm.Get("/voters/export", ExportVoters(d.Results))

	adm.Get("/stats", Stats(d.Results))
}
