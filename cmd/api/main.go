package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pilketos/docs"
	"pilketos/internal/auth"
	"pilketos/internal/config"
	"pilketos/internal/database"
	"pilketos/internal/database/migration"
	handlers "pilketos/internal/http/handler"
	"pilketos/internal/http/middleware"
	"pilketos/internal/logging"
	"pilketos/internal/metrics"
	"pilketos/internal/otel"
	"pilketos/internal/realtime"
	"pilketos/internal/repository/postgres"
	"pilketos/internal/service"
	"pilketos/internal/storage"
)

const (
	bodyLimit       = 6 * 1024 * 1024
	shutdownTimeout = 10 * time.Second
)

// @title Pilketos API
// @version 1.0
// @description School election service: voter registration codes, candidates, ballots and live results.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := logging.Location(cfg.Timezone)
	logger := logging.New(os.Stdout, loc)
	slog.SetDefault(logger)

	if cfg.ElectionFile != "" {
		election, err := config.LoadElectionFile(cfg.ElectionFile, cfg.Election)
		if err != nil {
			return err
		}
		cfg.Election = election
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Warn("tracing_disabled", "error", err.Error())
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL pool via database/sql, traced by otelsql
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	// Candidate photos live in MinIO
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	users := postgres.NewUserPostgres(db)
	candidates := postgres.NewCandidatePostgres(db)
	codes := postgres.NewRegistrationCodePostgres(db)
	votes := postgres.NewVotePostgres(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	electionMetrics, err := metrics.New(reg)
	if err != nil {
		return err
	}
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	if err != nil {
		return err
	}

	authSvc := service.NewAuthService(users, tokens, electionMetrics, logger)
	candidateSvc := service.NewCandidateService(candidates, objStore, logger)
	codeSvc := service.NewCodeService(codes, logger)
	ballotSvc := service.NewBallotService(votes, candidates, cfg.Election, electionMetrics, logger)
	resultSvc := service.NewResultService(users, votes, cfg.Election, loc, logger)

	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName); err != nil {
		return err
	}

	// Database notifications fan out to every stats stream
	hub := realtime.NewHub()
	dsn, err := database.BuildPostgresDSN(cfg.Database)
	if err != nil {
		return err
	}
	go func() {
		err := realtime.NewListener(dsn, migration.NotifyChannel, hub, logger).Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("realtime_listener_stopped", "error", err.Error())
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:         db,
		Tokens:     tokens,
		Auth:       authSvc,
		Candidates: candidateSvc,
		Codes:      codeSvc,
		Ballot:     ballotSvc,
		Results:    resultSvc,
		Hub:        hub,
		Metrics:    electionMetrics,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		// Streams end first so the server can drain.
		hub.Close()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("server_shutdown_failed", "error", err.Error())
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_start", "addr", addr, "election", cfg.Election.Title)

	if err := app.Listen(addr); err != nil {
		return err
	}
	logger.Info("server_stopped")
	return nil
}
