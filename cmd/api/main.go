// @title                      Health Records API
// @version                    1.0
// @description                Clinician API for client records, health programs and enrollments.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/api"
	"github.com/clinicdesk/health-records/internal/api/handler"
	"github.com/clinicdesk/health-records/internal/core/service"
	"github.com/clinicdesk/health-records/internal/infrastructure/db/mongo"
	"github.com/clinicdesk/health-records/internal/infrastructure/db/postgres"
	"github.com/clinicdesk/health-records/internal/infrastructure/db/redis"
	"github.com/clinicdesk/health-records/internal/infrastructure/queue"
	"github.com/clinicdesk/health-records/internal/pkg/config"
	"github.com/clinicdesk/health-records/pkg/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs(),
		Service: "health-records",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Stores ---
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, log); err != nil {
		return err
	}

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	auditRepo := mongo.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Audit trail ---
	// The dispatcher outlives the request context so events recorded during
	// shutdown still reach MongoDB.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, auditRepo, log)
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Services ---
	userRepo := postgres.NewUserRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	programRepo := postgres.NewProgramRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	programCache := redis.NewProgramCache(rdb, cfg.Redis.ProgramTTL)

	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	if cfg.Auth.SeedPassword != "" {
		if err := authService.EnsureUser(ctx, cfg.Auth.SeedUsername, cfg.Auth.SeedPassword); err != nil {
			return fmt.Errorf("seed clinician: %w", err)
		}
	} else {
		log.Warn().Msg("CLINICIAN_PASSWORD not set, skipping clinician seeding")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:        authService,
		Clients:     service.NewClientService(clientRepo, dispatcher, log),
		Programs:    service.NewProgramService(programRepo, programCache, dispatcher, log),
		Enrollments: service.NewEnrollmentService(clientRepo, programRepo, enrollmentRepo, dispatcher, log),
		Checks: []handler.DependencyCheck{
			{Name: "postgres", Ping: db.PingContext},
			{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         log,
	})

	// --- Serve until a signal arrives ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
