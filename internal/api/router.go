package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clinicdesk/health-records/docs"
	"github.com/clinicdesk/health-records/internal/api/handler"
	"github.com/clinicdesk/health-records/internal/api/middleware"
	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

// Dependencies holds everything the router needs to serve requests.
type Dependencies struct {
	Auth        ports.AuthService
	Clients     ports.ClientService
	Programs    ports.ProgramService
	Enrollments ports.EnrollmentService

	// Checks are pinged by GET /health/ready.
	Checks []handler.DependencyCheck

	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// HTTP metrics go to a per-router registry so several routers can coexist
	// in one process; /metrics gathers it together with the default registry
	// holding the application collectors.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Pre(middleware.Preflight(deps.AllowedOrigins))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "health_records",
		Subsystem:  "http",
		Registerer: httpMetrics,
	}))

	// --- Health, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/api/login", authHandler.Login)

	// --- Clinician routes ---
	api := e.Group("/api", middleware.Auth(deps.Auth), middleware.RBAC(domain.RoleClinician))

	programHandler := handler.NewProgramHandler(deps.Programs)
	api.GET("/programs", programHandler.List)
	api.POST("/programs", programHandler.Create)
	api.PUT("/programs/:id", programHandler.Update)

	clientHandler := handler.NewClientHandler(deps.Clients)
	api.GET("/clients", clientHandler.List)
	api.POST("/clients", clientHandler.Register)
	api.GET("/clients/search", clientHandler.Search)
	api.GET("/clients/:id", clientHandler.Get)
	api.PUT("/clients/:id", clientHandler.Update)

	enrollmentHandler := handler.NewEnrollmentHandler(deps.Enrollments)
	api.POST("/clients/:id/programs", enrollmentHandler.Enroll)
	api.DELETE("/clients/:id/programs/:program_id", enrollmentHandler.Unenroll)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			switch {
			case v.Status >= 500:
				event = log.Error().Err(v.Error)
			case v.Status >= 400:
				event = log.Warn()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
