package api

import (
	"context"
	"time"

	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/internal/storage"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// MaxTickers bounds the assets accepted in one request
const MaxTickers = 50

// DefaultRequestTimeout bounds a single optimization request
const DefaultRequestTimeout = 2 * time.Minute

// RunStore is the persistence the run endpoints need
type RunStore interface {
	orchestrator.RunRecorder
	ListRuns(ctx context.Context, limit int) ([]storage.RunSummary, error)
	GetRun(ctx context.Context, id string) (*orchestrator.RunReport, error)
}

// Server serves optimization requests over HTTP
type Server struct {
	base     config.PortfolioConfig
	provider data.PriceHistoryProvider
	store    RunStore
	health   *monitoring.HealthChecker
	logger   zerolog.Logger
	timeout  time.Duration
}

// NewServer creates a server. provider and store may be nil: requests then
// need inline prices and runs are not persisted.
func NewServer(base config.PortfolioConfig, provider data.PriceHistoryProvider, store RunStore, logger zerolog.Logger) *Server {
	return &Server{
		base:     *base.Clone(),
		provider: provider,
		store:    store,
		health:   monitoring.NewHealthChecker(),
		logger:   logger,
		timeout:  DefaultRequestTimeout,
	}
}

// Health exposes the server's health checker
func (s *Server) Health() *monitoring.HealthChecker {
	return s.health
}

// App builds the fiber application with middleware and routes
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		StrictRouting:         true,
		CaseSensitive:         true,
		ServerHeader:          "mc-portfolio",
		AppName:               "mc-portfolio API",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          s.timeout + 10*time.Second,
		BodyLimit:             8 * 1024 * 1024,
		ErrorHandler:          CustomErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", adaptor.HTTPHandler(s.health))
	app.Get("/metrics", adaptor.HTTPHandler(monitoring.NewMetricsHandler()))

	v1 := app.Group("/v1")
	v1.Post("/optimize", s.Optimize)
	v1.Get("/runs", s.ListRuns)
	v1.Get("/runs/:id", s.GetRun)

	return app
}
