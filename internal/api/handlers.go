package api

import (
	"context"
	"errors"
	"sort"
	"strings"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/internal/monitoring"
	"github.com/ducminhle1904/mc-portfolio/internal/storage"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/gofiber/fiber/v2"
)

// Optimize handles POST /v1/optimize
func (s *Server) Optimize(c *fiber.Ctx) error {
	var req OptimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
			Code:    fiber.StatusBadRequest,
		})
	}

	cfg, provider, err := s.prepare(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
			Code:    fiber.StatusBadRequest,
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	var recorder orchestrator.RunRecorder
	if s.store != nil {
		recorder = s.store
	}
	logger := s.logger.With().Str("request_id", requestID(c)).Logger()

	report, err := orchestrator.NewRunner(provider, recorder, logger).Run(ctx, cfg)
	if err != nil {
		s.health.RecordError(err)
		code := statusFor(err)
		return c.Status(code).JSON(ErrorResponse{
			Error:   "Optimization failed",
			Message: err.Error(),
			Code:    code,
		})
	}

	s.health.RecordRun(report.Allocation.Converged)
	return c.JSON(report)
}

// ListRuns handles GET /v1/runs
func (s *Server) ListRuns(c *fiber.Ctx) error {
	if s.store == nil {
		return storeUnavailable(c)
	}
	runs, err := s.store.ListRuns(c.UserContext(), c.QueryInt("limit", storage.DefaultListLimit))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if runs == nil {
		runs = []storage.RunSummary{}
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// GetRun handles GET /v1/runs/:id
func (s *Server) GetRun(c *fiber.Ctx) error {
	if s.store == nil {
		return storeUnavailable(c)
	}
	report, err := s.store.GetRun(c.UserContext(), c.Params("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "Run not found",
			Message: err.Error(),
			Code:    fiber.StatusNotFound,
		})
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(report)
}

// prepare merges the request into the server configuration and picks the
// price source
func (s *Server) prepare(req OptimizeRequest) (*config.PortfolioConfig, data.PriceHistoryProvider, error) {
	cfg := s.base.Clone()

	tickers := req.Tickers
	if len(tickers) == 0 && len(req.Prices) > 0 {
		for t := range req.Prices {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
	}
	if len(tickers) > MaxTickers {
		return nil, nil, errors.New("maximum 50 tickers allowed per request")
	}
	for i := range tickers {
		tickers[i] = strings.ToUpper(strings.TrimSpace(tickers[i]))
	}
	cfg.Tickers = tickers

	if req.StartDate != "" {
		cfg.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		cfg.EndDate = req.EndDate
	}
	if req.Simulations > 0 {
		cfg.Simulations = req.Simulations
	}
	if req.Steps > 0 {
		cfg.Steps = req.Steps
	}
	if req.RiskFreeRate != nil {
		cfg.RiskFreeRate = *req.RiskFreeRate
	}
	if req.Diversification != nil {
		cfg.Diversification = *req.Diversification
	}
	if req.Method != "" {
		cfg.Optimizer.Method = req.Method
	}
	cfg.Seed = req.Seed
	cfg.Capital = req.Capital
	if req.HoldoutRatio > 0 {
		cfg.HoldoutRatio = req.HoldoutRatio
	}
	cfg.Optimizer.StrictConvergence = cfg.Optimizer.StrictConvergence || req.Strict

	provider := s.provider
	if len(req.Prices) > 0 {
		mem := data.NewMemoryProvider()
		for t, closes := range req.Prices {
			mem.AddCloses(strings.ToUpper(strings.TrimSpace(t)), closes)
		}
		provider = mem
		cfg.Source = config.SourceCSV
		cfg.StartDate, cfg.EndDate = "", ""
	}
	if provider == nil {
		return nil, nil, errors.New("no price source configured; supply prices inline")
	}

	if err := config.NewPortfolioValidator().Validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, provider, nil
}

// statusFor maps run failures to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, perrors.ErrNoDataForAsset):
		return fiber.StatusNotFound
	}
	switch perrors.CategoryOf(err) {
	case perrors.ErrorCategoryData, perrors.ErrorCategoryValidation, perrors.ErrorCategoryConfiguration, perrors.ErrorCategoryConvergence:
		return fiber.StatusUnprocessableEntity
	case perrors.ErrorCategoryNetwork:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func storeUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
		Error: "Run store not configured",
		Code:  fiber.StatusServiceUnavailable,
	})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// CustomErrorHandler handles Fiber errors
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		monitoring.RecordError("api")
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "Request failed",
		Message: err.Error(),
		Code:    code,
	})
}
