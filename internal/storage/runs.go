package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit bounds ListRuns when no limit is given
const DefaultListLimit = 50

// timeLayout is fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunSummary is one row of the run listing
type RunSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Tickers     []string  `json:"tickers"`
	Method      string    `json:"method"`
	Converged   bool      `json:"converged"`
	Sharpe      float64   `json:"sharpe"`
	Simulations int       `json:"simulations"`
}

// SaveRun stores an allocation and its optional capital plan. Runs without
// an id get a fresh UUID.
func (s *Store) SaveRun(ctx context.Context, alloc *orchestrator.Allocation, plan *allocation.Plan) error {
	if alloc == nil {
		return errors.New("nil allocation")
	}
	if alloc.ID == "" {
		alloc.ID = uuid.NewString()
	}
	if alloc.CreatedAt.IsZero() {
		alloc.CreatedAt = time.Now().UTC()
	}

	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, tickers, method, converged, status, warning,
			expected_return, std_dev, sharpe, objective, iterations,
			simulations, steps, step_size, seed, risk_free_rate, diversification, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alloc.ID,
		alloc.CreatedAt.UTC().Format(timeLayout),
		strings.Join(alloc.Tickers(), ","),
		alloc.Method,
		alloc.Converged,
		alloc.Status,
		alloc.Warning,
		alloc.ExpectedReturn,
		alloc.StdDev,
		alloc.Sharpe,
		alloc.Objective,
		alloc.Iterations,
		alloc.Simulations,
		alloc.Steps,
		alloc.StepSize,
		strconv.FormatUint(alloc.Seed, 10),
		alloc.RiskFreeRate,
		alloc.Diversification,
		alloc.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, as := range alloc.Assets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_assets (run_id, position, ticker, weight, mean_return, initial_price, drift, volatility)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			alloc.ID, i, as.Ticker, as.Weight, as.MeanReturn, as.InitialPrice, as.Drift, as.Volatility)
		if err != nil {
			return fmt.Errorf("insert asset %s: %w", as.Ticker, err)
		}
	}

	if plan != nil {
		payload, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_plans (run_id, capital, invested, cash, payload) VALUES (?, ?, ?, ?, ?)`,
			alloc.ID, plan.Capital.String(), plan.Invested.String(), plan.Cash.String(), string(payload))
		if err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.sql.QueryContext(ctx, `
		SELECT id, created_at, tickers, method, converged, sharpe, simulations
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r         RunSummary
			createdAt string
			tickers   string
		)
		if err := rows.Scan(&r.ID, &createdAt, &tickers, &r.Method, &r.Converged, &r.Sharpe, &r.Simulations); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		r.Tickers = strings.Split(tickers, ",")
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads a stored run with its assets and plan
func (s *Store) GetRun(ctx context.Context, id string) (*orchestrator.RunReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrRunNotFound, id)
	}

	var (
		a         orchestrator.Allocation
		createdAt string
		seed      string
		tickers   string
		durMS     int64
	)
	err := s.sql.QueryRowContext(ctx, `
		SELECT id, created_at, tickers, method, converged, status, warning,
			expected_return, std_dev, sharpe, objective, iterations,
			simulations, steps, step_size, seed, risk_free_rate, diversification, duration_ms
		FROM runs WHERE id = ?`, id).Scan(
		&a.ID, &createdAt, &tickers, &a.Method, &a.Converged, &a.Status, &a.Warning,
		&a.ExpectedReturn, &a.StdDev, &a.Sharpe, &a.Objective, &a.Iterations,
		&a.Simulations, &a.Steps, &a.StepSize, &seed, &a.RiskFreeRate, &a.Diversification, &durMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	a.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	a.Seed, _ = strconv.ParseUint(seed, 10, 64)
	a.Duration = time.Duration(durMS) * time.Millisecond

	rows, err := s.sql.QueryContext(ctx, `
		SELECT ticker, weight, mean_return, initial_price, drift, volatility
		FROM run_assets WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get run assets %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var as orchestrator.AssetAllocation
		if err := rows.Scan(&as.Ticker, &as.Weight, &as.MeanReturn, &as.InitialPrice, &as.Drift, &as.Volatility); err != nil {
			return nil, err
		}
		a.Assets = append(a.Assets, as)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := &orchestrator.RunReport{Allocation: &a}

	var payload string
	err = s.sql.QueryRowContext(ctx, `SELECT payload FROM run_plans WHERE run_id = ?`, id).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("get run plan %s: %w", id, err)
	default:
		var plan allocation.Plan
		if err := json.Unmarshal([]byte(payload), &plan); err != nil {
			return nil, fmt.Errorf("decode run plan %s: %w", id, err)
		}
		report.Plan = &plan
	}

	return report, nil
}

// DeleteRun removes a run and its assets and plan
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.sql.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
