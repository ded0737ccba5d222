package config

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/mc-portfolio/pkg/optimization"
)

// PortfolioConfig is everything one optimization run needs
type PortfolioConfig struct {
	Tickers   []string `json:"tickers"`
	Source    string   `json:"source"`
	DataRoot  string   `json:"data_root"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`

	// HorizonYears / Steps is the informational step size; the simulator
	// works in per-step units and never scales by it
	HorizonYears float64 `json:"horizon_years"`
	Steps        int     `json:"steps"`

	RiskFreeRate    float64 `json:"risk_free_rate"`
	Diversification float64 `json:"diversification"`
	Simulations     int     `json:"simulations"`
	Seed            uint64  `json:"seed"`
	Workers         int     `json:"workers"`

	// HoldoutRatio is the trailing share of the period kept out of fitting
	// and used to replay the optimized weights; 0 disables it
	HoldoutRatio float64 `json:"holdout_ratio"`

	Optimizer OptimizerConfig `json:"optimizer"`

	Capital     float64      `json:"capital"`
	Output      OutputConfig `json:"output"`
	DBPath      string       `json:"db_path"`
	MetricsAddr string       `json:"metrics_addr"`
	LogLevel    string       `json:"log_level"`
}

// OptimizerConfig selects and tunes the weight optimizer
type OptimizerConfig struct {
	Method              string  `json:"method"`
	MaxIterations       int     `json:"max_iterations"`
	FunctionTolerance   float64 `json:"function_tolerance"`
	ConstraintTolerance float64 `json:"constraint_tolerance"`
	// StrictConvergence turns non-convergence from a warning into an error
	StrictConvergence bool `json:"strict_convergence"`
}

// OutputConfig controls report files
type OutputConfig struct {
	Dir   string `json:"dir"`
	Excel bool   `json:"excel"`
	JSON  bool   `json:"json"`
	CSV   bool   `json:"csv"`
}

// NewDefaultConfig returns the reference configuration
func NewDefaultConfig() *PortfolioConfig {
	defaults := optimization.DefaultSettings()
	return &PortfolioConfig{
		Tickers:         append([]string(nil), DefaultTickers...),
		Source:          DefaultSource,
		DataRoot:        DefaultDataRoot,
		StartDate:       DefaultStartDate,
		EndDate:         DefaultEndDate,
		HorizonYears:    DefaultHorizonYears,
		Steps:           DefaultSteps,
		RiskFreeRate:    DefaultRiskFreeRate,
		Diversification: DefaultDiversification,
		Simulations:     DefaultSimulations,
		Optimizer: OptimizerConfig{
			Method:              string(defaults.Method),
			MaxIterations:       defaults.MaxIterations,
			FunctionTolerance:   defaults.FunctionTolerance,
			ConstraintTolerance: defaults.ConstraintTolerance,
		},
		Output: OutputConfig{
			Dir:  DefaultOutputDir,
			JSON: true,
		},
		DBPath: DefaultDBPath,
	}
}

// StepSize is HorizonYears/Steps, reported for reference only
func (c *PortfolioConfig) StepSize() float64 {
	if c.Steps <= 0 {
		return 0
	}
	return c.HorizonYears / float64(c.Steps)
}

// Settings converts the optimizer section
func (o OptimizerConfig) Settings() optimization.Settings {
	return optimization.Settings{
		Method:              optimization.Method(o.Method),
		MaxIterations:       o.MaxIterations,
		FunctionTolerance:   o.FunctionTolerance,
		ConstraintTolerance: o.ConstraintTolerance,
	}
}

// Period parses the configured date range. Empty dates yield zero times.
func (c *PortfolioConfig) Period() (start, end time.Time, err error) {
	if c.StartDate != "" {
		if start, err = time.Parse(DateLayout, c.StartDate); err != nil {
			return start, end, fmt.Errorf("invalid start date %q: %w", c.StartDate, err)
		}
	}
	if c.EndDate != "" {
		if end, err = time.Parse(DateLayout, c.EndDate); err != nil {
			return start, end, fmt.Errorf("invalid end date %q: %w", c.EndDate, err)
		}
	}
	return start, end, nil
}

// Clone returns a deep copy
func (c *PortfolioConfig) Clone() *PortfolioConfig {
	out := *c
	out.Tickers = append([]string(nil), c.Tickers...)
	return &out
}
