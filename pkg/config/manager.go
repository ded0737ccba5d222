package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Manager loads, overrides, validates and saves configurations
type Manager struct {
	validator Validator
	lookupEnv func(string) (string, bool)
}

// NewManager creates a configuration manager reading the process environment
func NewManager() *Manager {
	return &Manager{
		validator: NewPortfolioValidator(),
		lookupEnv: os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup, mainly for tests
func (m *Manager) WithEnv(lookup func(string) (string, bool)) *Manager {
	m.lookupEnv = lookup
	return m
}

// Load starts from defaults, overlays the JSON file at path (if any), then
// MCP_* environment variables, and validates the result
func (m *Manager) Load(path string) (*PortfolioConfig, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		if err := m.loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := m.applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := m.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates a configuration
func (m *Manager) Validate(cfg *PortfolioConfig) error {
	return m.validator.Validate(cfg)
}

// Save writes cfg as indented JSON
func (m *Manager) Save(cfg *PortfolioConfig, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (m *Manager) loadFromFile(path string, cfg *PortfolioConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}
	return nil
}

func (m *Manager) env(name string) (string, bool) {
	v, ok := m.lookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (m *Manager) applyEnv(cfg *PortfolioConfig) error {
	if v, ok := m.env("TICKERS"); ok {
		cfg.Tickers = SplitTickers(v)
	}
	if v, ok := m.env("SOURCE"); ok {
		cfg.Source = strings.ToLower(v)
	}
	if v, ok := m.env("DATA_ROOT"); ok {
		cfg.DataRoot = v
	}
	if v, ok := m.env("START_DATE"); ok {
		cfg.StartDate = v
	}
	if v, ok := m.env("END_DATE"); ok {
		cfg.EndDate = v
	}
	if v, ok := m.env("OPTIMIZER_METHOD"); ok {
		cfg.Optimizer.Method = v
	}
	if v, ok := m.env("DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := m.env("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := m.env("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := m.env("OUTPUT_DIR"); ok {
		cfg.Output.Dir = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"STEPS", &cfg.Steps},
		{"SIMULATIONS", &cfg.Simulations},
		{"WORKERS", &cfg.Workers},
		{"MAX_ITERATIONS", &cfg.Optimizer.MaxIterations},
	}
	for _, e := range ints {
		if v, ok := m.env(e.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, e.name, err)
			}
			*e.dst = n
		}
	}

	floatVars := []struct {
		name string
		dst  *float64
	}{
		{"HORIZON_YEARS", &cfg.HorizonYears},
		{"RISK_FREE_RATE", &cfg.RiskFreeRate},
		{"DIVERSIFICATION", &cfg.Diversification},
		{"CAPITAL", &cfg.Capital},
		{"HOLDOUT_RATIO", &cfg.HoldoutRatio},
	}
	for _, e := range floatVars {
		if v, ok := m.env(e.name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, e.name, err)
			}
			*e.dst = f
		}
	}

	if v, ok := m.env("SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		cfg.Seed = seed
	}
	if v, ok := m.env("STRICT_CONVERGENCE"); ok {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSTRICT_CONVERGENCE: %w", EnvPrefix, err)
		}
		cfg.Optimizer.StrictConvergence = strict
	}

	return nil
}

// SplitTickers parses a comma separated ticker list, upper-casing names
func SplitTickers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
