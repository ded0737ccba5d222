package main

import (
	"flag"
	"strings"

	"github.com/ducminhle1904/mc-portfolio/cmd/common"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/optimization"
)

// PortfolioFlags holds all command line flags for the optimizer command.
// Only flags set on the command line override the loaded configuration.
type PortfolioFlags struct {
	Common *common.CommonFlags

	// Assets and data
	Tickers  *string
	Source   *string
	DataRoot *string
	Start    *string
	End      *string
	Category *string

	// Simulation
	Simulations *int
	Steps       *int
	Horizon     *float64
	Seed        *uint64
	Workers     *int
	Holdout     *float64

	// Objective and optimizer
	RiskFree        *float64
	Diversification *float64
	Method          *string
	MaxIterations   *int
	Strict          *bool

	// Output
	Capital     *float64
	OutputDir   *string
	Excel       *bool
	CSV         *bool
	JSON        *bool
	ConsoleOnly *bool
	DBPath      *string
	NoSave      *bool
}

// NewPortfolioFlags registers every flag on fs
func NewPortfolioFlags(fs *flag.FlagSet) *PortfolioFlags {
	return &PortfolioFlags{
		Common: common.RegisterCommonFlags(fs),

		Tickers:  fs.String("tickers", strings.Join(config.DefaultTickers, ","), "Comma-separated tickers"),
		Source:   fs.String("source", config.DefaultSource, "Price source: csv, yahoo, bybit"),
		DataRoot: fs.String("data-root", config.DefaultDataRoot, "Root directory for csv price files"),
		Start:    fs.String("start", config.DefaultStartDate, "History start date (YYYY-MM-DD)"),
		End:      fs.String("end", config.DefaultEndDate, "History end date (YYYY-MM-DD)"),
		Category: fs.String("category", "spot", "Bybit category: spot, linear, inverse"),

		Simulations: fs.Int("sims", config.DefaultSimulations, "Simulated paths per asset"),
		Steps:       fs.Int("steps", config.DefaultSteps, "Steps per simulated path"),
		Horizon:     fs.Float64("horizon", config.DefaultHorizonYears, "Horizon in years (reported step size only)"),
		Seed:        fs.Uint64("seed", 0, "Random seed; 0 picks one and reports it"),
		Workers:     fs.Int("workers", 0, "Sampler workers; 0 means one per CPU"),
		Holdout:     fs.Float64("holdout", 0, "Trailing share of the period replayed out of sample (0 disables)"),

		RiskFree:        fs.Float64("rf", config.DefaultRiskFreeRate, "Risk-free rate"),
		Diversification: fs.Float64("div", config.DefaultDiversification, "Diversification penalty coefficient"),
		Method:          fs.String("method", string(optimization.MethodSQP), "Optimizer: sqp, nelder-mead"),
		MaxIterations:   fs.Int("max-iter", optimization.DefaultMaxIterations, "Optimizer iteration budget"),
		Strict:          fs.Bool("strict", false, "Fail when the optimizer does not converge"),

		Capital:     fs.Float64("capital", 0, "Capital to split across assets; 0 skips allocation"),
		OutputDir:   fs.String("out", config.DefaultOutputDir, "Report output directory"),
		Excel:       fs.Bool("xlsx", false, "Write an Excel workbook"),
		CSV:         fs.Bool("csv", false, "Write a CSV report"),
		JSON:        fs.Bool("json", true, "Write a JSON report"),
		ConsoleOnly: fs.Bool("console-only", false, "Console output only (no report files, no run store)"),
		DBPath:      fs.String("db", config.DefaultDBPath, "SQLite run store path"),
		NoSave:      fs.Bool("no-save", false, "Do not record the run in the run store"),
	}
}

// Validate checks flag values that the configuration layer cannot see
func (f *PortfolioFlags) Validate() error {
	v := common.NewFlagValidator()
	v.ValidateChoice("source", *f.Source, []string{config.SourceCSV, config.SourceYahoo, config.SourceBybit})
	v.ValidateChoice("method", *f.Method, []string{string(optimization.MethodSQP), string(optimization.MethodNelderMead)})
	v.ValidateChoice("category", *f.Category, []string{"spot", "linear", "inverse"})
	v.ValidateInt("sims", *f.Simulations, 1, config.MaxSimulations)
	v.ValidateInt("steps", *f.Steps, 1, config.MaxSteps)
	v.ValidateInt("max-iter", *f.MaxIterations, 1, 1_000_000)
	v.ValidateFloat("div", *f.Diversification, 0, 1e6)
	v.ValidateFloat("capital", *f.Capital, 0, 1e15)
	v.ValidateFloat("holdout", *f.Holdout, 0, config.MaxHoldoutRatio)
	v.ValidateFile("config", *f.Common.ConfigFile, false)
	return v.GetError()
}

// Apply copies every explicitly set flag into cfg
func (f *PortfolioFlags) Apply(fs *flag.FlagSet, cfg *config.PortfolioConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "tickers":
			cfg.Tickers = config.SplitTickers(*f.Tickers)
		case "source":
			cfg.Source = *f.Source
		case "data-root":
			cfg.DataRoot = *f.DataRoot
		case "start":
			cfg.StartDate = *f.Start
		case "end":
			cfg.EndDate = *f.End
		case "sims":
			cfg.Simulations = *f.Simulations
		case "steps":
			cfg.Steps = *f.Steps
		case "horizon":
			cfg.HorizonYears = *f.Horizon
		case "seed":
			cfg.Seed = *f.Seed
		case "workers":
			cfg.Workers = *f.Workers
		case "holdout":
			cfg.HoldoutRatio = *f.Holdout
		case "rf":
			cfg.RiskFreeRate = *f.RiskFree
		case "div":
			cfg.Diversification = *f.Diversification
		case "method":
			cfg.Optimizer.Method = *f.Method
		case "max-iter":
			cfg.Optimizer.MaxIterations = *f.MaxIterations
		case "strict":
			cfg.Optimizer.StrictConvergence = *f.Strict
		case "capital":
			cfg.Capital = *f.Capital
		case "out":
			cfg.Output.Dir = *f.OutputDir
		case "xlsx":
			cfg.Output.Excel = *f.Excel
		case "csv":
			cfg.Output.CSV = *f.CSV
		case "json":
			cfg.Output.JSON = *f.JSON
		case "db":
			cfg.DBPath = *f.DBPath
		case "log-level":
			cfg.LogLevel = *f.Common.LogLevel
		}
	})
}
