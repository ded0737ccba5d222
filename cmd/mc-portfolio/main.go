package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ducminhle1904/mc-portfolio/cmd/common"
	"github.com/ducminhle1904/mc-portfolio/internal/storage"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/ducminhle1904/mc-portfolio/pkg/reporting"
)

const AppName = "mc-portfolio"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := NewPortfolioFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if common.CheckHelpAndVersion(stdout, fs, flags.Common, usage()) {
		return 0
	}

	if err := flags.Validate(); err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}

	log, err := common.NewLogger(AppName, flags.Common)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}
	defer log.Close()

	printHeader(stdout)

	if err := common.LoadEnvFile(*flags.Common.EnvFile, log.Logger); err != nil {
		log.Warn().Err(err).Msg("⚠️ environment file ignored")
	}

	manager := config.NewManager()
	cfg, err := manager.Load(*flags.Common.ConfigFile)
	if err != nil {
		log.Error().Err(err).Msg("❌ configuration error")
		return 1
	}
	flags.Apply(fs, cfg)
	if err := manager.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("❌ configuration error")
		return 1
	}

	provider, err := data.NewProvider(data.ProviderOptions{
		Source:        cfg.Source,
		DataRoot:      cfg.DataRoot,
		BybitCategory: *flags.Category,
	})
	if err != nil {
		log.Error().Err(err).Msg("❌ price source error")
		return 1
	}
	provider.WithLogger(log.Component("data"))

	var recorder orchestrator.RunRecorder
	if !*flags.NoSave && !*flags.ConsoleOnly && cfg.DBPath != "" {
		store, err := storage.Open(cfg.DBPath, log.Component("storage"))
		if err != nil {
			log.Error().Err(err).Msg("❌ run store error")
			return 1
		}
		defer store.Close()
		recorder = store
	}

	report, runErr := orchestrator.NewRunner(provider, recorder, log.Component("orchestrator")).Run(ctx, cfg)
	if runErr != nil {
		log.Error().Err(runErr).Msg("❌ optimization failed")
		if report == nil {
			return 1
		}
	}

	reporter := reporting.NewDefaultReporter(cfg.Output.Dir)
	reporter.OutputReport(stdout, report)

	if !*flags.ConsoleOnly {
		paths, err := reporter.WriteFiles(report, reporting.NewReportingConfig(cfg.Output))
		for _, p := range paths {
			fmt.Fprintf(stdout, "📁 %s\n", p)
		}
		if err != nil {
			log.Error().Err(err).Msg("❌ failed to write reports")
			return 1
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}

func usage() *common.UsageFormatter {
	return common.NewUsageFormatter(AppName, "Monte Carlo portfolio weight optimizer").
		AddExample(AppName+" -tickers AAPL,MSFT,SPY -sims 2000", "Optimize an equity basket from Yahoo history").
		AddExample(AppName+" -source csv -data-root data -tickers BTCUSDT,ETHUSDT -start 2022-01-01 -end 2024-01-01", "Use local candle files").
		AddExample(AppName+" -capital 10000 -xlsx -csv", "Split capital and write every report").
		AddExample(AppName+" -seed 42 -method nelder-mead", "Reproducible run with the simplex optimizer")
}

func printHeader(w io.Writer) {
	common.Header(w, "Monte Carlo Portfolio Optimizer")
	fmt.Fprintf(w, "Version %s\n", common.GetVersionInfo().Version)
}
