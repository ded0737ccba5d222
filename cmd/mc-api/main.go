package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducminhle1904/mc-portfolio/cmd/common"
	"github.com/ducminhle1904/mc-portfolio/internal/api"
	"github.com/ducminhle1904/mc-portfolio/internal/storage"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
)

const AppName = "mc-api"

func main() {
	fs := flag.NewFlagSet(AppName, flag.ExitOnError)
	commonFlags := common.RegisterCommonFlags(fs)
	addr := fs.String("addr", "", "Listen address (defaults to metrics_addr from config, then :8080)")
	category := fs.String("category", "spot", "Bybit category when source is bybit")
	noStore := fs.Bool("no-store", false, "Do not persist runs")
	fs.Parse(os.Args[1:])

	usage := common.NewUsageFormatter(AppName, "HTTP API for Monte Carlo portfolio optimization").
		AddExample(AppName+" -addr :8080", "Serve on port 8080").
		AddExample(`curl -XPOST localhost:8080/v1/optimize -d '{"tickers":["AAPL","SPY"]}' -H 'Content-Type: application/json'`, "Optimize over provider history")
	if common.CheckHelpAndVersion(os.Stdout, fs, commonFlags, usage) {
		return
	}

	log, err := common.NewLogger(AppName, commonFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}
	defer log.Close()

	if err := common.LoadEnvFile(*commonFlags.EnvFile, log.Logger); err != nil {
		log.Warn().Err(err).Msg("⚠️ environment file ignored")
	}

	cfg, err := config.NewManager().Load(*commonFlags.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ configuration error")
	}

	provider, err := data.NewProvider(data.ProviderOptions{
		Source:        cfg.Source,
		DataRoot:      cfg.DataRoot,
		BybitCategory: *category,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ price source error")
	}
	provider.WithLogger(log.Component("data"))

	var store api.RunStore
	if !*noStore && cfg.DBPath != "" {
		s, err := storage.Open(cfg.DBPath, log.Component("storage"))
		if err != nil {
			log.Fatal().Err(err).Msg("❌ run store error")
		}
		defer s.Close()
		store = s
	}

	listen := *addr
	if listen == "" {
		listen = common.GetEnvWithDefault("PORT", "")
		if listen != "" {
			listen = ":" + listen
		}
	}
	if listen == "" {
		listen = cfg.MetricsAddr
	}
	if listen == "" {
		listen = ":8080"
	}

	app := api.NewServer(*cfg, provider, store, log.Component("api")).App()

	go func() {
		if err := app.Listen(listen); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	log.Info().
		Str("addr", listen).
		Str("source", provider.Name()).
		Str("version", common.GetVersionInfo().Version).
		Msg("🚀 API started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("✅ server shutdown complete")
}
