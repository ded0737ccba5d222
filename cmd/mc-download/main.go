package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/mc-portfolio/cmd/common"
	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/data"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const AppName = "mc-download"

// downloadConcurrency caps tickers fetched at once; the provider's rate
// limiter still spaces the requests
const downloadConcurrency = 4

type downloadFlags struct {
	Common *common.CommonFlags

	Tickers  *string
	Source   *string
	Start    *string
	End      *string
	Category *string
	OutDir   *string
	RPS      *float64
	YahooURL *string
}

// downloadResult is one ticker's outcome
type downloadResult struct {
	Ticker string
	Path   string
	Points []types.PricePoint
	Err    error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := &downloadFlags{
		Common:   common.RegisterCommonFlags(fs),
		Tickers:  fs.String("tickers", strings.Join(config.DefaultTickers, ","), "Comma-separated tickers"),
		Source:   fs.String("source", config.SourceYahoo, "Price source: yahoo, bybit"),
		Start:    fs.String("start", "", "Start date (YYYY-MM-DD); defaults to one year before end"),
		End:      fs.String("end", "", "End date (YYYY-MM-DD); defaults to today"),
		Category: fs.String("category", "spot", "Bybit category: spot, linear, inverse"),
		OutDir:   fs.String("out", config.DefaultDataRoot, "Directory to write <TICKER>.csv files"),
		RPS:      fs.Float64("rps", 0, "Requests per second; 0 uses the source default"),
		YahooURL: fs.String("yahoo-url", "", "Override the Yahoo chart endpoint"),
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	formatter := common.NewUsageFormatter(AppName, "Download daily closes into the csv layout the optimizer reads").
		AddExample(AppName+" -tickers AAPL,MSFT,SPY -start 2015-01-01 -end 2023-01-01", "Equities from Yahoo").
		AddExample(AppName+" -source bybit -tickers BTCUSDT,ETHUSDT -start 2022-01-01", "Crypto from Bybit spot")
	if common.CheckHelpAndVersion(stdout, fs, flags.Common, formatter) {
		return 0
	}

	start, end, err := flags.period(time.Now().UTC())
	tickers := config.SplitTickers(*flags.Tickers)

	v := common.NewFlagValidator()
	v.ValidateChoice("source", *flags.Source, []string{config.SourceYahoo, config.SourceBybit})
	v.ValidateChoice("category", *flags.Category, []string{"spot", "linear", "inverse"})
	v.ValidateFloat("rps", *flags.RPS, 0, 1000)
	if len(tickers) == 0 {
		v.AddError("at least one ticker is required")
	}
	if err != nil {
		v.AddError(err.Error())
	}
	if v.HasErrors() {
		v.PrintErrors(stderr)
		return 2
	}

	log, err := common.NewLogger(AppName, flags.Common)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}
	defer log.Close()

	if err := common.LoadEnvFile(*flags.Common.EnvFile, log.Logger); err != nil {
		log.Warn().Err(err).Msg("⚠️ environment file ignored")
	}

	provider, err := data.NewProvider(data.ProviderOptions{
		Source:            *flags.Source,
		BybitCategory:     *flags.Category,
		YahooBaseURL:      *flags.YahooURL,
		RequestsPerSecond: *flags.RPS,
	})
	if err != nil {
		log.Error().Err(err).Msg("❌ price source error")
		return 1
	}

	common.Header(stdout, "Price download")
	fmt.Fprintf(stdout, "📅 Period: %s to %s\n", start.Format(config.DateLayout), end.Format(config.DateLayout))
	fmt.Fprintf(stdout, "📁 Output: %s\n", *flags.OutDir)

	results := download(ctx, provider, tickers, start, end, *flags.OutDir, log.Component("download"))
	printSummary(stdout, results)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(results)).Msg("❌ some downloads failed")
		return 1
	}
	return 0
}

func (f *downloadFlags) period(now time.Time) (start, end time.Time, err error) {
	end = now.Truncate(24 * time.Hour)
	if *f.End != "" {
		if end, err = time.Parse(config.DateLayout, *f.End); err != nil {
			return start, end, fmt.Errorf("invalid end date %q", *f.End)
		}
	}
	start = end.AddDate(-1, 0, 0)
	if *f.Start != "" {
		if start, err = time.Parse(config.DateLayout, *f.Start); err != nil {
			return start, end, fmt.Errorf("invalid start date %q", *f.Start)
		}
	}
	if !start.Before(end) {
		return start, end, fmt.Errorf("start date %s must be before end date %s", start.Format(config.DateLayout), end.Format(config.DateLayout))
	}
	return start, end, nil
}

// download fetches every ticker and writes its csv; one failure does not
// stop the others
func download(ctx context.Context, provider data.PriceHistoryProvider, tickers []string, start, end time.Time, outDir string, logger zerolog.Logger) []downloadResult {
	results := make([]downloadResult, len(tickers))

	var g errgroup.Group
	g.SetLimit(downloadConcurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			res := downloadResult{Ticker: ticker}
			defer func() { results[i] = res }()

			points, err := provider.History(ctx, ticker, start, end)
			if err != nil {
				res.Err = err
				logger.Warn().Str("ticker", ticker).Err(err).Msg("download failed")
				return nil
			}

			path := data.TickerCSVPath(outDir, ticker)
			if err := data.SaveCSV(path, points); err != nil {
				res.Err = err
				return nil
			}
			res.Path = path
			res.Points = points
			logger.Info().Str("ticker", ticker).Int("points", len(points)).Str("path", path).Msg("💾 saved")
			return nil
		})
	}
	g.Wait()

	return results
}

func printSummary(w io.Writer, results []downloadResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("DATA SUMMARY")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Ticker", "Points", "First", "Last", "Low", "High", "File"})

	for _, r := range results {
		if r.Err != nil {
			t.AppendRow(table.Row{r.Ticker, 0, "", "", "", "", "❌ " + r.Err.Error()})
			continue
		}
		low, high := r.Points[0].Close, r.Points[0].Close
		for _, p := range r.Points {
			low = min(low, p.Close)
			high = max(high, p.Close)
		}
		t.AppendRow(table.Row{
			r.Ticker,
			len(r.Points),
			r.Points[0].Timestamp.Format(config.DateLayout),
			r.Points[len(r.Points)-1].Timestamp.Format(config.DateLayout),
			fmt.Sprintf("%.2f", low),
			fmt.Sprintf("%.2f", high),
			r.Path,
		})
	}
	t.Render()
}
