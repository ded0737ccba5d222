package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	perrors "github.com/ducminhle1904/mc-portfolio/internal/errors"
	"github.com/ducminhle1904/mc-portfolio/pkg/types"
	"github.com/rs/zerolog"
)

// CSVProvider implements PriceHistoryProvider over CSV files under a data root
type CSVProvider struct {
	dataRoot string
	format   CSVColumnMapping
	locator  FileLocator
	logger   zerolog.Logger
}

// NewCSVProvider creates a CSV provider that detects columns from headers
func NewCSVProvider(dataRoot string) *CSVProvider {
	return NewCSVProviderWithFormat(dataRoot, AutoCSVFormat)
}

// NewCSVProviderWithFormat creates a CSV provider with fixed columns
func NewCSVProviderWithFormat(dataRoot string, format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		dataRoot: dataRoot,
		format:   format,
		locator:  NewDefaultFileLocator(),
		logger:   zerolog.Nop(),
	}
}

// WithLogger sets the logger used for skipped rows
func (p *CSVProvider) WithLogger(l zerolog.Logger) *CSVProvider {
	p.logger = l
	return p
}

// Name returns the name of the data provider
func (p *CSVProvider) Name() string {
	return "csv"
}

// History implements PriceHistoryProvider
func (p *CSVProvider) History(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := p.locator.FindDataFile(p.dataRoot, ticker)
	if path == "" {
		return nil, noDataError(p.Name(), ticker, start, end)
	}

	points, err := p.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s history from %s: %w", ticker, path, err)
	}

	points = FilterByDateRange(points, start, end)
	if len(points) == 0 {
		return nil, noDataError(p.Name(), ticker, start, end)
	}
	return points, nil
}

// LoadFile parses one CSV file into chronologically ordered points.
// Malformed rows are skipped with a warning.
func (p *CSVProvider) LoadFile(path string) ([]types.PricePoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	format, err := resolveColumns(p.format, header)
	if err != nil {
		return nil, err
	}

	var points []types.PricePoint
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) <= format.TimestampCol || len(record) <= format.CloseCol {
			p.logger.Warn().Str("file", path).Int("line", lineNum).Msg("insufficient columns, skipping")
			continue
		}

		ts, err := parseTimestamp(strings.TrimSpace(record[format.TimestampCol]), format.DateFormats)
		if err != nil {
			p.logger.Warn().Str("file", path).Int("line", lineNum).Err(err).Msg("invalid timestamp, skipping")
			continue
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[format.CloseCol]), 64)
		if err != nil {
			p.logger.Warn().Str("file", path).Int("line", lineNum).Err(err).Msg("invalid close price, skipping")
			continue
		}

		points = append(points, types.PricePoint{Timestamp: ts, Close: closePrice})
	}

	return SortAndDedup(points), nil
}

func resolveColumns(format CSVColumnMapping, header []string) (CSVColumnMapping, error) {
	if format.TimestampCol >= 0 && format.CloseCol >= 0 {
		return format, nil
	}

	find := func(names ...string) int {
		for _, name := range names {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), name) {
					return i
				}
			}
		}
		return -1
	}

	if format.TimestampCol < 0 {
		format.TimestampCol = find("date", "timestamp", "time", "datetime")
	}
	if format.CloseCol < 0 {
		format.CloseCol = find("adj close", "adj_close", "adjclose", "close")
	}
	if format.TimestampCol < 0 || format.CloseCol < 0 {
		return format, fmt.Errorf("cannot find date and close columns in header %v", header)
	}
	return format, nil
}

func parseTimestamp(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// unix seconds or milliseconds
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func noDataError(provider, ticker string, start, end time.Time) error {
	return perrors.NewNoDataError(provider, ticker,
		fmt.Sprintf("no data found for %s between %s and %s", ticker, formatDate(start), formatDate(end)))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
