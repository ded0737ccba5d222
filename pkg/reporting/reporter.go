package reporting

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ducminhle1904/mc-portfolio/pkg/config"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
)

// DefaultReporter bundles console and file output
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a reporter writing under root
func NewDefaultReporter(root string) *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(root),
	}
}

// NewReportingConfig maps the output section of a run configuration
func NewReportingConfig(out config.OutputConfig) ReportingConfig {
	return ReportingConfig{
		OutputDirectory: out.Dir,
		ExcelEnabled:    out.Excel,
		CSVEnabled:      out.CSV,
		JSONEnabled:     out.JSON,
	}
}

func (r *DefaultReporter) OutputReport(w io.Writer, report *orchestrator.RunReport) {
	r.console.OutputReport(w, report)
}

func (r *DefaultReporter) WriteJSON(report *orchestrator.RunReport, path string) error {
	return r.json.WriteJSON(report, path)
}

func (r *DefaultReporter) WriteCSV(report *orchestrator.RunReport, path string) error {
	return r.csv.WriteCSV(report, path)
}

func (r *DefaultReporter) WriteXLSX(report *orchestrator.RunReport, path string) error {
	return r.excel.WriteXLSX(report, path)
}

func (r *DefaultReporter) GetDefaultOutputDir(tickers []string) string {
	return r.paths.GetDefaultOutputDir(tickers)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// WriteFiles writes every enabled report into the run's output directory
// and returns the written paths
func (r *DefaultReporter) WriteFiles(report *orchestrator.RunReport, cfg ReportingConfig) ([]string, error) {
	if report == nil || report.Allocation == nil {
		return nil, fmt.Errorf("no report to write")
	}

	paths := r.paths
	if cfg.OutputDirectory != "" {
		paths = NewDefaultPathManager(cfg.OutputDirectory)
	}
	dir := paths.GetDefaultOutputDir(report.Allocation.Tickers())
	base := "run_" + report.Allocation.CreatedAt.Format("20060102_150405")

	var written []string
	write := func(enabled bool, ext string, fn func(*orchestrator.RunReport, string) error) error {
		if !enabled {
			return nil
		}
		path := filepath.Join(dir, base+ext)
		if err := fn(report, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(cfg.JSONEnabled, ".json", r.WriteJSON); err != nil {
		return written, err
	}
	if err := write(cfg.CSVEnabled, ".csv", r.WriteCSV); err != nil {
		return written, err
	}
	if err := write(cfg.ExcelEnabled, ".xlsx", r.WriteXLSX); err != nil {
		return written, err
	}
	return written, nil
}
