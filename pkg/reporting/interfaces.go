package reporting

import (
	"io"

	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
)

// Package reporting renders optimization runs to the console and to files

// ConsoleReporter writes human readable run summaries
type ConsoleReporter interface {
	OutputReport(w io.Writer, report *orchestrator.RunReport)
}

// FileReporter writes run reports to disk
type FileReporter interface {
	WriteJSON(report *orchestrator.RunReport, path string) error
	WriteCSV(report *orchestrator.RunReport, path string) error
	WriteXLSX(report *orchestrator.RunReport, path string) error
}

// PathManager decides where report files go
type PathManager interface {
	GetDefaultOutputDir(tickers []string) string
	EnsureDirectoryExists(path string) error
}

// ExcelStyles holds workbook cell styles
type ExcelStyles struct {
	HeaderStyle   int
	PercentStyle  int
	DecimalStyle  int
	CurrencyStyle int
	BaseStyle     int
	WarningStyle  int
}

// ReportingConfig selects which report files to write
type ReportingConfig struct {
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}
