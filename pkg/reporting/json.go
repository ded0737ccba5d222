package reporting

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatReport renders the report as indented JSON
func (f *DefaultJSONFormatter) FormatReport(report *orchestrator.RunReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// WriteJSON writes the report as JSON to path
func (f *DefaultJSONFormatter) WriteJSON(report *orchestrator.RunReport, path string) error {
	data, err := f.FormatReport(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := NewDefaultPathManager("").EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
