package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ducminhle1904/mc-portfolio/pkg/types"
)

// CSVHeader is the layout WriteCSV produces and CSVProvider auto-detects
var CSVHeader = []string{"date", "close"}

// WriteCSV writes points as date,close rows
func WriteCSV(w io.Writer, points []types.PricePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{
			p.Timestamp.UTC().Format("2006-01-02"),
			strconv.FormatFloat(p.Close, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes points to path, creating parent directories
func SaveCSV(path string, points []types.PricePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to prepare output directory %s: %w", filepath.Dir(path), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, points); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// TickerCSVPath is where CSVProvider looks first for ticker under dataRoot
func TickerCSVPath(dataRoot, ticker string) string {
	return filepath.Join(dataRoot, strings.ToUpper(ticker)+".csv")
}
