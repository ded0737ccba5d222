package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ducminhle1904/mc-portfolio/pkg/allocation"
	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

var csvHeader = []string{
	"Ticker",
	"Weight",
	"Mean_Return",
	"Last_Price",
	"Drift",
	"Volatility",
	"Target_$",
	"Quantity",
	"Cost_$",
}

// WriteCSV writes one row per asset; allocation columns are empty without a plan
func (r *DefaultCSVReporter) WriteCSV(report *orchestrator.RunReport, path string) error {
	if report == nil || report.Allocation == nil {
		return fmt.Errorf("nothing to write to %s", path)
	}
	if err := NewDefaultPathManager("").EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	positions := positionsByTicker(report.Plan)
	for _, as := range report.Allocation.Assets {
		row := []string{
			as.Ticker,
			formatFloat(as.Weight),
			formatFloat(as.MeanReturn),
			formatFloat(as.InitialPrice),
			formatFloat(as.Drift),
			formatFloat(as.Volatility),
			"", "", "",
		}
		if pos, ok := positions[as.Ticker]; ok {
			row[6] = pos.Target.StringFixed(2)
			row[7] = pos.Quantity.String()
			row[8] = pos.Cost.StringFixed(2)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func positionsByTicker(plan *allocation.Plan) map[string]allocation.Position {
	out := make(map[string]allocation.Position)
	if plan == nil {
		return out
	}
	for _, p := range plan.Positions {
		out[p.Ticker] = p
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
