package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	weightsSheet    = "Weights"
	allocationSheet = "Allocation"
	holdoutSheet    = "Holdout"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteXLSX writes a workbook with summary, weights and, when capital was
// split, allocation sheets
func (r *DefaultExcelReporter) WriteXLSX(report *orchestrator.RunReport, path string) error {
	if report == nil || report.Allocation == nil {
		return fmt.Errorf("nothing to write to %s", path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(weightsSheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, report.Allocation, styles); err != nil {
		return err
	}
	if err := r.writeWeightsSheet(fx, report.Allocation, styles); err != nil {
		return err
	}
	if report.Plan != nil {
		if _, err := fx.NewSheet(allocationSheet); err != nil {
			return err
		}
		if err := r.writeAllocationSheet(fx, report, styles); err != nil {
			return err
		}
	}
	if report.Holdout != nil {
		if _, err := fx.NewSheet(holdoutSheet); err != nil {
			return err
		}
		if err := r.writeHoldoutSheet(fx, report, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - Dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	decimalFmt := "0.000000"
	styles.DecimalStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &decimalFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.WarningStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeRow(fx *excelize.File, sheet string, row int, values []interface{}, cellStyles []int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if i < len(cellStyles) && cellStyles[i] != 0 {
			if err := fx.SetCellStyle(sheet, cell, cell, cellStyles[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, a *orchestrator.Allocation, styles ExcelStyles) error {
	if err := r.writeHeader(fx, summarySheet, []string{"Metric", "Value"}, styles); err != nil {
		return err
	}
	fx.SetColWidth(summarySheet, "A", "A", 22)
	fx.SetColWidth(summarySheet, "B", "B", 40)

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Run ID", a.ID, styles.BaseStyle},
		{"Created", a.CreatedAt.Format("2006-01-02 15:04:05"), styles.BaseStyle},
		{"Simulations", a.Simulations, styles.BaseStyle},
		{"Steps", a.Steps, styles.BaseStyle},
		{"Step Size (years)", a.StepSize, styles.DecimalStyle},
		{"Seed", fmt.Sprintf("%d", a.Seed), styles.BaseStyle},
		{"Risk-Free Rate", a.RiskFreeRate, styles.PercentStyle},
		{"Diversification", a.Diversification, styles.DecimalStyle},
		{"Expected Return", a.ExpectedReturn, styles.PercentStyle},
		{"Std Deviation", a.StdDev, styles.PercentStyle},
		{"Sharpe Ratio", a.Sharpe, styles.DecimalStyle},
		{"Objective", a.Objective, styles.DecimalStyle},
		{"Method", a.Method, styles.BaseStyle},
		{"Iterations", a.Iterations, styles.BaseStyle},
		{"Evaluations", a.Evaluations, styles.BaseStyle},
		{"Converged", a.Converged, styles.BaseStyle},
		{"Status", a.Status, styles.BaseStyle},
	}
	for i, row := range rows {
		if err := r.writeRow(fx, summarySheet, i+2, []interface{}{row.label, row.value}, []int{styles.BaseStyle, row.style}); err != nil {
			return err
		}
	}

	if a.Warning != "" {
		row := len(rows) + 2
		if err := r.writeRow(fx, summarySheet, row, []interface{}{"Warning", a.Warning}, []int{styles.WarningStyle, styles.WarningStyle}); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeWeightsSheet(fx *excelize.File, a *orchestrator.Allocation, styles ExcelStyles) error {
	headers := []string{"Ticker", "Weight", "Mean Return", "Last Price", "Drift", "Volatility"}
	if err := r.writeHeader(fx, weightsSheet, headers, styles); err != nil {
		return err
	}
	fx.SetColWidth(weightsSheet, "A", "A", 12)
	fx.SetColWidth(weightsSheet, "B", "F", 14)

	rowStyles := []int{styles.BaseStyle, styles.PercentStyle, styles.PercentStyle, styles.CurrencyStyle, styles.DecimalStyle, styles.DecimalStyle}
	for i, as := range a.Assets {
		values := []interface{}{as.Ticker, as.Weight, as.MeanReturn, as.InitialPrice, as.Drift, as.Volatility}
		if err := r.writeRow(fx, weightsSheet, i+2, values, rowStyles); err != nil {
			return err
		}
	}

	return fx.SetPanes(weightsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (r *DefaultExcelReporter) writeAllocationSheet(fx *excelize.File, report *orchestrator.RunReport, styles ExcelStyles) error {
	headers := []string{"Ticker", "Weight", "Target", "Price", "Quantity", "Cost"}
	if err := r.writeHeader(fx, allocationSheet, headers, styles); err != nil {
		return err
	}
	fx.SetColWidth(allocationSheet, "A", "A", 12)
	fx.SetColWidth(allocationSheet, "B", "F", 16)

	rowStyles := []int{styles.BaseStyle, styles.PercentStyle, styles.CurrencyStyle, styles.CurrencyStyle, styles.BaseStyle, styles.CurrencyStyle}
	row := 2
	for _, p := range report.Plan.Positions {
		target, _ := p.Target.Float64()
		price, _ := p.Price.Float64()
		cost, _ := p.Cost.Float64()
		values := []interface{}{p.Ticker, p.Weight, target, price, p.Quantity.String(), cost}
		if err := r.writeRow(fx, allocationSheet, row, values, rowStyles); err != nil {
			return err
		}
		row++
	}

	capital, _ := report.Plan.Capital.Float64()
	invested, _ := report.Plan.Invested.Float64()
	cash, _ := report.Plan.Cash.Float64()
	row++
	totals := [][]interface{}{
		{"Capital", capital},
		{"Invested", invested},
		{"Cash", cash},
	}
	for _, t := range totals {
		if err := r.writeRow(fx, allocationSheet, row, t, []int{styles.HeaderStyle, styles.CurrencyStyle}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (r *DefaultExcelReporter) writeHoldoutSheet(fx *excelize.File, report *orchestrator.RunReport, styles ExcelStyles) error {
	h := report.Holdout
	if err := r.writeHeader(fx, holdoutSheet, []string{"Ticker", "Weight", "Return"}, styles); err != nil {
		return err
	}
	fx.SetColWidth(holdoutSheet, "A", "A", 16)
	fx.SetColWidth(holdoutSheet, "B", "C", 14)

	row := 2
	for _, as := range h.Assets {
		values := []interface{}{as.Ticker, as.Weight, as.Return}
		if err := r.writeRow(fx, holdoutSheet, row, values, []int{styles.BaseStyle, styles.PercentStyle, styles.PercentStyle}); err != nil {
			return err
		}
		row++
	}

	row++
	totals := []struct {
		label string
		value interface{}
		style int
	}{
		{"Cutoff", h.Cutoff.Format("2006-01-02"), styles.BaseStyle},
		{"Start", h.Start.Format("2006-01-02"), styles.BaseStyle},
		{"End", h.End.Format("2006-01-02"), styles.BaseStyle},
		{"Periods", h.Periods, styles.BaseStyle},
		{"Total Return", h.TotalReturn, styles.PercentStyle},
		{"Std Deviation", h.StdDev, styles.PercentStyle},
		{"Sharpe Ratio", h.Sharpe, styles.DecimalStyle},
		{"Max Drawdown", h.MaxDrawdown, styles.PercentStyle},
	}
	for _, t := range totals {
		if err := r.writeRow(fx, holdoutSheet, row, []interface{}{t.label, t.value}, []int{styles.HeaderStyle, t.style}); err != nil {
			return err
		}
		row++
	}
	return nil
}
