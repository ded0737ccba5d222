package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/ducminhle1904/mc-portfolio/pkg/orchestrator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputReport prints the run summary, the weights table and the capital plan
func (r *DefaultConsoleReporter) OutputReport(w io.Writer, report *orchestrator.RunReport) {
	if report == nil || report.Allocation == nil {
		return
	}
	a := report.Allocation

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "📊 PORTFOLIO OPTIMIZATION RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("RUN SUMMARY")
	summary.SetStyle(table.StyleRounded)
	summary.AppendRows([]table.Row{
		{"🆔 Run", a.ID},
		{"🎲 Simulations", a.Simulations},
		{"📏 Steps", fmt.Sprintf("%d (step %.5f y)", a.Steps, a.StepSize)},
		{"🌱 Seed", a.Seed},
	})
	summary.AppendSeparator()
	summary.AppendRows([]table.Row{
		{"📈 Expected Return", fmt.Sprintf("%.2f%%", a.ExpectedReturn*100)},
		{"📉 Std Deviation", fmt.Sprintf("%.2f%%", a.StdDev*100)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.4f", a.Sharpe)},
		{"🏦 Risk-Free Rate", fmt.Sprintf("%.2f%%", a.RiskFreeRate*100)},
	})
	summary.AppendSeparator()
	summary.AppendRows([]table.Row{
		{"🔧 Method", a.Method},
		{"🔄 Iterations", fmt.Sprintf("%d (%d evals)", a.Iterations, a.Evaluations)},
		{"✅ Converged", convergedString(a)},
		{"⏱️ Duration", a.Duration.String()},
	})
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})
	summary.Render()
	fmt.Fprintln(w)

	weights := table.NewWriter()
	weights.SetOutputMirror(w)
	weights.SetTitle("OPTIMAL WEIGHTS")
	weights.SetStyle(table.StyleRounded)
	weights.AppendHeader(table.Row{"Ticker", "Weight", "Mean Return", "Last Price", "Drift", "Volatility"})
	for _, as := range a.Assets {
		weights.AppendRow(table.Row{
			as.Ticker,
			fmt.Sprintf("%.2f%%", as.Weight*100),
			fmt.Sprintf("%.2f%%", as.MeanReturn*100),
			fmt.Sprintf("%.2f", as.InitialPrice),
			fmt.Sprintf("%.6f", as.Drift),
			fmt.Sprintf("%.6f", as.Volatility),
		})
	}
	weights.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	weights.Render()

	if report.Plan != nil {
		fmt.Fprintln(w)
		plan := table.NewWriter()
		plan.SetOutputMirror(w)
		plan.SetTitle("CAPITAL ALLOCATION")
		plan.SetStyle(table.StyleRounded)
		plan.AppendHeader(table.Row{"Ticker", "Target", "Price", "Quantity", "Cost"})
		for _, p := range report.Plan.Positions {
			plan.AppendRow(table.Row{p.Ticker, "$" + p.Target.StringFixed(2), p.Price.String(), p.Quantity.String(), "$" + p.Cost.StringFixed(2)})
		}
		plan.AppendFooter(table.Row{"💰 Capital", "$" + report.Plan.Capital.StringFixed(2), "", "💵 Cash", "$" + report.Plan.Cash.StringFixed(2)})
		plan.Render()
	}

	if h := report.Holdout; h != nil {
		fmt.Fprintln(w)
		holdout := table.NewWriter()
		holdout.SetOutputMirror(w)
		holdout.SetTitle(fmt.Sprintf("HOLDOUT %s → %s", h.Start.Format("2006-01-02"), h.End.Format("2006-01-02")))
		holdout.SetStyle(table.StyleRounded)
		holdout.AppendHeader(table.Row{"Ticker", "Weight", "Return"})
		for _, as := range h.Assets {
			holdout.AppendRow(table.Row{as.Ticker, fmt.Sprintf("%.2f%%", as.Weight*100), fmt.Sprintf("%.2f%%", as.Return*100)})
		}
		holdout.AppendFooter(table.Row{"Portfolio", fmt.Sprintf("Sharpe %.4f", h.Sharpe), fmt.Sprintf("%.2f%%", h.TotalReturn*100)})
		holdout.Render()
		fmt.Fprintf(w, "📉 Max drawdown %.2f%% over %d periods\n", h.MaxDrawdown*100, h.Periods)
	}

	if a.Warning != "" {
		fmt.Fprintf(w, "\n⚠️  %s\n", a.Warning)
	}
}

func convergedString(a *orchestrator.Allocation) string {
	if a.Converged {
		return "yes (" + a.Status + ")"
	}
	return "⚠️ no (" + a.Status + ")"
}
