package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ltinorm/internal/analysis"
	"github.com/san-kum/ltinorm/internal/l1norm"
	"github.com/san-kum/ltinorm/internal/storage"
)

const (
	DefaultWidth = 72
	plotHeight   = 10
)

// RenderReport lays out a report as stacked panels.
func RenderReport(r *analysis.Report, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder

	b.WriteString(GradientText(r.Name, "#00ffff", "#ff00ff"))
	if r.Description != "" {
		b.WriteString("  " + Subtle.Render(r.Description))
	}
	b.WriteString("\n\n")

	b.WriteString(Box("system", systemPanel(r), width) + "\n")
	b.WriteString(Box("energy", energyPanel(r), width) + "\n")
	b.WriteString(Box("hankel", hankelPanel(r, width-4), width) + "\n")
	if r.L1 != nil || r.L1Err != "" {
		b.WriteString(Box("L1 norm", l1Panel(r), width) + "\n")
	}
	if len(r.Response) > 1 {
		content := PlotResponse(r.Response, r.Step, width-8)
		if len(r.Metrics) > 0 {
			content = responseMetrics(r.Metrics) + "\n\n" + content
		}
		b.WriteString(Box("impulse response", content, width) + "\n")
	}
	return b.String()
}

func systemPanel(r *analysis.Report) string {
	kind := "analog"
	if !r.Analog {
		kind = "discrete"
	}
	stable := Good.Render("stable")
	if !r.Stable {
		stable = Bad.Render("unstable")
	}

	eig := make([]string, len(r.Eigenvalues))
	for i, v := range r.Eigenvalues {
		eig[i] = formatComplex(v.Re, v.Im)
	}

	lines := []string{
		metric("kind", kind) + "   " + stable,
		metric("states", fmt.Sprint(r.States)) + "   " +
			metric("inputs", fmt.Sprint(r.Inputs)) + "   " +
			metric("outputs", fmt.Sprint(r.Outputs)),
		metric("eigenvalues", strings.Join(eig, ", ")),
		metric("dc gain", formatRows(r.DCGain)),
	}
	return strings.Join(lines, "\n")
}

func energyPanel(r *analysis.Report) string {
	if r.StateNorms == nil {
		return Subtle.Render("energy norms are undefined for unstable systems")
	}
	lines := []string{
		metric("H2", fmt.Sprintf("%.6g", r.H2)),
		metric("state norms", formatSlice(r.StateNorms)),
	}
	if r.SpectralH2 > 0 {
		lines = append(lines, metric("H2 (sampled)", fmt.Sprintf("%.6g", r.SpectralH2)))
	}
	return strings.Join(lines, "\n")
}

func hankelPanel(r *analysis.Report, width int) string {
	lines := []string{metric("values", formatSlice(r.Hankel))}
	if len(r.Hankel) > 1 {
		lines = append(lines, MetricLabel.Render("decay ")+Sparkline(logScale(r.Hankel), min(width-6, 4*len(r.Hankel))))
	}
	if r.BalanceErr != "" {
		lines = append(lines, Warn.Render("not balanced: ")+Subtle.Render(r.BalanceErr))
	} else if r.Balanced != nil {
		lines = append(lines, metric("balanced S", formatSlice(r.Balanced)))
	}
	return strings.Join(lines, "\n")
}

func l1Panel(r *analysis.Report) string {
	if r.L1 == nil {
		return Bad.Render(r.L1Err)
	}
	return RenderL1(*r.L1)
}

// RenderL1 summarizes an L1 bound.
func RenderL1(res l1norm.Result) string {
	status := Good.Render("converged")
	if !res.Converged {
		status = Warn.Render("sample ceiling reached")
	}
	lines := []string{
		metric("estimate", fmt.Sprintf("%.10g", res.Estimate)) + "  " +
			Subtle.Render(fmt.Sprintf("± %.2e (relative)", res.HalfWidth)),
		metric("bounds", fmt.Sprintf("[%.10g, %.10g]", res.Lower, res.Upper)),
		metric("refinements", fmt.Sprint(res.Iterations)) + "   " +
			metric("samples", fmt.Sprint(res.Samples)) + "   " +
			metric("horizon", fmt.Sprintf("%.4g", res.Horizon)),
		status,
	}
	return strings.Join(lines, "\n")
}

// PlotResponse draws sampled values with asciigraph.
func PlotResponse(y []float64, step float64, width int) string {
	clean := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Subtle.Render("no finite samples")
	}
	return asciigraph.Plot(clean,
		asciigraph.Height(plotHeight),
		asciigraph.Width(max(width, 10)),
		asciigraph.Precision(3),
		asciigraph.Caption(fmt.Sprintf("%d samples, step %.3g", len(y), step)),
	)
}

// RenderMatrix prints a matrix with aligned columns.
func RenderMatrix(title string, rows [][]float64) string {
	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%13.6e", v)
		}
		b.WriteString("  " + MetricValue.Render(strings.Join(cells, " ")) + "\n")
	}
	return b.String()
}

// RenderValues prints a labelled list of numbers, one per line.
func RenderValues(title string, values []float64) string {
	var b strings.Builder
	b.WriteString(Title.Render(title) + "\n")
	for i, v := range values {
		b.WriteString(fmt.Sprintf("  %s %s\n", MetricLabel.Render(fmt.Sprintf("[%d]", i)), MetricValue.Render(fmt.Sprintf("%.10g", v))))
	}
	return b.String()
}

// RenderRuns lists stored reports.
func RenderRuns(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no saved reports") + "\n"
	}
	var b strings.Builder
	header := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%-36s %-9s %6s %12s %14s", "ID", "KIND", "STATES", "H2", "L1"))
	b.WriteString(header + "\n")
	for _, run := range runs {
		kind := "analog"
		if !run.Analog {
			kind = "discrete"
		}
		l1 := "-"
		if run.L1 != nil {
			l1 = fmt.Sprintf("%.8g", run.L1.Estimate)
		}
		b.WriteString(fmt.Sprintf("%-36s %-9s %6d %12.6g %14s\n", run.ID, kind, run.States, run.H2, l1))
	}
	return b.String()
}

// RenderPresets lists named systems with their descriptions.
func RenderPresets(names []string, describe func(string) string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s %s\n", MetricValue.Render(fmt.Sprintf("%-16s", name)), Subtle.Render(describe(name))))
	}
	return b.String()
}

func responseMetrics(m map[string]float64) string {
	return metric("peak", fmt.Sprintf("%.4g", m["peak"])) + "   " +
		metric("∫|h|", fmt.Sprintf("%.6g", m["abs_integral"])) + "   " +
		metric("settles", fmt.Sprintf("%.4g", m["settling_time"])) + "   " +
		metric("crossings", fmt.Sprintf("%.0f", m["zero_crossings"]))
}

func metric(label, value string) string {
	return MetricLabel.Render(label+": ") + MetricValue.Render(value)
}

func formatSlice(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.6g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatRows(rows [][]float64) string {
	if len(rows) == 1 && len(rows[0]) == 1 {
		return fmt.Sprintf("%.6g", rows[0][0])
	}
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = formatSlice(row)
	}
	return strings.Join(parts, " ")
}

func formatComplex(re, im float64) string {
	if im == 0 {
		return fmt.Sprintf("%.4g", re)
	}
	return fmt.Sprintf("%.4g%+.4gi", re, im)
}

// logScale maps positive values to log10 so a few dominant entries do not
// flatten the rest of a sparkline.
func logScale(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log10(math.Max(v, 1e-300))
	}
	return out
}
