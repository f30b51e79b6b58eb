package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ltinorm/internal/analysis"
	"github.com/san-kum/ltinorm/internal/l1norm"
	"github.com/san-kum/ltinorm/internal/storage"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#00ffff", 0, 255, 255},
		{"#ff00ff", 255, 0, 255},
		{"#102030", 16, 32, 48},
		{"bogus", 255, 255, 255},
	}
	for _, tt := range tests {
		r, g, b := parseHex(tt.in)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHex(%q) = %d,%d,%d", tt.in, r, g, b)
		}
	}
	if got := hexColor(16, 32, 48); got != "#102030" {
		t.Errorf("hexColor = %s", got)
	}
	if got := hexColor(-5, 300, 0); got != "#00ff00" {
		t.Errorf("hexColor clamp = %s", got)
	}
}

func TestSparklineWidth(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := lipgloss.Width(Sparkline(values, 5)); got != 5 {
		t.Errorf("expected width 5, got %d", got)
	}
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
}

func TestProgressBarClamps(t *testing.T) {
	for _, f := range []float64{-1, 0.5, 2} {
		if got := lipgloss.Width(ProgressBar(f, 20)); got != 20 {
			t.Errorf("fraction %v: width %d", f, got)
		}
	}
}

func TestRenderReport(t *testing.T) {
	r := &analysis.Report{
		Name:        "lowpass",
		Description: "first-order lowpass",
		Analog:      true,
		States:      1,
		Inputs:      1,
		Outputs:     1,
		Eigenvalues: []analysis.Eigenvalue{{Re: -10}},
		Stable:      true,
		DCGain:      [][]float64{{1}},
		StateNorms:  []float64{0.2236},
		Hankel:      []float64{0.5},
		Balanced:    []float64{0.5},
		H2:          2.236,
		L1:          &l1norm.Result{Estimate: 1, HalfWidth: 1e-9, Lower: 1, Upper: 1, Converged: true},
		Step:        0.01,
		Response:    []float64{10, 9, 8, 7, 6, 5},
		Metrics:     map[string]float64{"peak": 10, "abs_integral": 0.45},
	}

	out := RenderReport(r, 60)
	for _, want := range []string{"system", "energy", "hankel", "L1 norm", "impulse response", "converged", "crossings"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderReportUnstable(t *testing.T) {
	r := &analysis.Report{Name: "growing", Analog: true, Eigenvalues: []analysis.Eigenvalue{{Re: 0.5}}, Hankel: []float64{1}}
	out := RenderReport(r, 0)
	if !strings.Contains(out, "unstable") {
		t.Error("expected unstable marker")
	}
	if strings.Contains(out, "L1 norm") {
		t.Error("L1 panel should be omitted")
	}
}

func TestRenderRuns(t *testing.T) {
	if !strings.Contains(RenderRuns(nil), "no saved reports") {
		t.Error("expected empty listing")
	}
	runs := []storage.RunMetadata{{ID: "alpha_1", Report: analysis.Report{Analog: true, States: 2, H2: 1.5}}}
	if !strings.Contains(RenderRuns(runs), "alpha_1") {
		t.Error("listing missing run id")
	}
}
