package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/ltinorm/internal/l1norm"
)

var (
	ErrNoData        = errors.New("export: nothing to plot")
	ErrUnknownFormat = errors.New("export: unknown image format")
)

// Formats lists the image formats Save accepts, by file extension.
var Formats = []string{"png", "svg", "pdf", "eps", "jpg"}

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var (
	lineColor  = color.RGBA{R: 0x00, G: 0x99, B: 0xcc, A: 0xff}
	lowerColor = color.RGBA{R: 0x22, G: 0xaa, B: 0x55, A: 0xff}
	upperColor = color.RGBA{R: 0xdd, G: 0x44, B: 0x44, A: 0xff}
)

// ResponsePlot draws a sampled impulse response against time.
func ResponsePlot(title string, times, values []float64) (*plot.Plot, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("export: %d times for %d values", len(times), len(values))
	}
	pts := finite(times, values)
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "impulse response"
	stylePlot(p)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)
	p.Add(plotter.NewGrid(), line)
	return p, nil
}

// BoundsPlot draws the lower and upper L1 bounds after each refinement.
func BoundsPlot(title string, history []l1norm.Iteration) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, ErrNoData
	}

	lower := make(plotter.XYs, 0, len(history))
	upper := make(plotter.XYs, 0, len(history))
	for _, it := range history {
		x := float64(it.Index)
		if !math.IsNaN(it.Lower) && !math.IsInf(it.Lower, 0) {
			lower = append(lower, plotter.XY{X: x, Y: it.Lower})
		}
		if !math.IsNaN(it.Upper) && !math.IsInf(it.Upper, 0) {
			upper = append(upper, plotter.XY{X: x, Y: it.Upper})
		}
	}
	if len(lower) == 0 && len(upper) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "refinement"
	p.Y.Label.Text = "L1 bound"
	stylePlot(p)
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"lower", lower, lowerColor},
		{"upper", upper, upperColor},
	} {
		if len(s.pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(s.pts)
		if err != nil {
			return nil, err
		}
		line.Color = s.c
		line.Width = vg.Points(1.5)
		points.Color = s.c
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}
	p.Legend.Top = true
	return p, nil
}

// HankelPlot draws Hankel singular values as bars, largest first.
func HankelPlot(title string, values []float64) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "index"
	p.Y.Label.Text = "singular value"
	stylePlot(p)

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = lineColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	return p, nil
}

// Save writes p to path in the format named by its extension.
func Save(p *plot.Plot, path string) error {
	if _, err := formatOf(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	return p.Save(DefaultWidth, DefaultHeight, path)
}

// Write encodes p in the given format.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func formatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if ext == f {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

func finite(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(8)
	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.X.Padding = vg.Points(6)
	p.Y.Padding = vg.Points(6)
}
