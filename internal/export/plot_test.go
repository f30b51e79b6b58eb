package export

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ltinorm/internal/l1norm"
)

func TestResponsePlotSVG(t *testing.T) {
	times := []float64{0, 0.1, 0.2, 0.3}
	values := []float64{1, 0.5, math.NaN(), 0.125}

	p, err := ResponsePlot("lowpass", times, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(p, &buf, "svg"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("expected svg output")
	}
}

func TestResponsePlotErrors(t *testing.T) {
	if _, err := ResponsePlot("x", []float64{0}, []float64{1, 2}); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := ResponsePlot("x", []float64{0}, []float64{math.Inf(1)}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestBoundsPlot(t *testing.T) {
	if _, err := BoundsPlot("empty", nil); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	history := []l1norm.Iteration{
		{Index: 1, Lower: 0.9, Upper: 1.3},
		{Index: 2, Lower: 0.95, Upper: 1.1},
		{Index: 3, Lower: 0.99, Upper: 1.01},
	}
	p, err := BoundsPlot("bounds", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(p, &buf, "png"); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected png signature")
	}
}

func TestSavePNG(t *testing.T) {
	p, err := HankelPlot("hankel", []float64{0.5, 0.1, 0.01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "plots", "hankel.png")
	if err := Save(p, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty png")
	}
}

func TestSaveUnknownFormat(t *testing.T) {
	p, err := HankelPlot("hankel", []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = Save(p, filepath.Join(t.TempDir(), "hankel.bmp"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
