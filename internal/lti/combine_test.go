package lti

import (
	"errors"
	"math"
	"testing"
)

func TestSumOfFilters(t *testing.T) {
	al, _ := Alpha(0.01)
	lp, _ := Lowpass(0.05)
	sys, err := Sum(Scale(0.6, al), Scale(0.4, lp))
	if err != nil {
		t.Fatal(err)
	}
	n, m, p := sys.Dims()
	if n != 3 || m != 1 || p != 1 {
		t.Errorf("unexpected dims %d %d %d", n, m, p)
	}
	if g := sys.DCGain().At(0, 0); math.Abs(g-1) > 1e-9 {
		t.Errorf("expected DC gain 1, got %v", g)
	}

	times := []float64{0.001, 0.02, 0.1}
	ha, _ := al.Response(times)
	hl, _ := lp.Response(times)
	hs, _ := sys.Response(times)
	for i := range times {
		want := 0.6*ha[i] + 0.4*hl[i]
		if math.Abs(hs[i]-want) > 1e-9*math.Max(1, math.Abs(want)) {
			t.Errorf("t=%v: expected %v, got %v", times[i], want, hs[i])
		}
	}
}

func TestSeriesOfLowpassIsAlpha(t *testing.T) {
	lp, _ := Lowpass(0.1)
	al, _ := Alpha(0.1)
	sys, err := Series(lp, lp)
	if err != nil {
		t.Fatal(err)
	}

	times := []float64{0, 0.05, 0.1, 0.4}
	want, _ := al.Response(times)
	got, _ := sys.Response(times)
	for i := range times {
		if math.Abs(want[i]-got[i]) > 1e-9 {
			t.Errorf("t=%v: expected %v, got %v", times[i], want[i], got[i])
		}
	}
}

func TestCombineIncompatible(t *testing.T) {
	lp, _ := Lowpass(0.1)
	dlp, _ := lp.Discretize(0.01)
	if _, err := Sum(lp, dlp); !errors.Is(err, ErrIncompatible) {
		t.Errorf("expected ErrIncompatible, got %v", err)
	}
	if _, err := Series(lp, dlp); !errors.Is(err, ErrIncompatible) {
		t.Errorf("expected ErrIncompatible, got %v", err)
	}
}
