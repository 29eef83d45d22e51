package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, fps float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 3 + math.Sin(2*math.Pi*freq*float64(i)/fps)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq, fps float64
		n         int
	}{
		{2, 64, 256},
		{0.5, 32, 256},
		{5, 100, 400},
	}
	for _, tt := range tests {
		got, err := DominantFrequency(sine(tt.freq, tt.fps, tt.n), tt.fps)
		if err != nil {
			t.Fatal(err)
		}
		resolution := tt.fps / 512
		if math.Abs(got-tt.freq) > resolution {
			t.Errorf("freq %v: got %v", tt.freq, got)
		}
	}
}

func TestSpectrumShape(t *testing.T) {
	bins, err := Spectrum(sine(4, 64, 128), 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 65 {
		t.Fatalf("expected 65 bins, got %d", len(bins))
	}
	if bins[len(bins)-1].Freq != 32 {
		t.Errorf("last bin should sit at nyquist, got %v", bins[len(bins)-1].Freq)
	}
	peak := 0.0
	for _, b := range bins {
		peak = math.Max(peak, b.Power)
	}
	if bins[0].Power > peak*1e-2 {
		t.Errorf("mean should be removed, dc power %v against peak %v", bins[0].Power, peak)
	}
	if len(Powers(bins)) != len(bins) {
		t.Error("powers length mismatch")
	}
}

func TestConstantSeries(t *testing.T) {
	got, err := DominantFrequency([]float64{5, 5, 5, 5, 5}, 10)
	if err != nil || got != 0 {
		t.Errorf("expected 0, got %v (%v)", got, err)
	}
}

func TestSpectrumErrors(t *testing.T) {
	if _, err := Spectrum([]float64{1}, 10); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, err := Spectrum([]float64{1, 2}, 0); err == nil {
		t.Error("expected an error for a zero rate")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{0, 10, 5, 5})
	want := Summary{Min: 0, Max: 10, Mean: 5, Travel: 15}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
	if Summarize(nil) != (Summary{}) {
		t.Error("empty series should summarize to zero")
	}
}
