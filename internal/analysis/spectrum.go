package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrTooShort = errors.New("analysis: series needs at least two samples")

// Bin is one frequency of a spectrum.
type Bin struct {
	Freq  float64
	Power float64
}

// Spectrum returns the one-sided power spectrum of series sampled at fps.
// The mean is removed and a Hann window applied; the series is zero padded
// to a power of two.
func Spectrum(series []float64, fps float64) ([]Bin, error) {
	if len(series) < 2 {
		return nil, ErrTooShort
	}
	if fps <= 0 {
		return nil, errors.New("analysis: sample rate must be positive")
	}

	n := 1
	for n < len(series) {
		n *= 2
	}
	data := make([]float64, len(series))
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))
	for i, v := range series {
		data[i] = v - mean
	}
	window.Apply(data, window.Hann)

	padded := make([]float64, n)
	copy(padded, data)
	coeffs := fft.FFTReal(padded)

	bins := make([]Bin, n/2+1)
	for k := range bins {
		mag := cmplx.Abs(coeffs[k])
		bins[k] = Bin{
			Freq:  float64(k) * fps / float64(n),
			Power: mag * mag / float64(n),
		}
	}
	return bins, nil
}

// DominantFrequency is the frequency of the strongest bin above zero. A
// constant series reports 0.
func DominantFrequency(series []float64, fps float64) (float64, error) {
	bins, err := Spectrum(series, fps)
	if err != nil {
		return 0, err
	}
	best, power := 0.0, 0.0
	for _, b := range bins[1:] {
		if b.Power > power {
			best, power = b.Freq, b.Power
		}
	}
	if power < 1e-12 {
		return 0, nil
	}
	return best, nil
}

// Powers extracts the power column of bins.
func Powers(bins []Bin) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = b.Power
	}
	return out
}

type Summary struct {
	Min, Max, Mean float64
	// Travel is the summed absolute change between samples.
	Travel float64
}

func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for i, v := range series {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
		if i > 0 {
			s.Travel += math.Abs(v - series[i-1])
		}
	}
	s.Mean /= float64(len(series))
	return s
}
