package motion

import "math"

// Config holds the engine wide constants. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Precision is the quantum every time value is rounded to, which keeps
	// cycle boundaries from flickering between two iterations.
	Precision float64
	// Tiny is the nudge used to remember on which side of zero a playhead
	// last rendered.
	Tiny float64
	// InfiniteDuration stands in for the total duration of animations that
	// repeat forever.
	InfiniteDuration float64
	// DefaultDuration applies to tweens created without a duration.
	DefaultDuration float64
	// DefaultEase applies to tweens created without an ease.
	DefaultEase string
	// AutoSleep is the number of frames between idle checks; the ticker is
	// put to sleep when nothing is playing. Zero disables sleeping.
	AutoSleep int
	// StringPrecision rounds numbers written into string values.
	StringPrecision float64
	// Lazy defers the first write of freshly initialised tweens to the end
	// of the render pass.
	Lazy bool
}

func DefaultConfig() Config {
	return Config{
		Precision:        1e-7,
		Tiny:             1e-8,
		InfiniteDuration: 1e10,
		DefaultDuration:  0.5,
		DefaultEase:      "power1.out",
		AutoSleep:        120,
		StringPrecision:  1e-4,
		Lazy:             true,
	}
}

func quantum(step float64) float64 {
	if step <= 0 {
		return 0
	}
	return math.Round(1 / step)
}

func roundTo(v, scale float64) float64 {
	if scale == 0 {
		return v
	}
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
