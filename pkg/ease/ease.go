package ease

import (
	"math"

	"github.com/charmbracelet/harmonica"
	fe "github.com/fogleman/ease"
)

// Func maps a linear progress ratio in [0,1] to an eased ratio.
type Func func(t float64) float64

// Variant selects which derivation of a base formula is used.
type Variant int

const (
	VariantIn Variant = iota
	VariantOut
	VariantInOut
)

func (v Variant) String() string {
	switch v {
	case VariantIn:
		return "in"
	case VariantInOut:
		return "inOut"
	default:
		return "out"
	}
}

// Pin clamps f so that it returns exactly 0 for t <= 0 and exactly 1 for t >= 1.
func Pin(f Func) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return f(t)
	}
}

// Derive builds the requested variant from an "in" formula.
func Derive(in Func, v Variant) Func {
	switch v {
	case VariantIn:
		return Pin(in)
	case VariantInOut:
		return Pin(func(t float64) float64 {
			if t < 0.5 {
				return in(t*2) / 2
			}
			return 1 - in((1-t)*2)/2
		})
	default:
		return Pin(func(t float64) float64 {
			return 1 - in(1-t)
		})
	}
}

// Linear is the identity ease.
func Linear(t float64) float64 {
	return Pin(fe.Linear)(t)
}

func backIn(overshoot float64) Func {
	if overshoot == 1.70158 {
		return fe.InBack
	}
	return func(t float64) float64 {
		return t * t * ((overshoot+1)*t - overshoot)
	}
}

// elasticIn mirrors a decaying sine that settles on 1.
func elasticIn(amplitude, period float64) Func {
	if amplitude < 1 {
		amplitude = 1
	}
	shift := period / (2 * math.Pi) * math.Asin(1/amplitude)
	out := func(t float64) float64 {
		return 1 + amplitude*math.Pow(2, -10*t)*math.Sin((t-shift)*2*math.Pi/period)
	}
	return func(t float64) float64 {
		return 1 - out(1-t)
	}
}

func stepsIn(n int) Func {
	return func(t float64) float64 {
		return math.Floor(t*float64(n)) / float64(n)
	}
}

const springSamples = 240

// springIn samples a damped harmonic spring released from 0 toward 1 over
// one unit of time and returns the mirrored "in" form of that curve.
func springIn(frequency, damping float64) Func {
	s := harmonica.NewSpring(harmonica.FPS(springSamples), frequency, damping)
	table := make([]float64, springSamples+1)
	pos, vel := 0.0, 0.0
	for i := 1; i <= springSamples; i++ {
		pos, vel = s.Update(pos, vel, 1)
		table[i] = pos
	}
	out := func(t float64) float64 {
		idx := t * springSamples
		i := int(idx)
		if i >= springSamples {
			return table[springSamples]
		}
		frac := idx - float64(i)
		return table[i]*(1-frac) + table[i+1]*frac
	}
	return func(t float64) float64 {
		return 1 - out(1-t)
	}
}
