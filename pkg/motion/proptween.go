package motion

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// PropTween interpolates one property of one target between a start and an
// end value. The render strategy is chosen once, from the value forms and
// the sink, when the owning tween initialises.
type PropTween struct {
	Target   any
	Property string
	Start    float64
	End      float64
	Unit     string
	Modifier Modifier

	sink   Sink
	fmt    numberFormat
	render func(pt *PropTween, ratio float64)

	startText, endText string
	parts              []string
	from, delta        []float64
	startColor         colorful.Color
	endColor           colorful.Color
}

// Render writes the value at ratio. A ratio of exactly 1 writes the end
// value verbatim and 0 writes the start.
func (pt *PropTween) Render(ratio float64) {
	pt.render(pt, ratio)
}

func (pt *PropTween) Sink() Sink { return pt.sink }

func (pt *PropTween) value(ratio float64) float64 {
	var v float64
	switch ratio {
	case 1:
		v = pt.End
	case 0:
		v = pt.Start
	default:
		v = pt.Start + (pt.End-pt.Start)*ratio
	}
	if pt.Modifier != nil {
		v = pt.Modifier(v)
	}
	return v
}

func renderNumber(pt *PropTween, ratio float64) {
	pt.sink.WriteFloat(pt.value(ratio))
}

func renderUnit(pt *PropTween, ratio float64) {
	pt.sink.WriteString(pt.fmt.format(pt.value(ratio)) + pt.Unit)
}

func renderColor(pt *PropTween, ratio float64) {
	switch ratio {
	case 1:
		pt.sink.WriteString(pt.endText)
	case 0:
		pt.sink.WriteString(pt.startText)
	default:
		pt.sink.WriteString(pt.startColor.BlendRgb(pt.endColor, ratio).Clamped().Hex())
	}
}

func renderComplex(pt *PropTween, ratio float64) {
	switch ratio {
	case 1:
		pt.sink.WriteString(pt.endText)
		return
	case 0:
		pt.sink.WriteString(pt.startText)
		return
	}
	var b strings.Builder
	for i, v := range pt.from {
		b.WriteString(pt.parts[i])
		b.WriteString(pt.fmt.format(v + pt.delta[i]*ratio))
	}
	b.WriteString(pt.parts[len(pt.parts)-1])
	pt.sink.WriteString(b.String())
}

func renderDiscrete(pt *PropTween, ratio float64) {
	if ratio >= 1 {
		pt.sink.WriteString(pt.endText)
		return
	}
	pt.sink.WriteString(pt.startText)
}

// newPropTween builds the interpolator for one property. start is an
// absolute value; end may be relative to it. The returned error is a
// diagnostic: the interpolator is still usable.
func newPropTween(target any, prop string, sink Sink, start, end any, mod Modifier, nf numberFormat) (*PropTween, error) {
	pt := &PropTween{Target: target, Property: prop, Modifier: mod, sink: sink, fmt: nf}

	var diag error
	endOp, endNum, endUnit, endIsNum := relNone, 0.0, "", false
	if f, ok := toFloat(end); ok {
		endNum, endIsNum = f, true
	} else if s, ok := end.(string); ok {
		op, rest := splitRelative(s)
		if v, unit, ok := parseUnitValue(rest); ok {
			endOp, endNum, endUnit, endIsNum = op, v, unit, true
		}
	}

	if !endIsNum && sink.Numeric() {
		diag = fmt.Errorf("%w: %v for %q, using 0", ErrBadValue, end, prop)
		endIsNum = true
	}

	if endIsNum {
		s, startUnit, _ := numeric(start)
		pt.Start = s
		pt.End = endOp.apply(s, endNum)
		pt.Unit = endUnit
		if pt.Unit == "" {
			pt.Unit = startUnit
		}
		if sink.Numeric() {
			pt.render = renderNumber
		} else {
			pt.render = renderUnit
		}
		return pt, diag
	}

	pt.startText = stringify(start)
	pt.endText = stringify(end)

	if ec, ok := parseColor(pt.endText); ok {
		if sc, ok := parseColor(pt.startText); ok {
			pt.startColor, pt.endColor = sc, ec
			pt.render = renderColor
			return pt, nil
		}
	}

	parts, to := template(pt.endText)
	_, from := template(pt.startText)
	if len(to) > 0 && len(to) == len(from) {
		pt.parts = parts
		pt.from = from
		pt.delta = make([]float64, len(to))
		for i := range to {
			pt.delta[i] = to[i] - from[i]
		}
		pt.render = renderComplex
		return pt, nil
	}

	pt.render = renderDiscrete
	return pt, nil
}
