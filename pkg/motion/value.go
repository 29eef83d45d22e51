package motion

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	numberRe    = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	unitValueRe = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*([a-zA-Z%]*)\s*$`)
)

// relOp is the operator of a relative value such as "+=10".
type relOp byte

const (
	relNone relOp = 0
	relAdd  relOp = '+'
	relSub  relOp = '-'
	relMul  relOp = '*'
	relDiv  relOp = '/'
)

func splitRelative(s string) (relOp, string) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[1] == '=' && strings.IndexByte("+-*/", s[0]) >= 0 {
		return relOp(s[0]), strings.TrimSpace(s[2:])
	}
	return relNone, s
}

func (op relOp) apply(base, v float64) float64 {
	switch op {
	case relAdd:
		return base + v
	case relSub:
		return base - v
	case relMul:
		return base * v
	case relDiv:
		if v == 0 {
			return base
		}
		return base / v
	}
	return v
}

// parseUnitValue splits "12.5px" into 12.5 and "px".
func parseUnitValue(s string) (float64, string, bool) {
	m := unitValueRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return v, m[2], true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// numeric reads v as a number, optionally with a unit.
func numeric(v any) (float64, string, bool) {
	if f, ok := toFloat(v); ok {
		return f, "", true
	}
	if s, ok := v.(string); ok {
		return parseUnitValue(s)
	}
	return 0, "", false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// resolveRelative turns a relative spec into an absolute value against
// base. Non-relative specs are returned unchanged.
func resolveRelative(spec, base any) any {
	s, ok := spec.(string)
	if !ok {
		return spec
	}
	op, rest := splitRelative(s)
	if op == relNone {
		return spec
	}
	v, unit, ok := parseUnitValue(rest)
	if !ok {
		return spec
	}
	b, baseUnit, _ := numeric(base)
	if unit == "" {
		unit = baseUnit
	}
	r := op.apply(b, v)
	if unit == "" {
		return r
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + unit
}

func parseColor(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		return c, err == nil
	}
	lower := strings.ToLower(s)
	if !strings.HasSuffix(lower, ")") {
		return colorful.Color{}, false
	}
	var body string
	switch {
	case strings.HasPrefix(lower, "rgb("):
		body = lower[4 : len(lower)-1]
	case strings.HasPrefix(lower, "rgba("):
		body = lower[5 : len(lower)-1]
	default:
		return colorful.Color{}, false
	}
	fields := strings.Split(body, ",")
	if len(fields) < 3 {
		return colorful.Color{}, false
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return colorful.Color{}, false
		}
		ch[i] = v / 255
	}
	return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

type numberFormat struct {
	scale float64
}

func (f numberFormat) format(v float64) string {
	if f.scale > 0 {
		v = math.Round(v*f.scale) / f.scale
	}
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// template splits s into literal parts around its numbers.
func template(s string) ([]string, []float64) {
	idx := numberRe.FindAllStringIndex(s, -1)
	parts := make([]string, 0, len(idx)+1)
	nums := make([]float64, 0, len(idx))
	last := 0
	for _, loc := range idx {
		v, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		parts = append(parts, s[last:loc[0]])
		nums = append(nums, v)
		last = loc[1]
	}
	parts = append(parts, s[last:])
	return parts, nums
}
