package viz

import (
	"math"
	"strings"

	"github.com/san-kum/tempo/pkg/ease"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a grid of braille cells addressed in dots, two per cell
// horizontally and four vertically.
type Canvas struct {
	Width, Height int
	cells         [][]rune
}

// NewCanvas creates a canvas of w by h cells.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots is the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y); y grows downwards. Dots outside the canvas
// are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.cells[y/4][x/2]&dotBits[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for j := range row {
			row[j] = brailleBlank
		}
	}
}

// Line draws a line between two dots with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Polyline connects points given in data space, scaled so the bounds
// [x0, x1] by [y0, y1] fill the canvas.
func (c *Canvas) Polyline(xs, ys []float64, x0, x1, y0, y1 float64) {
	w, h := c.Dots()
	if x1 == x0 {
		x1 = x0 + 1
	}
	if y1 == y0 {
		y1 = y0 + 1
	}
	px := func(x float64) int { return int(math.Round((x - x0) / (x1 - x0) * float64(w-1))) }
	py := func(y float64) int { return int(math.Round((y1 - y) / (y1 - y0) * float64(h-1))) }

	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		if i == 0 {
			c.Set(px(xs[0]), py(ys[0]))
			continue
		}
		c.Line(px(xs[i-1]), py(ys[i-1]), px(xs[i]), py(ys[i]))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// EaseCurve plots f over [0, 1] on a w by h cell canvas. The vertical range
// grows to include overshoot.
func EaseCurve(f ease.Func, w, h int) string {
	c := NewCanvas(w, h)
	dw, _ := c.Dots()
	xs := make([]float64, dw)
	ys := make([]float64, dw)
	lo, hi := 0.0, 1.0
	for i := range xs {
		x := float64(i) / float64(dw-1)
		xs[i], ys[i] = x, f(x)
		lo = math.Min(lo, ys[i])
		hi = math.Max(hi, ys[i])
	}
	c.Polyline(xs, ys, 0, 1, lo, hi)
	return c.String()
}

// PathPlot draws the trajectory through the points (xs[i], ys[i]), scaled
// to fit a w by h cell canvas. Screen y grows downwards, as in most scene
// coordinate systems.
func PathPlot(xs, ys []float64, w, h int) string {
	c := NewCanvas(w, h)
	n := min(len(xs), len(ys))
	if n == 0 {
		return c.String()
	}
	x0, x1 := bounds(xs[:n])
	y0, y1 := bounds(ys[:n])
	c.Polyline(xs[:n], ys[:n], x0, x1, y1, y0)
	return c.String()
}

func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
