// Package export renders sampled runs and ease curves as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/tempo/internal/storage"
	"github.com/san-kum/tempo/pkg/ease"
)

// Palette colors series in order.
var Palette = []string{"#00e5ff", "#ffd700", "#ff6b6b", "#5fd068", "#ff9ff3", "#ff8800"}

type point struct{ X, Y float64 }

// frame maps data bounds onto a width by height image with 10% padding.
type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func newFrame(pts [][]point, width, height int) frame {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, series := range pts {
		for _, p := range series {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	return frame{minX: minX, minY: minY, rangeX: rangeX * 1.2, rangeY: rangeY * 1.2, width: width, height: height}
}

func (f frame) project(p point) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * float64(f.width)
	y := float64(f.height) - (p.Y-f.minY)/f.rangeY*float64(f.height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, f frame, pts []point, stroke string) {
	sb.WriteString(`<path fill="none" stroke="` + stroke + `" stroke-width="1.5" d="`)
	for i, p := range pts {
		x, y := f.project(p)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// RunToSVG draws the named channels of a run against time, one path per
// channel, with a legend.
func RunToSVG(run *storage.Run, channels []string, width, height int) (string, error) {
	if len(channels) == 0 {
		return "", fmt.Errorf("export: no channels")
	}
	all := make([][]point, 0, len(channels))
	for _, ch := range channels {
		series, err := run.Series(ch)
		if err != nil {
			return "", err
		}
		if len(series) < 2 {
			return "", fmt.Errorf("export: channel %s needs at least two samples", ch)
		}
		pts := make([]point, len(series))
		for i, v := range series {
			pts[i] = point{run.Times[i], v}
		}
		all = append(all, pts)
	}

	f := newFrame(all, width, height)
	var sb strings.Builder
	header(&sb, width, height)
	for i, pts := range all {
		color := Palette[i%len(Palette)]
		path(&sb, f, pts, color)
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*i, color, channels[i])
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// PathToSVG draws the trajectory (xs[i], ys[i]). Screen y grows
// downwards, so the path is flipped to read the way the scene moves.
func PathToSVG(xs, ys []float64, width, height int, stroke string) (string, error) {
	n := min(len(xs), len(ys))
	if n < 2 {
		return "", fmt.Errorf("export: a path needs at least two points")
	}
	pts := make([]point, n)
	for i := range pts {
		pts[i] = point{xs[i], -ys[i]}
	}

	f := newFrame([][]point{pts}, width, height)
	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, f, pts, stroke)
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// EaseToSVG plots an ease over [0, 1] with guides at 0 and 1.
func EaseToSVG(fn ease.Func, samples, width, height int) string {
	if samples < 2 {
		samples = 2
	}
	pts := make([]point, samples)
	for i := range pts {
		x := float64(i) / float64(samples-1)
		pts[i] = point{x, fn(x)}
	}
	guides := []point{{0, 0}, {1, 1}}

	f := newFrame([][]point{pts, guides}, width, height)
	var sb strings.Builder
	header(&sb, width, height)
	for _, y := range []float64{0, 1} {
		x0, py := f.project(point{0, y})
		x1, _ := f.project(point{1, y})
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, x0, py, x1, py)
	}
	path(&sb, f, pts, Palette[0])
	sb.WriteString("</svg>\n")
	return sb.String()
}
