package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/tempo/internal/storage"
	"github.com/san-kum/tempo/pkg/ease"
)

func TestRunToSVG(t *testing.T) {
	run := &storage.Run{
		Channels: []string{"a.x", "a.y"},
		Times:    []float64{0, 0.5, 1},
		Values:   [][]float64{{0, 1}, {5, 2}, {10, 3}},
	}
	svg, err := RunToSVG(run, []string{"a.x", "a.y"}, 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(svg, ">a.y</text>") {
		t.Error("legend is missing a.y")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("svg is not closed")
	}

	if _, err := RunToSVG(run, []string{"b.z"}, 200, 100); err == nil {
		t.Error("expected an error for an unknown channel")
	}
	if _, err := RunToSVG(run, nil, 200, 100); err == nil {
		t.Error("expected an error without channels")
	}
}

func TestFrameProjection(t *testing.T) {
	f := newFrame([][]point{{{0, 0}, {10, 10}}}, 120, 120)
	x, y := f.project(point{0, 0})
	if math.Abs(x-10) > 1e-9 || math.Abs(y-110) > 1e-9 {
		t.Errorf("origin projected to (%v, %v), want (10, 110)", x, y)
	}
	x, y = f.project(point{10, 10})
	if math.Abs(x-110) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Errorf("corner projected to (%v, %v), want (110, 10)", x, y)
	}
}

func TestPathToSVG(t *testing.T) {
	if _, err := PathToSVG([]float64{1}, []float64{1}, 100, 100, "#fff"); err == nil {
		t.Error("expected an error for a single point")
	}
	svg, err := PathToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 100, 100, "#ffffff")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, `stroke="#ffffff"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path:\n%s", svg)
	}
}

func TestEaseToSVG(t *testing.T) {
	svg := EaseToSVG(ease.Get("back.out"), 50, 200, 200)
	if strings.Count(svg, "<line") != 2 {
		t.Error("expected guides at 0 and 1")
	}
	if strings.Count(svg, " L") != 49 {
		t.Errorf("expected 49 segments, got %d", strings.Count(svg, " L"))
	}
}
