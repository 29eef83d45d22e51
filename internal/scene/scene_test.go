package scene

import (
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/tempo/internal/config"
	"github.com/san-kum/tempo/pkg/motion"
)

func newEngine(t *testing.T) *motion.Engine {
	t.Helper()
	cfg := motion.DefaultConfig()
	cfg.DefaultEase = "none"
	e := motion.New(cfg, motion.WithLogger(log.New(io.Discard, "", 0)))
	t.Cleanup(e.Close)
	return e
}

func mustBuild(t *testing.T, src string) *Stage {
	t.Helper()
	sc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	st, err := Build(newEngine(t), sc, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return st
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(`name: demo
objects:
  box: {x: 1, fill: "#ff0000"}
timeline:
  repeat: 2
  labels: {mid: 0.5}
  steps:
    - {op: to, target: box, props: {x: 10}, duration: 1, position: "<"}
`))
	if err != nil {
		t.Fatal(err)
	}

	want := TimelineSpec{
		Repeat: 2,
		Labels: map[string]float64{"mid": 0.5},
		Steps: []Step{{
			Op:       OpTo,
			Target:   "box",
			Props:    map[string]any{"x": 10},
			Duration: 1,
			Position: "<",
		}},
	}
	if diff := cmp.Diff(want, sc.Timeline); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
	if sc.Objects["box"]["fill"] != "#ff0000" {
		t.Errorf("unexpected objects %v", sc.Objects)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"unknown op", "objects: {a: {x: 0}}\ntimeline: {steps: [{op: spin, target: a}]}", ErrUnknownOp},
		{"unknown object", "objects: {a: {x: 0}}\ntimeline: {steps: [{op: to, target: b}]}", ErrUnknownObject},
		{"no targets", "objects: {a: {x: 0}}\ntimeline: {steps: [{op: set}]}", ErrNoTargets},
		{"nested", "objects: {a: {x: 0}}\ntimeline: {steps: [{op: group, steps: [{op: to, target: z}]}]}", ErrUnknownObject},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.src))
		if !errors.Is(err, tt.err) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.err, err)
		}
	}
}

func TestBuildAndSeek(t *testing.T) {
	st := mustBuild(t, `name: slide
objects:
  box: {x: 0, width: "10px", fill: "#000000"}
timeline:
  steps:
    - {op: to, target: box, props: {x: 100}, duration: 1, ease: none}
    - {op: to, target: box, props: {width: "+=10px"}, duration: 1, position: "<"}
    - {op: label, label: done}
    - {op: set, target: box, props: {fill: "#ffffff"}}
`)
	box := st.Object("box")
	tl := st.Timeline

	tl.Seek(0.5)
	if x, _ := box.Property("x"); math.Abs(x-50) > 1e-9 {
		t.Errorf("expected x 50, got %v", x)
	}

	if err := tl.SeekLabel("done"); err != nil {
		t.Fatal(err)
	}
	if w, _ := box.Attr("width"); w != "20px" {
		t.Errorf("expected width 20px, got %q", w)
	}
	if f, _ := box.Attr("fill"); f != "#ffffff" {
		t.Errorf("expected white fill, got %q", f)
	}
	if st.Duration() != 1 {
		t.Errorf("expected duration 1, got %v", st.Duration())
	}
}

func TestUndeclaredPropLeavesName(t *testing.T) {
	sc, err := Parse([]byte(`name: rename
objects:
  box: {x: 0}
timeline:
  steps:
    - {op: to, target: box, props: {name: 5, x: 3}, duration: 1}
`))
	if err != nil {
		t.Fatal(err)
	}
	var diags []error
	cfg := motion.DefaultConfig()
	e := motion.New(cfg,
		motion.WithLogger(log.New(io.Discard, "", 0)),
		motion.WithDiagnostics(func(err error) { diags = append(diags, err) }),
	)
	t.Cleanup(e.Close)
	st, err := Build(e, sc, nil)
	if err != nil {
		t.Fatal(err)
	}

	st.Timeline.Seek(1)
	box := st.Object("box")
	if box.Name != "box" {
		t.Errorf("object name overwritten: %q", box.Name)
	}
	if x, _ := box.Property("x"); x != 3 {
		t.Errorf("expected x 3, got %v", x)
	}
	found := false
	for _, err := range diags {
		if errors.Is(err, motion.ErrNoAdapter) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing adapter diagnostic, got %v", diags)
	}
}

func TestCustomEaseAndModifier(t *testing.T) {
	st := mustBuild(t, `objects:
  dial: {v: 0}
eases:
  square: "t * t"
timeline:
  steps:
    - {op: to, target: dial, props: {v: 100}, duration: 1, ease: square.in}
    - {op: to, target: dial, props: {v: "+=0.6"}, duration: 1, ease: none, modifiers: {v: "math.floor(value)"}}
`)
	dial := st.Object("dial")

	st.Timeline.Seek(0.5)
	if v, _ := dial.Property("v"); math.Abs(v-25) > 1e-3 {
		t.Errorf("expected about 25, got %v", v)
	}

	st.Timeline.Seek(1.5)
	if v, _ := dial.Property("v"); v != 100 {
		t.Errorf("expected the modifier to floor to 100, got %v", v)
	}
}

func TestScriptFileEase(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "step.tengo"), []byte("out := t < 0.5 ? 0 : 1"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "scene.yaml")
	src := `objects:
  a: {x: 0}
eases:
  snap: step.tengo
timeline:
  steps:
    - {op: to, target: a, props: {x: 10}, duration: 1, ease: snap.in}
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	st, err := Build(newEngine(t), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	st.Timeline.Seek(0.25)
	if x, _ := st.Object("a").Property("x"); x != 0 {
		t.Errorf("expected 0 before the step, got %v", x)
	}
	st.Timeline.Seek(0.75)
	if x, _ := st.Object("a").Property("x"); x != 10 {
		t.Errorf("expected 10 after the step, got %v", x)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []string{
		"objects: {a: {x: 0}}\neases: {bad: \"t *\"}\ntimeline: {steps: []}",
		"objects: {a: {x: 0}}\ntimeline: {steps: [{op: to, target: a, props: {x: 1}, ease: wobble}]}",
		"objects: {a: {x: 0}}\ntimeline: {steps: [{op: to, target: a, props: {x: 1}, position: \"<abc\"}]}",
		"objects: {a: {x: 0}}\ntimeline: {steps: [{op: to, target: a, props: {x: 1}, modifiers: {x: \"value +\"}}]}",
	}
	for _, src := range tests {
		sc, err := Parse([]byte(src))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if _, err := Build(newEngine(t), sc, nil); err == nil {
			t.Errorf("expected a build error for %q", src)
		}
	}
}

func TestGroupRepeats(t *testing.T) {
	st := mustBuild(t, `objects:
  o: {r: 0}
timeline:
  defaults: {duration: 0.5}
  steps:
    - op: group
      repeat: 1
      yoyo: true
      steps:
        - {op: to, target: o, props: {r: 10}}
`)
	if d := st.Duration(); d != 1 {
		t.Fatalf("expected duration 1, got %v", d)
	}
	st.Timeline.Seek(0.75)
	if r, _ := st.Object("o").Property("r"); math.Abs(r-5) > 1e-9 {
		t.Errorf("expected 5 on the way back, got %v", r)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range config.ListPresets() {
		sc, err := Parse(config.GetPreset(name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		st, err := Build(newEngine(t), sc, nil)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if st.Duration() <= 0 {
			t.Errorf("%s: expected a positive duration", name)
		}
		if len(st.Channels()) == 0 {
			t.Errorf("%s: expected channels", name)
		}
	}
}

func TestObjectSample(t *testing.T) {
	o := NewObject("o", map[string]any{
		"x":     3,
		"on":    true,
		"width": "12.5px",
		"fill":  "#ffffff",
		"text":  "hello",
	})

	tests := []struct {
		prop string
		want float64
		ok   bool
	}{
		{"x", 3, true},
		{"on", 1, true},
		{"width", 12.5, true},
		{"text", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := o.Sample(tt.prop)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Sample(%s) = %v %v, want %v %v", tt.prop, got, ok, tt.want, tt.ok)
		}
	}
	if l, ok := o.Sample("fill"); !ok || math.Abs(l-1) > 1e-4 {
		t.Errorf("white should sample as lightness 1, got %v", l)
	}

	want := []string{"fill", "on", "text", "width", "x"}
	if diff := cmp.Diff(want, o.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("box.x")
	if err != nil || c != (Channel{Object: "box", Property: "x"}) {
		t.Errorf("unexpected channel %v (%v)", c, err)
	}
	for _, bad := range []string{"box", ".x", "box."} {
		if _, err := ParseChannel(bad); err == nil {
			t.Errorf("expected %q to fail", bad)
		}
	}
}
