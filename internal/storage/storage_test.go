package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/tempo/internal/scene"
	"github.com/san-kum/tempo/pkg/motion"
)

const rampScene = `name: ramp
objects:
  a: {x: 0, label: "idle"}
timeline:
  steps:
    - {op: to, target: a, props: {x: 10}, duration: 1, ease: none}
`

func buildStage(t *testing.T, src string) *scene.Stage {
	t.Helper()
	sc, err := scene.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	e := motion.New(motion.DefaultConfig(), motion.WithLogger(log.New(io.Discard, "", 0)))
	t.Cleanup(e.Close)
	st, err := scene.Build(e, sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestSample(t *testing.T) {
	st := buildStage(t, rampScene)
	run, err := Sample(st, 4, 0)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a.x"}, run.Channels); diff != "" {
		t.Errorf("channels mismatch (-want +got):\n%s", diff)
	}
	series, err := run.Series("a.x")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 2.5, 5, 7.5, 10}
	if diff := cmp.Diff(want, series, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	if run.Duration() != 1 {
		t.Errorf("expected duration 1, got %v", run.Duration())
	}
	if x, _ := st.Object("a").Property("x"); x != 0 {
		t.Errorf("expected the timeline rewound, got x=%v", x)
	}
}

func TestSampleLimit(t *testing.T) {
	st := buildStage(t, rampScene)
	run, err := Sample(st, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Times) != 6 {
		t.Errorf("expected 6 samples, got %d", len(run.Times))
	}
	if _, err := Sample(st, 0, 0); err == nil {
		t.Error("expected an error for a zero rate")
	}
}

func TestSaveLoadRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	run := &Run{
		Scene:    "demo",
		FPS:      2,
		Channels: []string{"a.x", "a.y"},
		Times:    []float64{0, 0.5, 1},
		Values:   [][]float64{{0, 1}, {0.5, 0.75}, {1, 0.5}},
	}
	id, err := st.Save(run)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "demo_") {
		t.Errorf("unexpected id %q", id)
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Samples != 3 || meta.Duration != 1 || meta.Scene != "demo" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	got, err := st.LoadRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("unexpected list %v", runs)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(id, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "time,a.x,a.y\n") {
		t.Errorf("unexpected csv header: %q", buf.String())
	}

	buf.Reset()
	if err := st.ExportJSON(id, &buf); err != nil {
		t.Fatal(err)
	}
	var exported ExportData
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatal(err)
	}
	if exported.ID != id || exported.Scene != "demo" {
		t.Errorf("unexpected exported metadata %+v", exported.RunMetadata)
	}
	if diff := cmp.Diff(run.Values, exported.Values); diff != "" {
		t.Errorf("exported values mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRunCorruptValues(t *testing.T) {
	store := New(t.TempDir())
	run := &Run{Scene: "ramp", FPS: 2, Channels: []string{"a.x"},
		Times: []float64{0, 0.5}, Values: [][]float64{{0}, {5}}}
	id, err := store.Save(run)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		csv  string
	}{
		{"value", "time,a.x\n0.000000,0.000000\n0.500000,five\n"},
		{"time", "time,a.x\nzero,0.000000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(store.baseDir, id, "values.csv")
			if err := os.WriteFile(path, []byte(tt.csv), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := store.LoadRun(id); err == nil {
				t.Error("expected an error for a corrupt cell")
			}
			if err := store.ExportJSON(id, io.Discard); err == nil {
				t.Error("expected ExportJSON to fail too")
			}
		})
	}
}

func TestSaveEmpty(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Save(&Run{}); !errors.Is(err, ErrEmptyRun) {
		t.Errorf("expected ErrEmptyRun, got %v", err)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/nope")
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected an empty list, got %v (%v)", runs, err)
	}
}

func TestSeriesUnknownChannel(t *testing.T) {
	run := &Run{Channels: []string{"a.x"}}
	if _, err := run.Series("b.y"); err == nil {
		t.Error("expected an error")
	}
	if math.IsNaN(run.Duration()) || run.Duration() != 0 {
		t.Error("empty run should have zero duration")
	}
}
