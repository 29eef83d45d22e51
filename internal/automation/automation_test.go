package automation

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/san-kum/tempo/internal/storage"
)

const ramp = `name: ramp
objects:
  a: {x: 0}
timeline:
  steps:
    - {op: to, target: a, props: {x: 10}, duration: 1, ease: none}
`

func writeBatch(t *testing.T, batch string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ramp.yaml"), []byte(ramp), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "batch.yaml")
	if err := os.WriteFile(path, []byte(batch), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseBatch(t *testing.T) {
	b, err := ParseBatch([]byte(`name: nightly
jobs:
  - {scene: a.yaml, fps: 30}
  - {preset: pulse, save_as: pulse-short, max: 2}
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []Job{
		{Scene: "a.yaml", FPS: 30},
		{Preset: "pulse", SaveAs: "pulse-short", Max: 2},
	}
	if diff := cmp.Diff(want, b.Jobs); diff != "" {
		t.Errorf("jobs mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{
		"jobs: [{}]",
		"jobs: [{scene: a.yaml, preset: pulse}]",
		"jobs: {scene: a.yaml}",
	} {
		if _, err := ParseBatch([]byte(bad)); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestRunBatch(t *testing.T) {
	path := writeBatch(t, `jobs:
  - {scene: ramp.yaml, fps: 4}
  - {preset: pulse, fps: 10, max: 1, save_as: quick}
  - {preset: nope}
`)
	b, err := LoadBatch(path)
	if err != nil {
		t.Fatal(err)
	}

	r := &Runner{Logger: log.New(io.Discard, "", 0), Workers: 2}
	results := r.Run(context.Background(), b)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if err := results[0].Err; err != nil {
		t.Fatalf("ramp failed: %v", err)
	}
	series, err := results[0].Run.Series("a.x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 2.5, 5, 7.5, 10}, series, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ramp series mismatch (-want +got):\n%s", diff)
	}

	if err := results[1].Err; err != nil {
		t.Fatalf("pulse failed: %v", err)
	}
	if results[1].Run.Scene != "quick" || len(results[1].Run.Times) != 11 {
		t.Errorf("unexpected pulse run: scene %q, %d samples", results[1].Run.Scene, len(results[1].Run.Times))
	}

	if results[2].Err == nil || !strings.Contains(results[2].Err.Error(), "unknown preset") {
		t.Errorf("expected an unknown preset error, got %v", results[2].Err)
	}

	store := storage.New(t.TempDir())
	if err := Save(store, results); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(results[0].RunID, "ramp_") || !strings.HasPrefix(results[1].RunID, "quick_") {
		t.Errorf("unexpected run ids %q %q", results[0].RunID, results[1].RunID)
	}
	if results[2].RunID != "" {
		t.Error("failed job should not be saved")
	}
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 saved runs, got %d", len(runs))
	}
}

func TestRunCancelled(t *testing.T) {
	b, err := ParseBatch([]byte("jobs: [{preset: pulse}, {preset: bounce}]"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, res := range (&Runner{}).Run(ctx, b) {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Err)
		}
	}
}
