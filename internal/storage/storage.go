package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// ErrEmptyRun is returned when a run has no samples to write.
var ErrEmptyRun = errors.New("storage: run has no samples")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Scene     string    `json:"scene"`
	Timestamp time.Time `json:"timestamp"`
	FPS       float64   `json:"fps"`
	Duration  float64   `json:"duration"`
	Samples   int       `json:"samples"`
	Channels  []string  `json:"channels"`
}

// Save writes metadata.json and values.csv under a new run directory and
// returns the run id.
func (s *Store) Save(run *Run) (string, error) {
	if run == nil || len(run.Times) == 0 {
		return "", ErrEmptyRun
	}

	now := time.Now()
	name := run.Scene
	if name == "" {
		name = "scene"
	}
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     run.Scene,
		Timestamp: now,
		FPS:       run.FPS,
		Duration:  run.Duration(),
		Samples:   len(run.Times),
		Channels:  run.Channels,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "values.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := run.WriteCSV(f); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadRun reads a saved run back, values included.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, "values.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	run := &Run{Scene: meta.Scene, FPS: meta.FPS, Channels: meta.Channels}
	if len(records) < 2 {
		return run, nil
	}
	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+1, err)
		}
		row := make([]float64, len(run.Channels))
		for j := range row {
			if j+1 < len(record) {
				row[j], err = strconv.ParseFloat(record[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("storage: %s: row %d, %s: %w", runID, i+1, run.Channels[j], err)
				}
			}
		}
		run.Times = append(run.Times, t)
		run.Values = append(run.Values, row)
	}
	return run, nil
}

// ExportCSV copies a run's values to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "values.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// ExportData is the JSON form of a saved run.
type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	Values [][]float64 `json:"values"`
}

// ExportJSON writes a run, metadata and values, as indented JSON.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	run, err := s.LoadRun(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Times: run.Times, Values: run.Values})
}
