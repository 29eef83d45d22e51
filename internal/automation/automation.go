// Package automation samples batches of scenes described in YAML.
package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tempo/internal/config"
	"github.com/san-kum/tempo/internal/scene"
	"github.com/san-kum/tempo/internal/storage"
	"github.com/san-kum/tempo/pkg/motion"
	"github.com/san-kum/tempo/pkg/ticker"
)

// Batch is a list of scenes to sample and save.
type Batch struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Jobs        []Job  `yaml:"jobs"`
	// Dir resolves relative scene paths; Load sets it to the batch file's
	// directory.
	Dir string `yaml:"-"`
}

// Job samples one scene, named by file or by preset.
type Job struct {
	Scene  string  `yaml:"scene"`
	Preset string  `yaml:"preset"`
	FPS    float64 `yaml:"fps"`
	Max    float64 `yaml:"max"`
	// SaveAs replaces the scene name in the saved run id.
	SaveAs string `yaml:"save_as"`
}

// Result is the outcome of one job. Run is nil when Err is set.
type Result struct {
	Job   Job
	Run   *storage.Run
	RunID string
	Err   error
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := ParseBatch(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Dir = filepath.Dir(path)
	return b, nil
}

func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	for i, j := range b.Jobs {
		if (j.Scene == "") == (j.Preset == "") {
			return nil, fmt.Errorf("job %d: set exactly one of scene and preset", i+1)
		}
	}
	return &b, nil
}

func (b *Batch) scene(j Job) (*scene.Scene, error) {
	if j.Preset != "" {
		data := config.GetPreset(j.Preset)
		if data == nil {
			return nil, fmt.Errorf("unknown preset: %s", j.Preset)
		}
		return scene.Parse(data)
	}
	path := j.Scene
	if !filepath.IsAbs(path) && b.Dir != "" {
		path = filepath.Join(b.Dir, path)
	}
	return scene.Load(path)
}

// Runner samples every job of a batch, each on its own engine.
type Runner struct {
	Config  *config.Config
	Logger  motion.Logger
	Workers int
}

// Run samples the jobs concurrently. A failing job does not stop the
// others; its error is reported in its Result. Results are in job order.
func (r *Runner) Run(ctx context.Context, b *Batch) []Result {
	results := make([]Result, len(b.Jobs))
	workers := r.Workers
	if workers < 1 {
		workers = 4
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, j := range b.Jobs {
		wg.Add(1)
		go func(idx int, j Job) {
			defer wg.Done()
			results[idx].Job = j
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx].Err = ctx.Err()
				return
			}
			results[idx].Run, results[idx].Err = r.sample(ctx, b, j)
		}(i, j)
	}
	wg.Wait()
	return results
}

func (r *Runner) sample(ctx context.Context, b *Batch, j Job) (*storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sc, err := b.scene(j)
	if err != nil {
		return nil, err
	}

	cfg := r.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts := []motion.Option{motion.WithTicker(ticker.New(cfg.TickerConfig(), nil))}
	if r.Logger != nil {
		opts = append(opts, motion.WithLogger(r.Logger))
	}
	e := motion.New(cfg.MotionConfig(), opts...)
	defer e.Close()

	st, err := scene.Build(e, sc, nil)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	fps, limit := cfg.Player.SampleFPS, cfg.Player.MaxSample
	if j.FPS > 0 {
		fps = j.FPS
	}
	if j.Max > 0 {
		limit = j.Max
	}
	run, err := storage.Sample(st, fps, limit)
	if err != nil {
		return nil, err
	}
	if j.SaveAs != "" {
		run.Scene = j.SaveAs
	}
	return run, nil
}

// Save stores every successful run in order and fills in its RunID.
func Save(store *storage.Store, results []Result) error {
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		id, err := store.Save(results[i].Run)
		if err != nil {
			return err
		}
		results[i].RunID = id
	}
	return nil
}
