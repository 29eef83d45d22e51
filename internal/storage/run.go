package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/tempo/internal/scene"
)

// Run is a scene sampled at a fixed rate: one row of channel values per
// sample time.
type Run struct {
	Scene    string
	FPS      float64
	Channels []string
	Times    []float64
	Values   [][]float64
}

// Sample seeks the stage's timeline from 0 through its duration, capped at
// limit seconds when limit is positive, and records every channel. Seeking
// suppresses events, so pause markers do not stop sampling. The timeline is
// left at its start.
func Sample(st *scene.Stage, fps, limit float64) (*Run, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("storage: sample rate must be positive, got %v", fps)
	}
	span := st.Duration()
	if limit > 0 && span > limit {
		span = limit
	}

	channels := st.Channels()
	run := &Run{Scene: st.Scene.Name, FPS: fps}
	for _, c := range channels {
		run.Channels = append(run.Channels, c.String())
	}

	n := int(math.Floor(span*fps+1e-9)) + 1
	run.Times = make([]float64, 0, n)
	run.Values = make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / fps
		st.Timeline.Seek(t)
		row := make([]float64, len(channels))
		for j, c := range channels {
			row[j], _ = st.Read(c)
		}
		run.Times = append(run.Times, t)
		run.Values = append(run.Values, row)
	}
	st.Timeline.Seek(0)
	return run, nil
}

func (r *Run) Duration() float64 {
	if len(r.Times) == 0 {
		return 0
	}
	return r.Times[len(r.Times)-1]
}

// Series returns the values of one channel.
func (r *Run) Series(channel string) ([]float64, error) {
	idx := -1
	for i, c := range r.Channels {
		if c == channel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("storage: no channel %q (have %v)", channel, r.Channels)
	}
	out := make([]float64, len(r.Values))
	for i, row := range r.Values {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, nil
}

func (r *Run) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"time"}, r.Channels...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, t := range r.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, v := range r.Values[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
