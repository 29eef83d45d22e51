package motion

import (
	"io"
	"log"
	"testing"
)

type box struct {
	X       float64
	Y       float64
	Opacity float64
	Count   int
	Fill    string
}

type counter struct {
	start, update, complete, repeat, reverse, interrupt int
}

func (c *counter) events() Events {
	return Events{
		OnStart:           func() { c.start++ },
		OnUpdate:          func() { c.update++ },
		OnComplete:        func() { c.complete++ },
		OnRepeat:          func() { c.repeat++ },
		OnReverseComplete: func() { c.reverse++ },
		OnInterrupt:       func() { c.interrupt++ },
	}
}

// newTestEngine returns an engine with a linear default ease whose
// diagnostics are collected instead of logged.
func newTestEngine(t *testing.T) (*Engine, *[]error) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DefaultEase = "none"
	var diags []error
	e := New(cfg,
		WithLogger(log.New(io.Discard, "", 0)),
		WithDiagnostics(func(err error) { diags = append(diags, err) }),
	)
	t.Cleanup(e.Close)
	return e, &diags
}
