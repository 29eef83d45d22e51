// Package ticker implements the process clock that drives animation
// updates.
//
// A Ticker measures wall time through a [Clock], smooths large gaps (the
// host was suspended or busy) down to a small adjusted step, caps the
// dispatch rate, and invokes its listeners synchronously in registration
// order once per dispatched frame. [Ticker.Run] emulates a frame request
// loop; [Ticker.Sleep] parks it until [Ticker.Wake].
package ticker

import (
	"context"
	"sync/atomic"
	"time"
)

// Clock supplies wall time. Tests inject a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now.
var SystemClock Clock = systemClock{}

// Listener receives the ticker time in seconds, the wall delta since the
// previous dispatched frame and the frame number.
type Listener func(time float64, delta time.Duration, frame int)

type ListenerID uint64

type Config struct {
	// LagThreshold is the largest gap between two ticks treated as real
	// elapsed time.
	LagThreshold time.Duration
	// AdjustedLag replaces any gap above LagThreshold.
	AdjustedLag time.Duration
	// FPS caps the dispatch rate. Zero means the default of 240.
	FPS float64
	// FrameInterval is the period of the frame source used by Run.
	FrameInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		LagThreshold:  500 * time.Millisecond,
		AdjustedLag:   33 * time.Millisecond,
		FPS:           240,
		FrameInterval: time.Second / 60,
	}
}

type entry struct {
	id ListenerID
	fn Listener
}

type Ticker struct {
	cfg   Config
	clock Clock

	origin     time.Time
	startTime  time.Duration
	lastUpdate time.Duration
	nextTime   time.Duration
	gap        time.Duration
	elapsed    time.Duration
	delta      time.Duration
	frame      int

	lagThreshold time.Duration
	adjustedLag  time.Duration

	listeners   []entry
	nextID      ListenerID
	dispatching bool
	cursor      int

	awake  atomic.Bool
	wakeCh chan struct{}
}

// New creates a ticker reading the given clock. A nil clock uses SystemClock.
func New(cfg Config, clock Clock) *Ticker {
	if clock == nil {
		clock = SystemClock
	}
	t := &Ticker{
		cfg:    cfg,
		clock:  clock,
		origin: clock.Now(),
		wakeCh: make(chan struct{}, 1),
	}
	t.LagSmoothing(cfg.LagThreshold, cfg.AdjustedLag)
	t.SetFPS(cfg.FPS)
	return t
}

// LagSmoothing sets the lag threshold and the step used in its place.
// A non-positive threshold disables smoothing.
func (t *Ticker) LagSmoothing(threshold, adjusted time.Duration) {
	if threshold <= 0 {
		threshold = time.Duration(1<<63 - 1)
	}
	if adjusted <= 0 {
		adjusted = 33 * time.Millisecond
	}
	if adjusted > threshold {
		adjusted = threshold
	}
	t.lagThreshold = threshold
	t.adjustedLag = adjusted
}

func (t *Ticker) SetFPS(fps float64) {
	if fps <= 0 {
		fps = 240
	}
	t.gap = time.Duration(float64(time.Second) / fps)
	t.nextTime = t.elapsed + t.gap
}

// Tick samples the clock and dispatches a frame when the FPS gap has
// elapsed. A manual tick always dispatches.
func (t *Ticker) Tick(manual bool) {
	now := t.clock.Now().Sub(t.origin)
	elapsed := now - t.lastUpdate
	if elapsed > t.lagThreshold || elapsed < 0 {
		t.startTime += elapsed - t.adjustedLag
	}
	t.lastUpdate += elapsed

	current := t.lastUpdate - t.startTime
	overlap := current - t.nextTime
	if overlap <= 0 && !manual {
		return
	}

	t.frame++
	t.delta = current - t.elapsed
	t.elapsed = current
	if overlap >= t.gap {
		t.nextTime += overlap + 4*time.Millisecond
	} else {
		t.nextTime += t.gap
	}

	t.dispatch()
}

func (t *Ticker) dispatch() {
	secs := t.elapsed.Seconds()
	outer := t.dispatching
	t.dispatching = true
	for t.cursor = 0; t.cursor < len(t.listeners); t.cursor++ {
		t.listeners[t.cursor].fn(secs, t.delta, t.frame)
	}
	t.dispatching = outer
}

// Add registers fn and wakes the ticker.
func (t *Ticker) Add(fn Listener) ListenerID {
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, entry{id: id, fn: fn})
	t.Wake()
	return id
}

// AddOnce registers fn for a single dispatched frame.
func (t *Ticker) AddOnce(fn Listener) ListenerID {
	var id ListenerID
	id = t.Add(func(time float64, delta time.Duration, frame int) {
		t.Remove(id)
		fn(time, delta, frame)
	})
	return id
}

// Remove unregisters a listener. Removing during dispatch keeps the
// current pass consistent.
func (t *Ticker) Remove(id ListenerID) {
	for i, e := range t.listeners {
		if e.id != id {
			continue
		}
		t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
		if t.dispatching && t.cursor >= i {
			t.cursor--
		}
		return
	}
}

func (t *Ticker) Listeners() int { return len(t.listeners) }

// Time is the ticker time in seconds.
func (t *Ticker) Time() float64 { return t.elapsed.Seconds() }

func (t *Ticker) Frame() int { return t.frame }

func (t *Ticker) Delta() time.Duration { return t.delta }

// DeltaRatio is the last delta relative to a frame at fps (60 if zero).
func (t *Ticker) DeltaRatio(fps float64) float64 {
	if fps <= 0 {
		fps = 60
	}
	return t.delta.Seconds() * fps
}

func (t *Ticker) Awake() bool { return t.awake.Load() }

// Sleep suspends the Run loop until Wake.
func (t *Ticker) Sleep() {
	t.awake.Store(false)
}

// Wake resumes the Run loop. It is safe to call from any goroutine.
func (t *Ticker) Wake() {
	if t.awake.Swap(true) {
		return
	}
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}

// Run ticks on every frame of the frame source until ctx is done, parking
// while the ticker sleeps.
func (t *Ticker) Run(ctx context.Context) error {
	interval := t.cfg.FrameInterval
	if interval <= 0 {
		interval = time.Second / 60
	}
	frames := time.NewTicker(interval)
	defer frames.Stop()

	for {
		if !t.awake.Load() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.wakeCh:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-frames.C:
			t.Tick(false)
		}
	}
}
