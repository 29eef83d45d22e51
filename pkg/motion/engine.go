package motion

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/san-kum/tempo/pkg/ease"
	"github.com/san-kum/tempo/pkg/ticker"
)

// Engine owns the root timeline, drives it from a ticker and flushes the
// lazy render queue around every root render.
type Engine struct {
	cfg    Config
	scale  float64
	numFmt numberFormat
	log    Logger
	diag   func(error)

	ticker   *ticker.Ticker
	listener ticker.ListenerID

	root        *Timeline
	defaultEase ease.Func
	eases       *ease.Registry
	adapters    []Adapter
	lazy        []*Tween

	nextID            uint64
	lastRenderedFrame int
	nextIdleCheck     int
}

type Option func(*Engine)

// WithLogger replaces the default stderr logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTicker drives the engine from t instead of a private ticker.
func WithTicker(t *ticker.Ticker) Option {
	return func(e *Engine) { e.ticker = t }
}

// WithDiagnostics receives every diagnostic in addition to the logger.
func WithDiagnostics(fn func(error)) Option {
	return func(e *Engine) { e.diag = fn }
}

// WithEases resolves Config.DefaultEase against r.
func WithEases(r *ease.Registry) Option {
	return func(e *Engine) { e.eases = r }
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:               cfg,
		scale:             quantum(cfg.Precision),
		numFmt:            numberFormat{scale: quantum(cfg.StringPrecision)},
		log:               log.New(os.Stderr, "motion: ", log.LstdFlags),
		eases:             ease.Default,
		lastRenderedFrame: -1,
		nextIdleCheck:     cfg.AutoSleep,
	}
	for _, opt := range opts {
		opt(e)
	}

	f, err := e.eases.Parse(cfg.DefaultEase)
	if err != nil {
		e.report(fmt.Errorf("default ease: %w", err))
		f = ease.Linear
	}
	e.defaultEase = f

	if e.ticker == nil {
		e.ticker = ticker.New(ticker.DefaultConfig(), nil)
	}

	e.root = newTimeline(e, TimelineOptions{AutoRemoveChildren: true, SmoothChildTiming: true})
	e.root.isRoot = true
	e.listener = e.ticker.Add(e.onTick)
	return e
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Ticker() *ticker.Ticker { return e.ticker }

// Root is the timeline every standalone animation is placed on.
func (e *Engine) Root() *Timeline { return e.root }

// Time is the current root time in seconds.
func (e *Engine) Time() float64 { return e.root.time }

// Start runs the ticker until ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	return e.ticker.Run(ctx)
}

// Close detaches the engine from its ticker.
func (e *Engine) Close() {
	e.ticker.Remove(e.listener)
}

func (e *Engine) onTick(t float64, _ time.Duration, _ int) {
	e.Update(t)
}

// Update renders the root timeline at time t. It is called by the ticker
// and may be called directly to drive the engine manually.
func (e *Engine) Update(t float64) {
	root := e.root
	if root.dirty {
		// Compaction may move root.start.
		root.totalDuration()
	}
	if root.ts != 0 {
		e.lazySafeRender(root, (t-root.start)*root.ts, false, false)
		e.lastRenderedFrame = e.ticker.Frame()
	}
	e.idleCheck()
}

// Advance moves the root forward by dt seconds.
func (e *Engine) Advance(dt float64) {
	e.Update(e.root.start + e.root.tTime + dt)
}

func (e *Engine) idleCheck() {
	if e.cfg.AutoSleep <= 0 || e.ticker.Frame() < e.nextIdleCheck {
		return
	}
	e.nextIdleCheck = e.ticker.Frame() + e.cfg.AutoSleep
	if e.ticker.Listeners() >= 2 {
		return
	}
	for _, c := range e.root.children {
		if c.core().ts != 0 {
			return
		}
	}
	e.ticker.Sleep()
}

func (e *Engine) wake() {
	if !e.ticker.Awake() {
		e.ticker.Wake()
	}
}

// Flush performs every deferred first write now.
func (e *Engine) Flush() { e.flushLazy() }

func (e *Engine) flushLazy() {
	for len(e.lazy) > 0 {
		queue := e.lazy
		e.lazy = nil
		for _, tw := range queue {
			if tw.lazyPending && !tw.killed {
				tw.lazyPending = false
				tw.render(tw.lazyTime, tw.lazySuppress, true)
			}
		}
	}
}

func (e *Engine) lazySafeRender(a animator, t float64, suppress, force bool) {
	if len(e.lazy) > 0 {
		e.flushLazy()
	}
	a.render(t, suppress, force)
	if len(e.lazy) > 0 {
		e.flushLazy()
	}
}

func (e *Engine) report(err error) {
	if err == nil {
		return
	}
	if e.log != nil {
		e.log.Printf("%v", err)
	}
	if e.diag != nil {
		e.diag(err)
	}
}

func (e *Engine) call(id uint64, kind event, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.report(&CallbackError{ID: id, Event: kind.String(), Value: r})
		}
	}()
	fn()
}

// RegisterAdapter adds a sink resolver consulted before the built-in ones.
func (e *Engine) RegisterAdapter(a Adapter) {
	e.adapters = append(e.adapters, a)
}

// Ease parses an ease name against the engine's registry.
func (e *Engine) Ease(name string) (ease.Func, error) {
	return e.eases.Parse(name)
}

// To tweens targets from their current values to props, starting now.
func (e *Engine) To(targets any, props Props, opts TweenOptions) *Tween {
	return e.newTween(e.root, End(), targets, nil, props, opts, modeTo)
}

// From tweens targets from props back to their current values.
func (e *Engine) From(targets any, props Props, opts TweenOptions) *Tween {
	return e.newTween(e.root, End(), targets, nil, props, opts, modeFrom)
}

func (e *Engine) FromTo(targets any, from, to Props, opts TweenOptions) *Tween {
	return e.newTween(e.root, End(), targets, from, to, opts, modeFromTo)
}

// Set writes props immediately, or after delay.
func (e *Engine) Set(targets any, props Props, delay float64) *Tween {
	return e.newTween(e.root, End(), targets, nil, props, TweenOptions{Delay: delay}, modeSet)
}

// DelayedCall runs fn after delay seconds of root time.
func (e *Engine) DelayedCall(delay float64, fn func()) *Tween {
	opts := callOptions(fn)
	opts.Delay = delay
	return e.newTween(e.root, End(), nil, nil, nil, opts, modeCall)
}

// Timeline creates a timeline placed on the root at the current time.
func (e *Engine) Timeline(opts TimelineOptions) *Timeline {
	tl := newTimeline(e, opts)
	e.place(e.root, tl, e.root.time, opts.Paused, opts.Reversed, opts.TimeScale)
	return tl
}

// TweensOf lists the live tweens writing to target, searching nested
// timelines.
func (e *Engine) TweensOf(target any) []*Tween {
	var out []*Tween
	var walk func(tl *Timeline)
	walk = func(tl *Timeline) {
		for _, c := range tl.children {
			switch a := c.(type) {
			case *Timeline:
				walk(a)
			case *Tween:
				if !a.killed && a.hasTarget(target) {
					out = append(out, a)
				}
			}
		}
	}
	walk(e.root)
	return out
}

// IsTweening reports whether an active tween writes to target.
func (e *Engine) IsTweening(target any) bool {
	for _, tw := range e.TweensOf(target) {
		if tw.IsActive() {
			return true
		}
	}
	return false
}

// KillTweensOf kills every tween writing to target.
func (e *Engine) KillTweensOf(target any) {
	for _, tw := range e.TweensOf(target) {
		tw.Kill()
	}
}

// ExportRoot moves everything on the root into a new timeline, which is
// then placed on the root. Delayed calls stay on the root unless
// includeDelayedCalls is set.
func (e *Engine) ExportRoot(opts TimelineOptions, includeDelayedCalls bool) *Timeline {
	opts.SmoothChildTiming = true
	tl := newTimeline(e, opts)
	tl.time, tl.tTime = e.root.time, e.root.time
	for _, c := range append([]animator(nil), e.root.children...) {
		if tw, ok := c.(*Tween); ok && tw.mode == modeCall && !includeDelayedCalls {
			continue
		}
		a := c.core()
		tl.insert(c, a.start-a.delay, false)
	}
	e.root.insert(tl, 0, false)
	return tl
}
