package motion

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/san-kum/tempo/pkg/ease"
)

type tweenMode int

const (
	modeTo tweenMode = iota
	modeFrom
	modeFromTo
	modeSet
	modeCall
)

// Tween interpolates the properties of its targets over its duration.
type Tween struct {
	anim

	mode      tweenMode
	targets   []any
	props     Props
	fromProps Props
	keys      []string
	ease      ease.Func
	modifiers map[string]Modifier
	lazyMode  Toggle
	isFrom    bool
	isPause   bool

	pts []*PropTween
	// sub drives one child tween per target when staggered.
	sub *Timeline

	lazyPending  bool
	lazyTime     float64
	lazySuppress bool
	forceInit    bool
}

// makeTween builds a detached tween. parent only supplies inherited
// defaults.
func (e *Engine) makeTween(parent *Timeline, targets []any, from, to Props, opts TweenOptions, mode tweenMode) *Tween {
	tw := &Tween{
		mode:      mode,
		targets:   targets,
		modifiers: opts.Modifiers,
		lazyMode:  opts.Lazy,
		isFrom:    mode == modeFrom,
	}
	if len(targets) == 0 && mode != modeCall {
		e.report(fmt.Errorf("%w: no targets", ErrNilTarget))
	}

	tw.props = to
	if mode == modeFromTo {
		tw.fromProps = from
	}
	tw.keys = propKeys(tw.props, tw.fromProps)

	dur := opts.Duration
	switch {
	case mode == modeSet || mode == modeCall:
		dur = 0
	case dur <= 0:
		dur = parent.inheritedDuration()
	}
	tw.ease = opts.Ease
	if tw.ease == nil {
		tw.ease = parent.inheritedEase()
	}

	tw.setup(e, tw, dur, timing{
		delay:         opts.Delay,
		repeat:        opts.Repeat,
		rDelay:        opts.RepeatDelay,
		yoyo:          opts.Yoyo,
		repeatRefresh: opts.RepeatRefresh,
		events:        opts.Events,
		data:          opts.Data,
	})

	if opts.Stagger != 0 && len(targets) > 1 && mode != modeCall {
		tw.stagger(opts)
	}
	return tw
}

// place inserts a new tween into parent and applies the creation time
// options.
func (e *Engine) place(parent *Timeline, a animator, at float64, paused, reversed bool, timeScale float64) {
	parent.insert(a, at, false)
	if reversed {
		a.Reverse()
	}
	if paused {
		a.SetPaused(true)
	}
	if timeScale != 0 && timeScale != 1 {
		a.SetTimeScale(timeScale)
	}
}

func (e *Engine) newTween(parent *Timeline, pos Position, targets any, from, to Props, opts TweenOptions, mode tweenMode) *Tween {
	list := flattenTargets(targets)
	if opts.Overwrite {
		for _, t := range list {
			e.KillTweensOf(t)
		}
	}

	tw := e.makeTween(parent, list, from, to, opts, mode)
	at := parent.time
	if !parent.isRoot {
		at = parent.resolve(pos, tw)
	}
	e.place(parent, tw, at, opts.Paused, opts.Reversed, opts.TimeScale)

	immediate := opts.ImmediateRender.resolve(mode == modeFrom || mode == modeFromTo)
	if immediate || (tw.dur == 0 && mode != modeCall && opts.ImmediateRender != Off &&
		tw.start == tw.round(parent.time) && !tw.hasPausedAncestors() && !parent.nested) {
		tw.tTime = -e.cfg.Tiny
		tw.forceInit = true
		tw.render(math.Max(0, -tw.delay), false, false)
		tw.forceInit = false
	}
	return tw
}

func (tw *Tween) stagger(opts TweenOptions) {
	sub := newTimeline(tw.e, TimelineOptions{})
	sub.nested = true

	child := TweenOptions{
		Duration:        tw.dur,
		Ease:            tw.ease,
		Modifiers:       opts.Modifiers,
		Lazy:            opts.Lazy,
		ImmediateRender: opts.ImmediateRender,
		RepeatRefresh:   opts.RepeatRefresh,
	}
	immediate := opts.ImmediateRender.resolve(tw.mode == modeFrom || tw.mode == modeFromTo)
	for i, target := range tw.targets {
		c := tw.e.makeTween(sub, []any{target}, tw.fromProps, tw.props, child, tw.mode)
		sub.insert(c, float64(i)*opts.Stagger, true)
		if immediate {
			c.tTime = -tw.e.cfg.Tiny
			c.forceInit = true
			c.render(0, true, false)
			c.forceInit = false
		}
	}
	tw.sub = sub
	tw.setDuration(sub.totalDuration(), true, true)
}

func (tw *Tween) hasPausedAncestors() bool {
	if tw.ts == 0 {
		return true
	}
	for p := tw.parent; p != nil; p = p.parent {
		if p.ts == 0 {
			return true
		}
	}
	return false
}

func propKeys(sets ...Props) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, set := range sets {
		for k := range set {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// flattenTargets spreads slices of pointers, interfaces or maps into
// individual targets and drops nil entries.
func flattenTargets(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		out := make([]any, 0, len(list))
		for _, t := range list {
			if !isNil(t) {
				out = append(out, t)
			}
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		switch rv.Type().Elem().Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map:
			out := make([]any, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				t := rv.Index(i).Interface()
				if !isNil(t) {
					out = append(out, t)
				}
			}
			return out
		}
	}
	if isNil(v) {
		return nil
	}
	return []any{v}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func sameTarget(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return false
	}
	if ta.Kind() == reflect.Map {
		return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

// Targets returns the objects the tween writes to.
func (tw *Tween) Targets() []any {
	return append([]any(nil), tw.targets...)
}

// PropTweens returns the property interpolators recorded at initialisation.
func (tw *Tween) PropTweens() []*PropTween {
	return append([]*PropTween(nil), tw.pts...)
}

// Ratio is the eased progress last rendered.
func (tw *Tween) Ratio() float64 { return tw.ratio }

// SetDuration changes the length of one iteration, keeping the playhead at
// the same progress.
func (tw *Tween) SetDuration(d float64) {
	if tw.killed || d < 0 {
		return
	}
	if tw.sub != nil {
		tw.sub.SetDuration(d)
	}
	tw.setDuration(d, false, false)
}

func (tw *Tween) hasTarget(target any) bool {
	for _, t := range tw.targets {
		if sameTarget(t, target) {
			return true
		}
	}
	return false
}

func (tw *Tween) totalDuration() float64 { return tw.tDur }

// initProps reads the current values of every target and records the
// property interpolators.
func (tw *Tween) initProps() {
	e := tw.e
	tw.pts = nil
	if tw.sub == nil {
		for _, target := range tw.targets {
			for _, key := range tw.keys {
				sink, err := resolveSink(e.adapters, target, key)
				if err != nil {
					e.report(err)
					continue
				}
				current := sink.Read()
				start := current
				end, hasEnd := tw.props[key]
				if tw.mode == modeFromTo {
					if from, ok := tw.fromProps[key]; ok {
						start = resolveRelative(from, current)
					}
					if !hasEnd {
						end = current
					}
				}
				pt, err := newPropTween(target, key, sink, start, end, tw.modifiers[key], e.numFmt)
				if err != nil {
					e.report(err)
				}
				tw.pts = append(tw.pts, pt)
			}
		}
	}
	tw.initted = true
}

// attemptInit initialises the tween and reports whether its first write
// was deferred to the lazy queue.
func (tw *Tween) attemptInit(tTime float64, force, suppress bool) bool {
	tw.initProps()
	e := tw.e
	lazy := tw.lazyMode.resolve(tw.dur != 0)
	if !force && !tw.forceInit && e.cfg.Lazy && lazy && len(tw.pts) > 0 && e.lastRenderedFrame != e.ticker.Frame() {
		tw.lazyPending = true
		tw.lazyTime = tTime
		tw.lazySuppress = suppress
		e.lazy = append(e.lazy, tw)
		return true
	}
	return false
}

func (tw *Tween) render(totalTime float64, suppress, force bool) {
	if tw.lazyPending {
		// A deferred first write is still queued; play it so its crossing
		// is not lost.
		tw.lazyPending = false
		tw.render(tw.lazyTime, tw.lazySuppress, true)
	}
	e := tw.e
	tiny := e.cfg.Tiny
	prevTime := tw.time
	tDur := tw.tDur
	dur := tw.dur
	isNegative := totalTime < 0

	tTime := totalTime
	switch {
	case totalTime > tDur-tiny && !isNegative:
		tTime = tDur
	case totalTime < tiny:
		tTime = 0
	}

	if dur == 0 {
		tw.renderInstant(totalTime, suppress, force)
		return
	}
	if tTime == tw.tTime && totalTime != 0 && !force && (tw.zTime < 0) == isNegative && !tw.lazyPending {
		return
	}

	time := tTime
	iteration, prevIteration := 0, 0
	isYoyo := false
	if tw.repeat != 0 {
		cycle := dur + tw.rDelay
		if tw.repeat < 0 && isNegative {
			tw.setTotalTime(cycle*100+totalTime, suppress)
			return
		}
		time = tw.round(math.Mod(tTime, cycle))
		if tTime == tDur {
			iteration = tw.repeat
			time = dur
		} else {
			q := tw.round(tTime / cycle)
			iteration = int(q)
			if iteration != 0 && float64(iteration) == q {
				time = dur
				iteration--
			} else if time > dur {
				time = dur
			}
		}
		isYoyo = tw.yoyo && iteration&1 == 1
		if isYoyo {
			time = dur - time
		}
		prevIteration = tw.cycle(tw.tTime, cycle)
		if time == prevTime && !force && tw.initted && iteration == prevIteration {
			tw.tTime = tTime
			return
		}
		if iteration != prevIteration && tw.repeatRefresh && !isYoyo && tw.lock == 0 && time != cycle && tw.initted {
			tw.lock = 1
			force = true
			tw.render(tw.round(cycle*float64(iteration)), true, false)
			tw.invalidate()
			tw.lock = 0
		}
	}

	if !tw.initted {
		if tw.attemptInit(tTime, force, suppress) {
			tw.tTime = 0
			return
		}
		if prevTime != tw.time && !(force && tw.repeatRefresh && iteration != prevIteration) {
			return
		}
		if dur != tw.dur {
			tw.render(totalTime, suppress, force)
			return
		}
	}

	tw.tTime = tTime
	tw.time = time
	if !tw.act && tw.ts != 0 {
		tw.act = true
		tw.lazyPending = false
	}

	ratio := tw.ease(time / dur)
	if tw.isFrom {
		ratio = 1 - ratio
	}
	tw.ratio = ratio

	if prevTime == 0 && tTime != 0 && !suppress && prevIteration == 0 {
		tw.callback(evStart, false)
		if tw.tTime != tTime || tw.killed {
			return
		}
	}

	for _, pt := range tw.pts {
		pt.Render(ratio)
	}
	if tw.sub != nil {
		sub := time
		if totalTime < 0 {
			sub = totalTime
		}
		tw.sub.render(sub, suppress, force)
	}

	if !suppress {
		tw.callback(evUpdate, false)
	}
	if tw.repeat != 0 && iteration != prevIteration && !suppress && tw.parent != nil {
		tw.callback(evRepeat, false)
	}

	if (tTime == tw.tDur || tTime == 0) && tw.tTime == tTime {
		if (totalTime != 0 || dur == 0) && ((tTime == tw.tDur && tw.ts > 0) || (tTime == 0 && tw.ts < 0)) {
			tw.removeFromParent(true)
		}
		if !suppress && !(isNegative && prevTime == 0) && (tTime != 0 || prevTime != 0 || isYoyo) {
			if tTime == tDur {
				tw.callback(evComplete, true)
			} else {
				tw.callback(evReverseComplete, true)
			}
		}
	}
}

// renderInstant handles zero-duration tweens, which jump between their
// start and end values depending on which side of zero the playhead is.
func (tw *Tween) renderInstant(totalTime float64, suppress, force bool) {
	e := tw.e
	tiny := e.cfg.Tiny
	prevRatio := tw.ratio

	ratio := 1.0
	if totalTime < 0 || (totalTime == 0 &&
		((tw.start == 0 && tw.parentPlayheadBeforeStart() && !(!tw.initted && tw.isFrom)) ||
			((tw.ts < 0 || (tw.dp != nil && tw.dp.ts < 0)) && !tw.isFrom))) {
		ratio = 0
	}

	tTime := 0.0
	if tw.rDelay != 0 && tw.repeat != 0 {
		tTime = clamp(0, tw.tDur, totalTime)
		iteration := tw.cycle(tTime, tw.rDelay)
		if tw.yoyo && iteration&1 == 1 {
			ratio = 1 - ratio
		}
		if iteration != tw.cycle(tw.tTime, tw.rDelay) {
			prevRatio = 1 - ratio
			if tw.repeatRefresh && tw.initted {
				tw.invalidate()
			}
		}
	}

	if ratio == prevRatio && !force && tw.zTime != tiny && !(totalTime == 0 && tw.zTime != 0) {
		if tw.zTime == 0 {
			tw.zTime = totalTime
		}
		return
	}

	if !tw.initted && tw.attemptInit(tTime, force, suppress) {
		return
	}
	prevZ := tw.zTime
	switch {
	case totalTime != 0:
		tw.zTime = totalTime
	case suppress:
		tw.zTime = tiny
	default:
		tw.zTime = 0
	}
	if !suppress {
		suppress = totalTime != 0 && prevZ == 0
	}
	tw.ratio = ratio
	write := ratio
	if tw.isFrom {
		write = 1 - ratio
	}
	tw.time = 0
	tw.tTime = tTime

	for _, pt := range tw.pts {
		pt.Render(write)
	}
	if !suppress {
		tw.callback(evUpdate, false)
	}
	if tTime != 0 && tw.repeat != 0 && !suppress && tw.parent != nil {
		tw.callback(evRepeat, false)
	}
	if (totalTime >= tw.tDur || totalTime < 0) && tw.ratio == ratio {
		if ratio != 0 {
			tw.removeFromParent(true)
		}
		if !suppress {
			if ratio != 0 {
				tw.callback(evComplete, true)
			} else {
				tw.callback(evReverseComplete, true)
			}
		}
	}
}

func (tw *Tween) parentPlayheadBeforeStart() bool {
	for p := tw.parent; p != nil; p = p.parent {
		if p.ts == 0 || !p.initted || p.lock != 0 {
			return false
		}
		if p.rawTime(false) < 0 {
			return true
		}
	}
	return false
}

func (tw *Tween) invalidate() {
	tw.pts = nil
	tw.initted = false
	tw.act = false
	tw.lazyPending = false
	tw.ratio = 0
	tw.zTime = -tw.e.cfg.Tiny
	if tw.sub != nil {
		tw.sub.invalidate()
	}
}

func (tw *Tween) kill(silent bool) {
	if tw.killed {
		return
	}
	tw.interrupt(silent)
	tw.killed = true
	tw.lazyPending = false
	tw.pts = nil
	if tw.sub != nil {
		tw.sub.kill(true)
	}
}
