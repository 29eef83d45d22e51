package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/tempo/pkg/ease"
)

// Timeline is a container animation. Children are kept ordered by start
// time and rendered against the timeline's local clock.
type Timeline struct {
	anim

	children []animator
	recent   animator
	labels   map[string]float64
	defaults Defaults

	autoRemove bool
	smooth     bool
	sort       bool
	isRoot     bool
	nested     bool
	hasPause   bool
}

func newTimeline(e *Engine, opts TimelineOptions) *Timeline {
	tl := &Timeline{
		labels:     make(map[string]float64),
		defaults:   opts.Defaults,
		autoRemove: opts.AutoRemoveChildren,
		smooth:     opts.SmoothChildTiming,
		sort:       opts.SortChildren.resolve(true),
	}
	tl.setup(e, tl, 0, timing{
		delay:         opts.Delay,
		repeat:        opts.Repeat,
		rDelay:        opts.RepeatDelay,
		yoyo:          opts.Yoyo,
		repeatRefresh: opts.RepeatRefresh,
		events:        opts.Events,
		data:          opts.Data,
	})
	return tl
}

func (tl *Timeline) inheritedDuration() float64 {
	for p := tl; p != nil; p = p.parent {
		if p.defaults.Duration > 0 {
			return p.defaults.Duration
		}
	}
	return tl.e.cfg.DefaultDuration
}

func (tl *Timeline) inheritedEase() ease.Func {
	for p := tl; p != nil; p = p.parent {
		if p.defaults.Ease != nil {
			return p.defaults.Ease
		}
	}
	return tl.e.defaultEase
}

// To tweens targets from their current values to props.
func (tl *Timeline) To(targets any, props Props, opts TweenOptions, pos Position) *Tween {
	return tl.e.newTween(tl, pos, targets, nil, props, opts, modeTo)
}

// From tweens targets from props to their current values.
func (tl *Timeline) From(targets any, props Props, opts TweenOptions, pos Position) *Tween {
	return tl.e.newTween(tl, pos, targets, nil, props, opts, modeFrom)
}

func (tl *Timeline) FromTo(targets any, from, to Props, opts TweenOptions, pos Position) *Tween {
	return tl.e.newTween(tl, pos, targets, from, to, opts, modeFromTo)
}

// Set writes props when the playhead reaches pos.
func (tl *Timeline) Set(targets any, props Props, pos Position) *Tween {
	return tl.e.newTween(tl, pos, targets, nil, props, TweenOptions{}, modeSet)
}

// Call schedules fn at pos. It also fires when the playhead crosses pos
// backwards.
func (tl *Timeline) Call(fn func(), pos Position) *Tween {
	tw := tl.e.makeTween(tl, nil, nil, nil, callOptions(fn), modeCall)
	tl.insert(tw, tl.resolve(pos, tw), false)
	return tw
}

// AddPause pauses the timeline when its playhead reaches pos and then runs
// fn, which may be nil.
func (tl *Timeline) AddPause(pos Position, fn func()) *Tween {
	tw := tl.e.makeTween(tl, nil, nil, nil, callOptions(fn), modeCall)
	tw.isPause = true
	tl.hasPause = true
	tl.insert(tw, tl.resolve(pos, tw), false)
	return tw
}

func callOptions(fn func()) TweenOptions {
	return TweenOptions{
		ImmediateRender: Off,
		Lazy:            Off,
		Events:          Events{OnComplete: fn, OnReverseComplete: fn},
	}
}

// Add moves child into this timeline at pos.
func (tl *Timeline) Add(child Animation, pos Position) {
	if tl.killed || child == nil || child.Killed() {
		return
	}
	c := child.core().self
	for p := tl; p != nil; p = p.parent {
		if animator(p) == c {
			tl.e.report(fmt.Errorf("motion: cannot add animation %d to its own descendant", c.core().id))
			return
		}
	}
	tl.insert(c, tl.resolve(pos, c), false)
}

// AddLabel records name at pos.
func (tl *Timeline) AddLabel(name string, pos Position) {
	if tl.killed {
		return
	}
	tl.labels[name] = tl.resolve(pos, nil)
}

func (tl *Timeline) RemoveLabel(name string) {
	delete(tl.labels, name)
}

// Labels returns a copy of the label table.
func (tl *Timeline) Labels() map[string]float64 {
	out := make(map[string]float64, len(tl.labels))
	for k, v := range tl.labels {
		out[k] = v
	}
	return out
}

// LabelTime reports the time of a label.
func (tl *Timeline) LabelTime(name string) (float64, bool) {
	t, ok := tl.labels[name]
	return t, ok
}

// SeekLabel jumps to a label without firing events.
func (tl *Timeline) SeekLabel(name string) error {
	t, ok := tl.labels[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	tl.Seek(t)
	return nil
}

// PlayLabel plays forward from a label.
func (tl *Timeline) PlayLabel(name string) error {
	t, ok := tl.labels[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	tl.PlayFrom(t)
	return nil
}

func (tl *Timeline) sortedLabels() []string {
	names := make([]string, 0, len(tl.labels))
	for name := range tl.labels {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ti, tj := tl.labels[names[i]], tl.labels[names[j]]
		if ti != tj {
			return ti < tj
		}
		return names[i] < names[j]
	})
	return names
}

// PreviousLabel is the last label at or before t.
func (tl *Timeline) PreviousLabel(t float64) (string, bool) {
	names := tl.sortedLabels()
	for i := len(names) - 1; i >= 0; i-- {
		if tl.labels[names[i]] <= t {
			return names[i], true
		}
	}
	return "", false
}

// NextLabel is the first label after t.
func (tl *Timeline) NextLabel(t float64) (string, bool) {
	for _, name := range tl.sortedLabels() {
		if tl.labels[name] > t {
			return name, true
		}
	}
	return "", false
}

// CurrentLabel is the label the playhead last passed.
func (tl *Timeline) CurrentLabel() string {
	name, _ := tl.PreviousLabel(tl.time + tl.e.cfg.Tiny)
	return name
}

// Remove detaches child if it belongs to this timeline.
func (tl *Timeline) Remove(child Animation) {
	if child == nil || child.Parent() != tl {
		return
	}
	tl.remove(child.core().self)
}

// Clear removes every child and optionally the labels.
func (tl *Timeline) Clear(includeLabels bool) {
	for _, c := range append([]animator(nil), tl.children...) {
		tl.remove(c)
	}
	if tl.dp != nil {
		tl.time, tl.tTime, tl.pTime = 0, 0, 0
	}
	if includeLabels {
		tl.labels = make(map[string]float64)
	}
	tl.uncache(nil)
}

// Children returns the direct children in start order.
func (tl *Timeline) Children() []Animation {
	out := make([]Animation, len(tl.children))
	for i, c := range tl.children {
		out[i] = c
	}
	return out
}

// RecentChild is the most recently added child, or nil.
func (tl *Timeline) RecentChild() Animation {
	if tl.recent == nil {
		return nil
	}
	return tl.recent
}

// ShiftChildren moves every child starting at or after ignoreBefore by
// amount, and the labels with them when adjustLabels is set.
func (tl *Timeline) ShiftChildren(amount float64, adjustLabels bool, ignoreBefore float64) {
	for _, c := range tl.children {
		a := c.core()
		if a.start >= ignoreBefore {
			a.start += amount
			a.end += amount
		}
	}
	if adjustLabels {
		for k, v := range tl.labels {
			if v >= ignoreBefore {
				tl.labels[k] = v + amount
			}
		}
	}
	tl.uncache(nil)
}

// SetDuration stretches the timeline by changing its time scale.
func (tl *Timeline) SetDuration(d float64) {
	if tl.killed || d <= 0 {
		return
	}
	if cur := tl.Duration(); cur != 0 {
		tl.SetTimeScale(cur / d)
	}
}

// uncache marks the timeline and its ancestors for duration recomputation
// when child no longer fits the cached extent.
func (tl *Timeline) uncache(child *anim) {
	if child != nil && child.end <= tl.dur && child.start >= 0 {
		return
	}
	for p := tl; p != nil; p = p.parent {
		p.dirty = true
	}
}

// insert places c at position plus its delay.
func (tl *Timeline) insert(c animator, position float64, skipChecks bool) {
	a := c.core()
	if a.parent != nil {
		a.removeFromParent(false)
	}
	a.start = tl.round(position + a.delay)
	speed := math.Abs(a.TimeScale())
	if speed == 0 {
		speed = 1
	}
	a.end = tl.round(a.start + c.totalDuration()/speed)

	i := len(tl.children)
	if tl.sort {
		for i > 0 && tl.children[i-1].core().start > a.start {
			i--
		}
	}
	tl.children = append(tl.children, nil)
	copy(tl.children[i+1:], tl.children[i:])
	tl.children[i] = c
	a.parent, a.dp = tl, tl
	tl.recent = c

	tl.uncache(a)
	if !skipChecks {
		tl.postAddChecks(a)
	}
	if tl.ts < 0 {
		tl.alignPlayhead(tl.tTime)
	}
	tl.e.wake()
}

func (tl *Timeline) remove(c animator) {
	for i, child := range tl.children {
		if child != c {
			continue
		}
		copy(tl.children[i:], tl.children[i+1:])
		tl.children[len(tl.children)-1] = nil
		tl.children = tl.children[:len(tl.children)-1]
		c.core().parent = nil
		if tl.recent == c {
			tl.recent = nil
			if n := len(tl.children); n > 0 {
				tl.recent = tl.children[n-1]
			}
		}
		tl.uncache(nil)
		return
	}
}

// postAddChecks renders a child inserted behind the playhead and keeps a
// completed timeline playing when a child extends it.
func (tl *Timeline) postAddChecks(c *anim) {
	_, childIsTimeline := c.self.(*Timeline)
	if c.time != 0 || (c.dur == 0 && c.initted) || (c.start < tl.time && (c.dur != 0 || !childIsTimeline)) {
		t := c.toLocal(tl.rawTime(false))
		if c.dur == 0 || clamp(0, c.self.totalDuration(), t)-c.tTime > tl.e.cfg.Tiny {
			c.self.render(t, true, false)
		}
	}
	if tl.dp != nil && tl.initted && tl.time >= tl.dur && tl.ts != 0 {
		if old := tl.dur; old < tl.Duration() {
			for p := tl; p.dp != nil; p = p.dp {
				if p.rawTime(false) >= 0 {
					p.setTotalTime(p.tTime, false)
				}
			}
		}
		tl.zTime = -tl.e.cfg.Tiny
	}
}

// totalDuration recomputes the extent of the children when dirty. A child
// starting before zero shifts every child right so the timeline never
// starts at a negative time.
func (tl *Timeline) totalDuration() float64 {
	if !tl.dirty {
		return tl.tDur
	}
	maxEnd := 0.0
	prevStart := math.Inf(1)
	for i := len(tl.children) - 1; i >= 0; i-- {
		c := tl.children[i]
		a := c.core()
		if a.dirty {
			c.totalDuration()
		}
		start := a.start
		if start > prevStart && tl.sort && a.ts != 0 && tl.lock == 0 {
			tl.lock = 1
			tl.insert(c, start-a.delay, true)
			tl.lock = 0
		} else {
			prevStart = start
		}
		if start < 0 && a.ts != 0 {
			maxEnd -= start
			if (tl.parent == nil && tl.dp == nil) || (tl.parent != nil && tl.parent.smooth) {
				if tl.ts != 0 {
					tl.start += start / tl.ts
				}
				tl.time -= start
				tl.tTime -= start
			}
			tl.ShiftChildren(-start, false, math.Inf(-1))
			prevStart = 0
		}
		if a.end > maxEnd && a.ts != 0 {
			maxEnd = a.end
		}
	}
	if tl.isRoot && tl.time > maxEnd {
		maxEnd = tl.time
	}
	tl.setDuration(maxEnd, true, true)
	tl.dirty = false
	return tl.tDur
}

func (tl *Timeline) findNextPause(prevTime, time float64) *Tween {
	if time > prevTime {
		for _, c := range tl.children {
			a := c.core()
			if a.start > time {
				break
			}
			if tw, ok := c.(*Tween); ok && tw.isPause && a.start > prevTime {
				return tw
			}
		}
		return nil
	}
	for i := len(tl.children) - 1; i >= 0; i-- {
		c := tl.children[i]
		a := c.core()
		if a.start < time {
			break
		}
		if tw, ok := c.(*Tween); ok && tw.isPause && a.start < prevTime {
			return tw
		}
	}
	return nil
}

func (tl *Timeline) render(totalTime float64, suppress, force bool) {
	e := tl.e
	tiny := e.cfg.Tiny
	prevTime := tl.time
	tDur := tl.tDur
	if tl.dirty {
		tDur = tl.totalDuration()
	}
	dur := tl.dur
	tTime := 0.0
	if totalTime > 0 {
		tTime = tl.round(totalTime)
	}
	crossingStart := (tl.zTime < 0) != (totalTime < 0) && (tl.initted || dur == 0)

	if !tl.isRoot && tTime > tDur && totalTime >= 0 {
		tTime = tDur
	}
	if tTime == tl.tTime && !force && !crossingStart {
		return
	}
	if prevTime != tl.time && dur != 0 {
		tTime += tl.time - prevTime
		totalTime += tl.time - prevTime
	}

	time := tTime
	prevStart := tl.start
	timeScale := tl.ts
	prevPaused := timeScale == 0
	if crossingStart {
		if dur == 0 {
			prevTime = tl.zTime
		}
		if totalTime != 0 || !suppress {
			tl.zTime = totalTime
		}
	}

	iteration := 0
	if tl.repeat != 0 {
		yoyo := tl.yoyo
		cycle := dur + tl.rDelay
		if tl.repeat < 0 && totalTime < 0 {
			tl.setTotalTime(cycle*100+totalTime, suppress)
			return
		}
		time = tl.round(math.Mod(tTime, cycle))
		if tTime == tDur {
			iteration = tl.repeat
			time = dur
		} else {
			q := tl.round(tTime / cycle)
			iteration = int(q)
			if iteration != 0 && float64(iteration) == q {
				time = dur
				iteration--
			}
			if time > dur {
				time = dur
			}
		}
		prevIteration := tl.cycle(tl.tTime, cycle)
		if prevTime == 0 && tl.tTime != 0 && prevIteration != iteration &&
			tl.tTime-float64(prevIteration)*cycle-tl.dur <= 0 {
			prevIteration = iteration
		}
		isYoyo := false
		if yoyo && iteration&1 == 1 {
			time = dur - time
			isYoyo = true
		}

		if iteration != prevIteration && tl.lock == 0 {
			rewinding := yoyo && prevIteration&1 == 1
			doesWrap := rewinding == (yoyo && iteration&1 == 1)
			if iteration < prevIteration {
				rewinding = !rewinding
			}
			switch {
			case rewinding:
				prevTime = 0
			case dur != 0 && math.Mod(tTime, dur) != 0:
				prevTime = dur
			default:
				prevTime = tTime
			}
			at := prevTime
			if at == 0 && !isYoyo {
				at = tl.round(float64(iteration) * cycle)
			}
			tl.lock = 1
			tl.render(at, suppress, dur == 0)
			tl.lock = 0
			tl.tTime = tTime
			if !suppress && tl.parent != nil {
				tl.callback(evRepeat, false)
			}
			if tl.repeatRefresh && !isYoyo {
				tl.invalidate()
				tl.lock = 1
			}
			if (prevTime != 0 && prevTime != tl.time) || prevPaused != (tl.ts == 0) || tl.killed {
				return
			}
			dur = tl.dur
			tDur = tl.tDur
			if doesWrap {
				tl.lock = 2
				if rewinding {
					prevTime = dur
				} else {
					prevTime = -0.0001
				}
				tl.render(prevTime, true, false)
				if tl.repeatRefresh && !isYoyo {
					tl.invalidate()
				}
			}
			tl.lock = 0
			if tl.ts == 0 && !prevPaused {
				return
			}
		}
	}

	var pause *Tween
	if tl.hasPause && tl.lock < 2 {
		pause = tl.findNextPause(tl.round(prevTime), tl.round(time))
		if pause != nil {
			tTime -= time - pause.start
			time = pause.start
		}
	}

	tl.tTime = tTime
	tl.time = time
	tl.act = timeScale == 0

	if !tl.initted {
		tl.initted = true
		tl.zTime = totalTime
		prevTime = 0
	}

	if prevTime == 0 && time != 0 && !suppress && iteration == 0 {
		tl.callback(evStart, false)
		if tl.tTime != tTime || tl.killed {
			return
		}
	}

	children := append([]animator(nil), tl.children...)
	if time >= prevTime && totalTime >= 0 {
		for i, c := range children {
			a := c.core()
			if a.parent != tl {
				continue
			}
			if (a.act || time >= a.start) && a.ts != 0 && (pause == nil || c != animator(pause)) {
				c.render(tl.childTime(a, time), suppress, force)
				if time != tl.time || (tl.ts == 0 && !prevPaused) || tl.killed {
					pause = nil
					if i < len(children)-1 {
						tl.zTime = -tiny
						tTime += tl.zTime
					}
					break
				}
			}
		}
	} else {
		adjusted := time
		if totalTime < 0 {
			adjusted = totalTime
		}
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			a := c.core()
			if a.parent != tl {
				continue
			}
			if (a.act || adjusted <= a.end) && a.ts != 0 && (pause == nil || c != animator(pause)) {
				c.render(tl.childTime(a, adjusted), suppress, force)
				if time != tl.time || (tl.ts == 0 && !prevPaused) || tl.killed {
					pause = nil
					if i > 0 {
						if adjusted != 0 {
							tl.zTime = -tiny
						} else {
							tl.zTime = tiny
						}
						tTime += tl.zTime
					}
					break
				}
			}
		}
	}
	if tl.killed {
		return
	}

	if pause != nil && !suppress {
		tl.Pause()
		if time >= prevTime {
			pause.render(0, false, false)
			pause.zTime = 1
		} else {
			pause.render(-tiny, false, false)
			pause.zTime = -1
		}
		if tl.ts != 0 {
			tl.start = prevStart
			tl.setEnd()
			tl.render(totalTime, suppress, force)
			return
		}
	}

	if !suppress {
		tl.callback(evUpdate, true)
	}

	if (tTime == tDur && tl.tTime >= tl.totalDuration()) || (tTime == 0 && prevTime != 0) {
		if prevStart == tl.start || math.Abs(timeScale) != math.Abs(tl.ts) {
			if tl.lock == 0 {
				if (totalTime != 0 || dur == 0) && ((tTime == tDur && tl.ts > 0) || (tTime == 0 && tl.ts < 0)) {
					tl.removeFromParent(true)
				}
				if !suppress && !(totalTime < 0 && prevTime == 0) && (tTime != 0 || prevTime != 0 || tDur == 0) {
					if tTime == tDur && totalTime >= 0 {
						tl.callback(evComplete, true)
					} else {
						tl.callback(evReverseComplete, true)
					}
				}
			}
		}
	}
}

func (tl *Timeline) childTime(a *anim, t float64) float64 {
	if a.ts > 0 {
		return (t - a.start) * a.ts
	}
	return a.self.totalDuration() + (t-a.start)*a.ts
}

func (tl *Timeline) invalidate() {
	tl.lock = 0
	for _, c := range tl.children {
		c.invalidate()
	}
	tl.initted = false
	tl.act = false
	tl.zTime = -tl.e.cfg.Tiny
}

func (tl *Timeline) kill(silent bool) {
	if tl.killed || tl.isRoot {
		return
	}
	tl.interrupt(silent)
	for _, c := range append([]animator(nil), tl.children...) {
		c.kill(true)
	}
	tl.children = nil
	tl.recent = nil
	tl.labels = make(map[string]float64)
	tl.killed = true
}
