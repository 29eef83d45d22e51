package motion

import "math"

// Animation is the playback surface shared by tweens and timelines. It is
// implemented only by *Tween and *Timeline.
type Animation interface {
	Play()
	PlayFrom(t float64)
	Pause()
	PauseAt(t float64)
	Resume()
	Reverse()
	ReverseFrom(t float64)
	Restart(includeDelay bool)
	Seek(t float64)
	Kill()
	Invalidate()

	SetTotalTime(t float64, suppressEvents bool)
	SetProgress(p float64, suppressEvents bool)
	SetTotalProgress(p float64, suppressEvents bool)
	SetTimeScale(s float64)
	SetReversed(reversed bool)
	SetPaused(paused bool)
	SetDelay(d float64)

	Time() float64
	TotalTime() float64
	Progress() float64
	TotalProgress() float64
	Duration() float64
	TotalDuration() float64
	StartTime() float64
	EndTime(includeRepeats bool) float64
	Delay() float64
	TimeScale() float64
	Iteration() int
	IsActive() bool
	Paused() bool
	Reversed() bool
	Killed() bool
	Parent() *Timeline
	Data() any

	core() *anim
}

// animator is the internal side of an Animation.
type animator interface {
	Animation
	render(totalTime float64, suppressEvents, force bool)
	totalDuration() float64
	invalidate()
	kill(silent bool)
}

// anim holds the playback state shared by tweens and timelines. Times are
// local: time is the position inside the current iteration, tTime the
// position including repeats.
type anim struct {
	e    *Engine
	self animator
	id   uint64

	start float64 // in parent time
	end   float64 // in parent time
	delay float64

	dur   float64
	tDur  float64
	time  float64
	tTime float64
	pTime float64
	// zTime remembers the sign of the last render at or around zero.
	zTime float64
	ratio float64

	repeat        int
	rDelay        float64
	yoyo          bool
	repeatRefresh bool

	ts  float64 // effective speed; 0 while paused
	rts float64 // requested speed

	paused  bool
	act     bool
	initted bool
	dirty   bool
	killed  bool
	lock    int

	parent *Timeline
	// dp is the last parent; it is kept after auto-removal so a restart
	// can re-attach.
	dp *Timeline

	events Events
	data   any
}

// timing is the part of the options shared by tweens and timelines.
type timing struct {
	delay         float64
	repeat        int
	rDelay        float64
	yoyo          bool
	repeatRefresh bool
	events        Events
	data          any
}

func (a *anim) setup(e *Engine, self animator, dur float64, t timing) {
	a.e = e
	a.self = self
	e.nextID++
	a.id = e.nextID
	a.ts, a.rts = 1, 1
	a.zTime = -e.cfg.Tiny
	a.delay = t.delay
	if t.repeat < 0 {
		a.repeat = RepeatForever
	} else {
		a.repeat = t.repeat
	}
	if a.repeat != 0 {
		a.rDelay = t.rDelay
		a.yoyo = t.yoyo
	}
	a.repeatRefresh = t.repeatRefresh
	a.events = t.events
	a.data = t.data
	a.setDuration(dur, true, true)
}

func (a *anim) core() *anim { return a }

func (a *anim) round(v float64) float64 { return roundTo(v, a.e.scale) }

func (a *anim) host() *Timeline {
	if a.parent != nil {
		return a.parent
	}
	return a.dp
}

func (a *anim) repeatTotal(dur float64) float64 {
	switch {
	case a.repeat < 0:
		return a.e.cfg.InfiniteDuration
	case a.repeat == 0:
		return dur
	}
	return a.round(dur*float64(a.repeat+1) + a.rDelay*float64(a.repeat))
}

func (a *anim) setDuration(d float64, skipUncache, leavePlayhead bool) {
	dur := a.round(d)
	totalProgress := 0.0
	if a.tDur != 0 {
		totalProgress = a.tTime / a.tDur
	}
	if totalProgress != 0 && !leavePlayhead && a.dur != 0 {
		a.time *= dur / a.dur
	}
	a.dur = dur
	a.tDur = a.repeatTotal(dur)
	if totalProgress > 0 && !leavePlayhead {
		a.tTime = a.tDur * totalProgress
		a.alignPlayhead(a.tTime)
	}
	if a.parent != nil {
		a.setEnd()
	}
	if !skipUncache && a.parent != nil {
		a.parent.uncache(a)
	}
}

func (a *anim) setEnd() {
	speed := math.Abs(a.ts)
	if speed == 0 {
		speed = math.Abs(a.rts)
	}
	if speed == 0 {
		speed = a.e.cfg.Tiny
	}
	a.end = a.round(a.start + a.tDur/speed)
}

// toLocal maps a parent time onto this animation's total time.
func (a *anim) toLocal(parentTime float64) float64 {
	if a.ts >= 0 {
		return (parentTime - a.start) * a.ts
	}
	return a.self.totalDuration() + (parentTime-a.start)*a.ts
}

// alignPlayhead moves start so that the parent's current time maps onto t.
func (a *anim) alignPlayhead(t float64) {
	p := a.host()
	if p == nil || !p.smooth || a.ts == 0 {
		return
	}
	var local float64
	if a.ts > 0 {
		local = t / a.ts
	} else {
		local = (a.self.totalDuration() - t) / -a.ts
	}
	a.start = a.round(p.time - local)
	a.setEnd()
	if !p.dirty {
		p.uncache(a)
	}
}

func (a *anim) recacheAncestors() {
	for p := a.parent; p != nil && p.parent != nil; p = p.parent {
		p.dirty = true
		p.totalDuration()
	}
}

func (a *anim) rawTime(wrapRepeats bool) float64 {
	p := a.host()
	if p == nil {
		return a.tTime
	}
	if wrapRepeats && (a.ts == 0 || (a.repeat != 0 && a.time != 0 && a.TotalProgress() < 1)) {
		return math.Mod(a.tTime, a.dur+a.rDelay)
	}
	if a.ts == 0 {
		return a.tTime
	}
	return a.toLocal(p.rawTime(wrapRepeats))
}

// cycle returns the zero-based iteration holding tTime. A time exactly on
// a boundary belongs to the iteration that just ended.
func (a *anim) cycle(tTime, cycleDur float64) int {
	if cycleDur == 0 {
		return 0
	}
	q := a.round(tTime / cycleDur)
	whole := math.Floor(q)
	if q != 0 && whole == q {
		return int(whole) - 1
	}
	return int(whole)
}

func (a *anim) callback(kind event, flushLazy bool) {
	fn := a.events.get(kind)
	if fn == nil {
		return
	}
	if flushLazy {
		a.e.flushLazy()
	}
	a.e.call(a.id, kind, fn)
}

func (a *anim) removeFromParent(onlyIfAutoRemove bool) {
	if a.parent != nil && (!onlyIfAutoRemove || a.parent.autoRemove) {
		a.parent.remove(a.self)
	}
	a.act = false
}

// interrupt detaches the animation, reporting onInterrupt when it is cut
// short.
func (a *anim) interrupt(silent bool) {
	hadParent := a.parent != nil
	a.removeFromParent(false)
	if hadParent && !silent && a.Progress() < 1 {
		a.callback(evInterrupt, false)
	}
}

func (a *anim) Play() {
	if a.killed {
		return
	}
	a.SetReversed(false)
	a.SetPaused(false)
}

func (a *anim) PlayFrom(t float64) {
	if a.killed {
		return
	}
	a.Seek(t)
	a.Play()
}

func (a *anim) Pause() { a.SetPaused(true) }

func (a *anim) PauseAt(t float64) {
	if a.killed {
		return
	}
	a.Seek(t)
	a.SetPaused(true)
}

func (a *anim) Resume() { a.SetPaused(false) }

func (a *anim) Reverse() {
	if a.killed {
		return
	}
	a.SetReversed(true)
	a.SetPaused(false)
}

// ReverseFrom seeks to t and plays backwards.
func (a *anim) ReverseFrom(t float64) {
	if a.killed {
		return
	}
	a.Seek(t)
	a.Reverse()
}

// Restart plays from the beginning, optionally honouring the delay again.
func (a *anim) Restart(includeDelay bool) {
	if a.killed {
		return
	}
	a.Play()
	t := 0.0
	if includeDelay {
		t = -a.delay
	}
	a.SetTotalTime(t, true)
	if a.dur == 0 {
		a.zTime = -a.e.cfg.Tiny
	}
}

// Seek jumps to total time t without firing events.
func (a *anim) Seek(t float64) {
	a.SetTotalTime(t, true)
}

func (a *anim) Kill() {
	a.self.kill(false)
}

// Invalidate discards recorded start values; they are read again on the
// next render.
func (a *anim) Invalidate() {
	if a.killed {
		return
	}
	a.self.invalidate()
}

func (a *anim) SetTotalTime(t float64, suppressEvents bool) {
	if a.killed {
		return
	}
	a.setTotalTime(t, suppressEvents)
}

func (a *anim) setTotalTime(t float64, suppress bool) {
	a.e.wake()
	tiny := a.e.cfg.Tiny
	p := a.host()
	if p != nil && p.smooth && a.ts != 0 {
		a.alignPlayhead(t)
		for anc := p; anc.parent != nil; anc = anc.parent {
			if anc.ts == 0 {
				break
			}
			var local float64
			if anc.ts >= 0 {
				local = anc.tTime / anc.ts
			} else {
				local = (anc.totalDuration() - anc.tTime) / -anc.ts
			}
			if anc.parent.time != anc.start+local {
				anc.setTotalTime(anc.tTime, true)
			}
		}
		if a.parent == nil && a.dp.autoRemove &&
			((a.ts > 0 && t < a.tDur) || (a.ts < 0 && t > 0) || (a.tDur == 0 && t == 0)) {
			a.dp.insert(a.self, a.start-a.delay, false)
		}
	}
	_, isTimeline := a.self.(*Timeline)
	if a.tTime != t || (a.dur == 0 && !suppress) || (a.initted && math.Abs(a.zTime) == tiny) ||
		(t == 0 && !a.initted && isTimeline) {
		if a.ts == 0 {
			a.pTime = t
		}
		a.e.lazySafeRender(a.self, t, suppress, false)
	}
}

func (a *anim) SetProgress(p float64, suppressEvents bool) {
	if a.killed {
		return
	}
	d := a.Duration()
	if a.yoyo && a.Iteration()&1 == 0 {
		p = 1 - p
	}
	a.setTotalTime(d*p+a.elapsedCycles(), suppressEvents)
}

func (a *anim) SetTotalProgress(p float64, suppressEvents bool) {
	if a.killed {
		return
	}
	a.setTotalTime(a.self.totalDuration()*p, suppressEvents)
}

func (a *anim) elapsedCycles() float64 {
	if a.repeat == 0 {
		return 0
	}
	c := a.Duration() + a.rDelay
	return float64(a.cycle(a.tTime, c)) * c
}

// SetTimeScale changes the playback speed. Negative values play backwards.
func (a *anim) SetTimeScale(s float64) {
	if a.killed || a.rts == s {
		return
	}
	tTime := a.tTime
	if a.parent != nil && a.ts != 0 {
		tTime = a.toLocal(a.parent.time)
	}
	a.rts = s
	if a.paused || s == -a.e.cfg.Tiny {
		a.ts = 0
	} else {
		a.ts = s
	}
	a.setTotalTime(clamp(-math.Abs(a.delay), a.self.totalDuration(), tTime), true)
	a.setEnd()
	a.recacheAncestors()
}

func (a *anim) TimeScale() float64 {
	if a.rts == -a.e.cfg.Tiny {
		return 0
	}
	return a.rts
}

func (a *anim) SetReversed(reversed bool) {
	if a.killed || reversed == a.Reversed() {
		return
	}
	s := -a.rts
	if s == 0 && reversed {
		s = -a.e.cfg.Tiny
	}
	a.SetTimeScale(s)
}

func (a *anim) Reversed() bool { return a.rts < 0 }

func (a *anim) SetPaused(paused bool) {
	if a.killed || a.paused == paused {
		return
	}
	a.paused = paused
	if paused {
		a.pTime = a.tTime
		if a.pTime == 0 {
			a.pTime = math.Max(-a.delay, a.rawTime(false))
		}
		a.ts = 0
		a.act = false
		return
	}

	a.e.wake()
	a.ts = a.rts
	t := a.tTime
	if t == 0 {
		t = a.pTime
	}
	if a.parent != nil && !a.parent.smooth {
		t = a.rawTime(false)
	}
	suppress := false
	if a.Progress() == 1 && math.Abs(a.zTime) != a.e.cfg.Tiny {
		a.tTime -= a.e.cfg.Tiny
		suppress = a.tTime != 0
	}
	a.setTotalTime(t, suppress)
}

func (a *anim) Paused() bool { return a.paused }

// SetDelay moves the start by the change in delay.
func (a *anim) SetDelay(d float64) {
	if a.killed {
		return
	}
	if a.parent != nil {
		a.start = a.round(a.start + d - a.delay)
		a.setEnd()
		a.parent.uncache(a)
	}
	a.delay = d
}

func (a *anim) Delay() float64 { return a.delay }

func (a *anim) Time() float64 { return a.time }

func (a *anim) TotalTime() float64 { return a.tTime }

// Duration is the length of one iteration.
func (a *anim) Duration() float64 {
	a.self.totalDuration()
	return a.dur
}

// TotalDuration includes repeats and repeat delays.
func (a *anim) TotalDuration() float64 {
	return a.self.totalDuration()
}

// Progress is the position inside the current iteration in [0,1]; yoyo
// iterations run from 1 back to 0.
func (a *anim) Progress() float64 {
	if a.Duration() != 0 {
		return math.Min(1, math.Max(0, a.time/a.dur))
	}
	if a.rawTime(false) >= 0 {
		return 1
	}
	return 0
}

func (a *anim) TotalProgress() float64 {
	if d := a.self.totalDuration(); d != 0 {
		return math.Min(1, math.Max(0, a.tTime/d))
	}
	if a.rawTime(false) >= 0 {
		return 1
	}
	return 0
}

// Iteration is the 1-based iteration the playhead is in.
func (a *anim) Iteration() int {
	if a.repeat == 0 {
		return 1
	}
	return a.cycle(a.tTime, a.Duration()+a.rDelay) + 1
}

func (a *anim) StartTime() float64 { return a.start }

func (a *anim) EndTime(includeRepeats bool) float64 {
	d := a.self.totalDuration()
	if !includeRepeats {
		d = a.dur
	}
	speed := math.Abs(a.ts)
	if speed == 0 {
		speed = 1
	}
	return a.start + d/speed
}

// IsActive reports whether the parent playhead is inside this animation
// and it is playing.
func (a *anim) IsActive() bool {
	p := a.host()
	if p == nil {
		return true
	}
	if a.ts == 0 || !a.initted || !p.IsActive() {
		return false
	}
	raw := p.rawTime(true)
	return raw >= a.start && raw < a.EndTime(true)-a.e.cfg.Tiny
}

func (a *anim) Killed() bool { return a.killed }

func (a *anim) Parent() *Timeline { return a.parent }

func (a *anim) Data() any { return a.data }

// ID identifies the animation in diagnostics.
func (a *anim) ID() uint64 { return a.id }
