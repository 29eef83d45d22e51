package motion

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestYoyoProgress(t *testing.T) {
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 1, Repeat: 3, Yoyo: true, Paused: true})

	tests := []struct {
		at        float64
		iteration int
		progress  float64
	}{
		{0.25, 1, 0.25},
		{1.25, 2, 0.75},
		{1.5, 2, 0.5},
		{2.25, 3, 0.25},
		{3.75, 4, 0.25},
	}
	for _, tt := range tests {
		tw.Seek(tt.at)
		if got := tw.Iteration(); got != tt.iteration {
			t.Errorf("at %v: expected iteration %d, got %d", tt.at, tt.iteration, got)
		}
		if got := tw.Progress(); math.Abs(got-tt.progress) > 1e-9 {
			t.Errorf("at %v: expected progress %v, got %v", tt.at, tt.progress, got)
		}
		if got := b.X; math.Abs(got-tt.progress*100) > 1e-6 {
			t.Errorf("at %v: expected X %v, got %v", tt.at, tt.progress*100, got)
		}
	}
}

func TestIterationBoundaryBelongsToPreviousCycle(t *testing.T) {
	e, _ := newTestEngine(t)
	tw := e.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 1, Repeat: 2, Paused: true})

	tw.Seek(1)
	if got := tw.Iteration(); got != 1 {
		t.Errorf("expected iteration 1 at the boundary, got %d", got)
	}
	if got := tw.Progress(); got != 1 {
		t.Errorf("expected progress 1 at the boundary, got %v", got)
	}
	tw.Seek(1.5)
	if got := tw.Iteration(); got != 2 {
		t.Errorf("expected iteration 2, got %d", got)
	}
	if got := tw.TotalDuration(); got != 3 {
		t.Errorf("expected total duration 3, got %v", got)
	}
}

func TestRepeatDelay(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	var c counter
	opts := TweenOptions{Duration: 1, Repeat: 1, RepeatDelay: 0.5}
	opts.Events = c.events()
	tw := e.To(b, Props{"X": 100}, opts)

	g.Expect(tw.TotalDuration()).To(BeNumerically("~", 2.5, 1e-9))

	e.Update(1.25)
	g.Expect(b.X).To(Equal(100.0))
	e.Update(1.75)
	g.Expect(b.X).To(BeNumerically("~", 25, 1e-6))
	g.Expect(c.repeat).To(Equal(1))
	e.Update(3)
	g.Expect(c.complete).To(Equal(1))
}

func TestPauseResume(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 1})

	e.Update(0.5)
	tw.Pause()
	g.Expect(tw.Paused()).To(BeTrue())
	g.Expect(tw.IsActive()).To(BeFalse())

	e.Update(1)
	g.Expect(b.X).To(BeNumerically("~", 50, 1e-9))

	tw.Resume()
	e.Update(1.25)
	g.Expect(b.X).To(BeNumerically("~", 75, 1e-9))
}

func TestReverse(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	var c counter
	opts := TweenOptions{Duration: 1}
	opts.Events = c.events()
	tw := e.To(b, Props{"X": 100}, opts)

	e.Update(0.5)
	tw.Reverse()
	g.Expect(tw.Reversed()).To(BeTrue())

	e.Update(0.75)
	g.Expect(b.X).To(BeNumerically("~", 25, 1e-9))

	e.Update(2)
	e.Update(3)
	g.Expect(b.X).To(Equal(0.0))
	g.Expect(c.reverse).To(Equal(1))
	g.Expect(c.complete).To(Equal(0))
	g.Expect(tw.Parent()).To(BeNil())
}

func TestRestartAfterCompletion(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	var c counter
	opts := TweenOptions{Duration: 1}
	opts.Events = c.events()
	tw := e.To(b, Props{"X": 100}, opts)

	e.Update(2)
	g.Expect(c.complete).To(Equal(1))
	g.Expect(tw.Parent()).To(BeNil())

	tw.Restart(false)
	g.Expect(tw.Parent()).To(Equal(e.Root()))
	g.Expect(b.X).To(Equal(0.0))

	e.Update(2.5)
	g.Expect(b.X).To(BeNumerically("~", 50, 1e-9))
	e.Update(3.5)
	g.Expect(c.complete).To(Equal(2))
}

func TestRestartIncludingDelay(t *testing.T) {
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 1, Delay: 1})

	e.Update(1.5)
	tw.Restart(true)
	e.Update(2)
	if b.X != 0 {
		t.Errorf("expected the delay to hold the start value, got %v", b.X)
	}
	e.Update(3)
	if math.Abs(b.X-50) > 1e-9 {
		t.Errorf("expected 50 after the delay, got %v", b.X)
	}
}

func TestTimeScale(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 1, TimeScale: 2})

	g.Expect(tw.TimeScale()).To(Equal(2.0))
	g.Expect(tw.EndTime(true)).To(BeNumerically("~", 0.5, 1e-9))

	e.Update(0.25)
	g.Expect(b.X).To(BeNumerically("~", 50, 1e-9))

	tw.SetTimeScale(0.5)
	e.Update(0.75)
	g.Expect(b.X).To(BeNumerically("~", 75, 1e-9))
}

func TestInvalidateRereadsStart(t *testing.T) {
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": "+=10"}, TweenOptions{Duration: 1})

	e.Update(2)
	if b.X != 10 {
		t.Fatalf("expected 10, got %v", b.X)
	}

	tw.Invalidate()
	tw.Restart(false)
	e.Update(4)
	if b.X != 20 {
		t.Errorf("expected the relative end to be recomputed, got %v", b.X)
	}
}

func TestSeekSuppressesEvents(t *testing.T) {
	e, _ := newTestEngine(t)
	var c counter
	opts := TweenOptions{Duration: 1, Paused: true}
	opts.Events = c.events()
	tw := e.To(&box{}, Props{"X": 1}, opts)

	tw.Seek(0.5)
	tw.Seek(1)
	if c.start+c.update+c.complete != 0 {
		t.Errorf("seek fired events: %+v", c)
	}

	tw.SetTotalTime(0.3, false)
	if c.update != 1 {
		t.Errorf("expected an update from an unsuppressed jump, got %d", c.update)
	}
}

func TestProgressSetters(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 2, Repeat: 1, Paused: true})

	tw.SetTotalProgress(0.75, true)
	g.Expect(tw.TotalTime()).To(BeNumerically("~", 3, 1e-9))
	g.Expect(tw.Progress()).To(BeNumerically("~", 0.5, 1e-9))

	tw.SetProgress(0.25, true)
	g.Expect(tw.TotalTime()).To(BeNumerically("~", 2.5, 1e-9))
	g.Expect(b.X).To(BeNumerically("~", 25, 1e-6))
}

func TestInfiniteRepeat(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	tw := e.To(b, Props{"X": 100}, TweenOptions{Duration: 1, Repeat: RepeatForever})

	g.Expect(tw.TotalDuration()).To(Equal(e.Config().InfiniteDuration))

	e.Update(10.25)
	g.Expect(b.X).To(BeNumerically("~", 25, 1e-6))
	g.Expect(tw.IsActive()).To(BeTrue())
	g.Expect(tw.Iteration()).To(Equal(11))
}

func TestZeroDurationDirection(t *testing.T) {
	g := NewWithT(t)
	e, _ := newTestEngine(t)
	b := &box{}
	tl := e.Timeline(TimelineOptions{Paused: true})
	tl.To(b, Props{"Y": 1}, TweenOptions{Duration: 2}, End())
	tl.Set(b, Props{"X": 5}, At(1))

	tl.SetTotalTime(1.5, false)
	g.Expect(b.X).To(Equal(5.0))

	tl.SetTotalTime(0.5, false)
	g.Expect(b.X).To(Equal(0.0))
}
