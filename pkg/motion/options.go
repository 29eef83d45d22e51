package motion

import "github.com/san-kum/tempo/pkg/ease"

// Props maps property names to end values (or start values for From).
// A value is a number, a number with a unit ("10px"), a relative form
// ("+=10", "-=5", "*=2", "/=4"), a colour ("#ff8800", "rgb(255,136,0)") or
// any other string.
type Props map[string]any

// Modifier post-processes every numeric value written for a property.
type Modifier func(v float64) float64

// Toggle is a tri-state switch whose Auto state picks the documented
// per-operation default.
type Toggle int

const (
	Auto Toggle = iota
	On
	Off
)

func (t Toggle) resolve(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return def
	}
}

// RepeatForever makes an animation repeat indefinitely.
const RepeatForever = -1

// Events are invoked synchronously on the engine goroutine. A panicking
// callback is recovered and reported as a diagnostic.
type Events struct {
	OnStart           func()
	OnUpdate          func()
	OnComplete        func()
	OnRepeat          func()
	OnReverseComplete func()
	OnInterrupt       func()
}

type event int

const (
	evStart event = iota
	evUpdate
	evComplete
	evRepeat
	evReverseComplete
	evInterrupt
)

var eventNames = [...]string{"onStart", "onUpdate", "onComplete", "onRepeat", "onReverseComplete", "onInterrupt"}

func (e event) String() string { return eventNames[e] }

func (ev *Events) get(kind event) func() {
	switch kind {
	case evStart:
		return ev.OnStart
	case evUpdate:
		return ev.OnUpdate
	case evComplete:
		return ev.OnComplete
	case evRepeat:
		return ev.OnRepeat
	case evReverseComplete:
		return ev.OnReverseComplete
	case evInterrupt:
		return ev.OnInterrupt
	}
	return nil
}

// TweenOptions configure a single tween.
//
// Duration zero selects the inherited default (the closest timeline
// Defaults, then Config.DefaultDuration); use Set for an instantaneous
// write. A nil Ease selects the inherited default ease. TimeScale zero
// means 1. ImmediateRender defaults to On for From and FromTo and Off for
// To. Lazy defaults to On for tweens with a duration.
type TweenOptions struct {
	Duration        float64
	Delay           float64
	Ease            ease.Func
	Repeat          int
	RepeatDelay     float64
	Yoyo            bool
	RepeatRefresh   bool
	Paused          bool
	Reversed        bool
	TimeScale       float64
	ImmediateRender Toggle
	Lazy            Toggle
	// Overwrite kills every other tween of the same targets on creation.
	Overwrite bool
	// Stagger offsets the start of each target by this many seconds.
	Stagger   float64
	Modifiers map[string]Modifier
	Data      any

	Events
}

// Defaults are inherited by tweens created through a timeline.
type Defaults struct {
	Duration float64
	Ease     ease.Func
}

// TimelineOptions configure a timeline. SortChildren defaults to On.
type TimelineOptions struct {
	Delay         float64
	Repeat        int
	RepeatDelay   float64
	Yoyo          bool
	RepeatRefresh bool
	Paused        bool
	Reversed      bool
	TimeScale     float64
	Data          any

	// AutoRemoveChildren drops children once they complete.
	AutoRemoveChildren bool
	// SmoothChildTiming realigns a child's start when its time or speed
	// changes while playing, so it continues from where it is.
	SmoothChildTiming bool
	SortChildren      Toggle
	Defaults          Defaults

	Events
}
