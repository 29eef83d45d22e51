// Package motion is a single-threaded animation scheduling and
// interpolation engine.
//
// The package defines the engine primitives:
//
//   - [Tween]: interpolates properties of one or more targets over time
//   - [Timeline]: schedules child animations on its own local clock
//   - [PropTween]: one property of one target, written through a [Sink]
//   - [Engine]: owns the root timeline, the ticker and the lazy render queue
//
// # Example
//
//	e := motion.New(motion.DefaultConfig())
//	box := &Box{}
//	tl := e.Timeline(motion.TimelineOptions{Repeat: 1, Yoyo: true})
//	tl.To(box, motion.Props{"X": 100}, motion.TweenOptions{Duration: 1}, motion.End())
//	tl.To(box, motion.Props{"Opacity": 0}, motion.TweenOptions{}, motion.Pos("<0.5"))
//	go e.Start(ctx)
//
// Start values are read lazily on the first render of a tween, so changes
// made to a target between creation and playback are respected.
//
// # Thread Safety
//
// An Engine and every animation it owns must only be used from the goroutine
// that drives it (the one running [Engine.Start] or calling [Engine.Update]).
// Callbacks run synchronously on that goroutine and may freely create, add,
// remove or kill animations, including the one currently rendering.
package motion
