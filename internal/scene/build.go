package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/tempo/internal/script"
	"github.com/san-kum/tempo/pkg/ease"
	"github.com/san-kum/tempo/pkg/motion"
)

// Stage is a scene built onto an engine.
type Stage struct {
	Scene    *Scene
	Engine   *motion.Engine
	Timeline *motion.Timeline
	Eases    *ease.Registry

	objects map[string]*Object
	order   []string
}

// Channel names one sampleable property of one object.
type Channel struct {
	Object   string
	Property string
}

func (c Channel) String() string { return c.Object + "." + c.Property }

type builder struct {
	sc       *Scene
	e        *motion.Engine
	stage    *Stage
	defaults motion.Defaults
	report   func(error)
}

// Build creates the scene's objects and a paused timeline on e. Script
// failures at render time are passed to report, which may be nil.
func Build(e *motion.Engine, sc *Scene, report func(error)) (*Stage, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	st := &Stage{
		Scene:   sc,
		Engine:  e,
		Eases:   ease.NewRegistry(),
		objects: make(map[string]*Object, len(sc.Objects)),
	}
	b := &builder{sc: sc, e: e, stage: st, report: report}

	if err := b.registerEases(); err != nil {
		return nil, err
	}

	for name, props := range sc.Objects {
		st.objects[name] = NewObject(name, props)
		st.order = append(st.order, name)
	}
	sort.Strings(st.order)

	spec := sc.Timeline
	defEase, err := b.ease(spec.Defaults.Ease)
	if err != nil {
		return nil, err
	}
	b.defaults = motion.Defaults{Duration: spec.Defaults.Duration, Ease: defEase}
	tl := e.Timeline(motion.TimelineOptions{
		Delay:       spec.Delay,
		Repeat:      spec.Repeat,
		RepeatDelay: spec.RepeatDelay,
		Yoyo:        spec.Yoyo,
		TimeScale:   spec.TimeScale,
		Paused:      true,
		Defaults:    b.defaults,
		Data:        sc.Name,
	})
	st.Timeline = tl

	labels := make([]string, 0, len(spec.Labels))
	for name := range spec.Labels {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	for _, name := range labels {
		tl.AddLabel(name, motion.At(spec.Labels[name]))
	}

	if err := b.steps(tl, spec.Steps, ""); err != nil {
		tl.Kill()
		return nil, fmt.Errorf("scene %s: %w", sc.Name, err)
	}
	return st, nil
}

func (b *builder) registerEases() error {
	names := make([]string, 0, len(b.sc.Eases))
	for name := range b.sc.Eases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := b.sc.Eases[name]
		var (
			p   *script.Program
			err error
		)
		if strings.HasSuffix(src, ".tengo") {
			var data []byte
			data, err = os.ReadFile(filepath.Join(b.sc.Dir, src))
			if err == nil {
				p, err = script.Source(data, "t")
			}
		} else {
			p, err = script.Expr(src, "t")
		}
		if err != nil {
			return fmt.Errorf("scene: ease %q: %w", name, err)
		}
		f, err := script.Ease(p)
		if err != nil {
			return fmt.Errorf("scene: ease %q: %w", name, err)
		}
		b.stage.Eases.Register(name, f)
	}
	return nil
}

func (b *builder) ease(name string) (ease.Func, error) {
	if name == "" {
		return nil, nil
	}
	return b.stage.Eases.Parse(name)
}

func position(s string) (motion.Position, error) {
	if strings.TrimSpace(s) == "" {
		return motion.End(), nil
	}
	return motion.ParsePosition(s)
}

func (b *builder) steps(tl *motion.Timeline, steps []Step, prefix string) error {
	for i, st := range steps {
		where := fmt.Sprintf("%sstep %d", prefix, i+1)
		if err := b.step(tl, st, where); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
	}
	return nil
}

func (b *builder) step(tl *motion.Timeline, st Step, where string) error {
	pos, err := position(st.Position)
	if err != nil {
		return err
	}

	switch st.Op {
	case OpLabel:
		tl.AddLabel(st.Label, pos)
		return nil
	case OpPause:
		tl.AddPause(pos, nil)
		return nil
	case OpGroup:
		child := b.e.Timeline(motion.TimelineOptions{
			Delay:       st.Delay,
			Repeat:      st.Repeat,
			RepeatDelay: st.RepeatDelay,
			Yoyo:        st.Yoyo,
			Defaults:    b.defaults,
		})
		if err := b.steps(child, st.Steps, where+": "); err != nil {
			child.Kill()
			return err
		}
		tl.Add(child, pos)
		return nil
	}

	targets := make([]*Object, 0, len(st.targetNames()))
	for _, name := range st.targetNames() {
		targets = append(targets, b.stage.objects[name])
	}

	opts, err := b.tweenOptions(st)
	if err != nil {
		return err
	}
	switch st.Op {
	case OpTo:
		tl.To(targets, motion.Props(st.Props), opts, pos)
	case OpFrom:
		tl.From(targets, motion.Props(st.Props), opts, pos)
	case OpFromTo:
		tl.FromTo(targets, motion.Props(st.From), motion.Props(st.Props), opts, pos)
	case OpSet:
		tl.Set(targets, motion.Props(st.Props), pos)
	}
	return nil
}

func (b *builder) tweenOptions(st Step) (motion.TweenOptions, error) {
	f, err := b.ease(st.Ease)
	if err != nil {
		return motion.TweenOptions{}, err
	}
	opts := motion.TweenOptions{
		Duration:    st.Duration,
		Delay:       st.Delay,
		Ease:        f,
		Repeat:      st.Repeat,
		RepeatDelay: st.RepeatDelay,
		Yoyo:        st.Yoyo,
		Stagger:     st.Stagger,
		Overwrite:   st.Overwrite,
	}
	if len(st.Modifiers) > 0 {
		opts.Modifiers = make(map[string]motion.Modifier, len(st.Modifiers))
		for prop, expr := range st.Modifiers {
			p, err := script.Expr(expr, "value")
			if err != nil {
				return motion.TweenOptions{}, fmt.Errorf("modifier %q: %w", prop, err)
			}
			opts.Modifiers[prop] = script.Modifier(p, b.report)
		}
	}
	return opts, nil
}

// Object returns the named object, or nil.
func (s *Stage) Object(name string) *Object { return s.objects[name] }

// Objects lists the objects by name.
func (s *Stage) Objects() []*Object {
	out := make([]*Object, len(s.order))
	for i, name := range s.order {
		out[i] = s.objects[name]
	}
	return out
}

// Channels lists every property that samples as a number.
func (s *Stage) Channels() []Channel {
	var out []Channel
	for _, o := range s.Objects() {
		for _, k := range o.Keys() {
			if _, ok := o.Sample(k); ok {
				out = append(out, Channel{Object: o.Name, Property: k})
			}
		}
	}
	return out
}

// Read samples one channel.
func (s *Stage) Read(c Channel) (float64, bool) {
	o := s.objects[c.Object]
	if o == nil {
		return 0, false
	}
	return o.Sample(c.Property)
}

// ParseChannel reads "object.property".
func ParseChannel(s string) (Channel, error) {
	obj, prop, ok := strings.Cut(s, ".")
	if !ok || obj == "" || prop == "" {
		return Channel{}, fmt.Errorf("scene: channel %q is not object.property", s)
	}
	return Channel{Object: obj, Property: prop}, nil
}

// Duration is the length of one pass, or of every pass when the timeline
// repeats a finite number of times.
func (s *Stage) Duration() float64 {
	if s.Timeline.Killed() {
		return 0
	}
	if s.Timeline.TotalDuration() >= s.Engine.Config().InfiniteDuration {
		return s.Timeline.Duration()
	}
	return s.Timeline.TotalDuration()
}

// Close kills the stage's timeline.
func (s *Stage) Close() {
	s.Timeline.Kill()
}
