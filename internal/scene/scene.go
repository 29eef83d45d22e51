// Package scene loads YAML scene documents and builds them into motion
// timelines over named property-bag objects.
//
// A scene names its objects with their initial properties, optional custom
// eases written as tengo expressions of t, and a timeline of steps:
//
//	name: pulse
//	objects:
//	  box: {x: 0, fill: "#ff0000"}
//	eases:
//	  smooth: "t * t * (3 - 2 * t)"
//	timeline:
//	  repeat: 1
//	  yoyo: true
//	  steps:
//	    - {op: to, target: box, props: {x: 100}, duration: 1, ease: smooth.inOut}
//	    - {op: to, target: box, props: {fill: "#0000ff"}, position: "<"}
//
// Step ops are to, from, fromTo, set, label, pause and group; a group is a
// nested timeline with its own steps.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOp     = errors.New("scene: unknown step op")
	ErrUnknownObject = errors.New("scene: unknown object")
	ErrNoTargets     = errors.New("scene: step has no targets")
)

type Scene struct {
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Objects     map[string]map[string]any `yaml:"objects"`
	Eases       map[string]string         `yaml:"eases"`
	Timeline    TimelineSpec              `yaml:"timeline"`

	// Dir resolves relative script paths. Load sets it to the scene's
	// directory.
	Dir string `yaml:"-"`
}

type TimelineSpec struct {
	Delay       float64            `yaml:"delay"`
	Repeat      int                `yaml:"repeat"`
	RepeatDelay float64            `yaml:"repeat_delay"`
	Yoyo        bool               `yaml:"yoyo"`
	TimeScale   float64            `yaml:"time_scale"`
	Defaults    DefaultsSpec       `yaml:"defaults"`
	Labels      map[string]float64 `yaml:"labels"`
	Steps       []Step             `yaml:"steps"`
}

type DefaultsSpec struct {
	Duration float64 `yaml:"duration"`
	Ease     string  `yaml:"ease"`
}

type Step struct {
	Op       string   `yaml:"op"`
	Target   string   `yaml:"target"`
	Targets  []string `yaml:"targets"`
	Position string   `yaml:"position"`
	Label    string   `yaml:"label"`

	Props     map[string]any    `yaml:"props"`
	From      map[string]any    `yaml:"from"`
	Modifiers map[string]string `yaml:"modifiers"`

	Duration    float64 `yaml:"duration"`
	Delay       float64 `yaml:"delay"`
	Ease        string  `yaml:"ease"`
	Repeat      int     `yaml:"repeat"`
	RepeatDelay float64 `yaml:"repeat_delay"`
	Yoyo        bool    `yaml:"yoyo"`
	Stagger     float64 `yaml:"stagger"`
	Overwrite   bool    `yaml:"overwrite"`

	// Steps belong to a group.
	Steps []Step `yaml:"steps"`
}

const (
	OpTo     = "to"
	OpFrom   = "from"
	OpFromTo = "fromTo"
	OpSet    = "set"
	OpLabel  = "label"
	OpPause  = "pause"
	OpGroup  = "group"
)

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Dir = filepath.Dir(path)
	return sc, nil
}

func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks step ops and object references without building.
func (sc *Scene) Validate() error {
	return sc.validateSteps(sc.Timeline.Steps, "")
}

func (sc *Scene) validateSteps(steps []Step, prefix string) error {
	for i, st := range steps {
		where := fmt.Sprintf("%sstep %d", prefix, i+1)
		switch st.Op {
		case OpTo, OpFrom, OpFromTo, OpSet:
			names := st.targetNames()
			if len(names) == 0 {
				return fmt.Errorf("%s: %w", where, ErrNoTargets)
			}
			for _, n := range names {
				if _, ok := sc.Objects[n]; !ok {
					return fmt.Errorf("%s: %w: %q", where, ErrUnknownObject, n)
				}
			}
		case OpLabel:
			if st.Label == "" {
				return fmt.Errorf("%s: label step needs a label", where)
			}
		case OpPause:
		case OpGroup:
			if err := sc.validateSteps(st.Steps, where+": "); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: %w: %q", where, ErrUnknownOp, st.Op)
		}
	}
	return nil
}

func (st Step) targetNames() []string {
	if st.Target != "" {
		return append([]string{st.Target}, st.Targets...)
	}
	return st.Targets
}
