package config

import "sort"

// Presets are built-in scene documents addressed by name.
var Presets = map[string]string{
	"pulse": `name: pulse
description: a box grows, recolours and fades back
objects:
  box: {scale: 1, opacity: 1, fill: "#ff3366"}
timeline:
  repeat: -1
  yoyo: true
  defaults: {duration: 0.8, ease: sine.inOut}
  steps:
    - {op: to, target: box, props: {scale: 1.5}}
    - {op: to, target: box, props: {fill: "#33ccff"}, position: "<"}
    - {op: to, target: box, props: {opacity: 0.3}, position: "<0.2"}
`,
	"bounce": `name: bounce
description: a ball drops and bounces while drifting right
objects:
  ball: {x: 0, y: 100}
timeline:
  steps:
    - {op: to, target: ball, props: {y: 0}, duration: 1.2, ease: bounce.out}
    - {op: to, target: ball, props: {x: 100}, duration: 1.2, ease: none, position: "<"}
    - {op: label, label: landed}
    - {op: to, target: ball, props: {y: 40}, duration: 0.4, ease: power2.out}
    - {op: to, target: ball, props: {y: 0}, duration: 0.4, ease: power2.in}
`,
	"stagger": `name: stagger
description: three bars rise one after another
objects:
  a: {height: 0}
  b: {height: 0}
  c: {height: 0}
timeline:
  defaults: {duration: 1, ease: back.out(2)}
  steps:
    - {op: to, targets: [a, b, c], props: {height: 100}, stagger: 0.25}
    - {op: to, targets: [a, b, c], props: {height: "*=0.5"}, stagger: 0.1, position: "+=0.3"}
`,
	"sequence": `name: sequence
description: a slide with labels, a nested group and a custom ease
objects:
  card: {x: -100, rotation: 0, width: "40px", label: "start"}
eases:
  smooth: "t * t * (3 - 2 * t)"
timeline:
  labels: {intro: 0}
  steps:
    - {op: to, target: card, props: {x: 0}, duration: 1, ease: smooth.inOut}
    - {op: label, label: settle}
    - op: group
      repeat: 1
      yoyo: true
      steps:
        - {op: to, target: card, props: {rotation: 15}, duration: 0.3, ease: power1.inOut}
    - {op: to, target: card, props: {width: "+=60px"}, duration: 0.5, position: settle}
    - {op: set, target: card, props: {label: "done"}, position: "+=0.2"}
    - {op: to, target: card, props: {x: "+=25.4"}, duration: 0.5, modifiers: {x: "math.round(value)"}}
`,
	"spring": `name: spring
description: a needle overshoots on a spring and settles
objects:
  needle: {angle: -45}
timeline:
  repeat: -1
  repeat_delay: 0.5
  steps:
    - {op: fromTo, target: needle, from: {angle: -45}, props: {angle: 45}, duration: 1.5, ease: spring.out}
    - {op: to, target: needle, props: {angle: -45}, duration: 0.6, ease: power3.inOut, position: "+=0.4"}
`,
}

// GetPreset returns the scene document named name, or nil.
func GetPreset(name string) []byte {
	src, ok := Presets[name]
	if !ok {
		return nil
	}
	return []byte(src)
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
