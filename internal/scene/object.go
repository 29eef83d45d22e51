package scene

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Object is a named property bag animated by a scene. Numeric properties
// are written through the engine's accessor sink, string properties
// (colours, unit values, labels) through its attribute sink.
type Object struct {
	Name string

	nums map[string]float64
	strs map[string]string
}

func NewObject(name string, props map[string]any) *Object {
	o := &Object{
		Name: name,
		nums: make(map[string]float64),
		strs: make(map[string]string),
	}
	for k, v := range props {
		switch x := v.(type) {
		case int:
			o.nums[k] = float64(x)
		case int64:
			o.nums[k] = float64(x)
		case float64:
			o.nums[k] = x
		case bool:
			if x {
				o.nums[k] = 1
			} else {
				o.nums[k] = 0
			}
		case string:
			o.strs[k] = x
		case nil:
			o.nums[k] = 0
		}
	}
	return o
}

func (o *Object) Property(name string) (float64, bool) {
	v, ok := o.nums[name]
	return v, ok
}

func (o *Object) SetProperty(name string, v float64) {
	o.nums[name] = v
}

func (o *Object) Attr(name string) (string, bool) {
	v, ok := o.strs[name]
	return v, ok
}

func (o *Object) SetAttr(name, value string) {
	o.strs[name] = value
}

// Keys lists every property name in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.nums)+len(o.strs))
	for k := range o.nums {
		keys = append(keys, k)
	}
	for k := range o.strs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the current value as a float64 or a string.
func (o *Object) Value(name string) (any, bool) {
	if v, ok := o.nums[name]; ok {
		return v, true
	}
	v, ok := o.strs[name]
	return v, ok
}

// Sample reads a property as a number: numeric properties directly,
// colours as their perceptual lightness and unit strings by their leading
// number. Plain text does not sample.
func (o *Object) Sample(name string) (float64, bool) {
	if v, ok := o.nums[name]; ok {
		return v, true
	}
	s, ok := o.strs[name]
	if !ok {
		return 0, false
	}
	if c, err := colorful.Hex(s); err == nil {
		l, _, _ := c.Lab()
		return l, true
	}
	return leadingNumber(s)
}

func leadingNumber(s string) (float64, bool) {
	end := strings.IndexFunc(s, func(r rune) bool { return !strings.ContainsRune("+-.0123456789eE", r) })
	if end < 0 {
		end = len(s)
	}
	for ; end > 0; end-- {
		if v, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
