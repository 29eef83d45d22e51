package motion

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// SinkKind tags the variants of a Sink.
type SinkKind int

const (
	// KindField writes straight into a numeric variable or struct field.
	KindField SinkKind = iota
	// KindAccessor goes through numeric getter and setter functions.
	KindAccessor
	// KindAttribute goes through string getter and setter functions.
	KindAttribute
)

func (k SinkKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindAccessor:
		return "accessor"
	case KindAttribute:
		return "attribute"
	}
	return "unknown"
}

// Sink reads and writes one property of one target. It is resolved once
// when a tween initialises. The zero value is not usable; build sinks with
// NewFieldSink, NewAccessorSink or NewAttributeSink.
type Sink struct {
	kind SinkKind

	ptr   *float64
	field reflect.Value

	getNum func() float64
	setNum func(float64)
	getStr func() string
	setStr func(string)
}

func NewFieldSink(p *float64) Sink {
	return Sink{kind: KindField, ptr: p}
}

func NewAccessorSink(get func() float64, set func(float64)) Sink {
	return Sink{kind: KindAccessor, getNum: get, setNum: set}
}

func NewAttributeSink(get func() string, set func(string)) Sink {
	return Sink{kind: KindAttribute, getStr: get, setStr: set}
}

func (s Sink) Kind() SinkKind { return s.kind }

// Numeric reports whether the sink stores numbers.
func (s Sink) Numeric() bool { return s.kind != KindAttribute }

// Read returns a float64 for numeric sinks and a string otherwise.
func (s Sink) Read() any {
	switch s.kind {
	case KindField:
		if s.ptr != nil {
			return *s.ptr
		}
		switch s.field.Kind() {
		case reflect.Float32, reflect.Float64:
			return s.field.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(s.field.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(s.field.Uint())
		}
		return 0.0
	case KindAccessor:
		return s.getNum()
	default:
		return s.getStr()
	}
}

func (s Sink) WriteFloat(v float64) {
	switch s.kind {
	case KindField:
		if s.ptr != nil {
			*s.ptr = v
			return
		}
		switch s.field.Kind() {
		case reflect.Float32, reflect.Float64:
			s.field.SetFloat(v)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s.field.SetInt(int64(math.Round(v)))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			s.field.SetUint(uint64(math.Max(0, math.Round(v))))
		}
	case KindAccessor:
		s.setNum(v)
	default:
		s.setStr(strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// WriteString stores str; numeric sinks store its leading number or 0.
func (s Sink) WriteString(str string) {
	if s.kind == KindAttribute {
		s.setStr(str)
		return
	}
	v, _, _ := parseUnitValue(str)
	s.WriteFloat(v)
}

// PropertyTarget exposes named numeric properties.
type PropertyTarget interface {
	Property(name string) (float64, bool)
	SetProperty(name string, v float64)
}

// AttributeTarget exposes named string attributes.
type AttributeTarget interface {
	Attr(name string) (string, bool)
	SetAttr(name, value string)
}

// Adapter resolves sinks for targets the engine does not understand. The
// most recently registered adapter is consulted first.
type Adapter interface {
	Resolve(target any, property string) (Sink, bool)
}

type AdapterFunc func(target any, property string) (Sink, bool)

func (f AdapterFunc) Resolve(target any, property string) (Sink, bool) {
	return f(target, property)
}

var float64Type = reflect.TypeOf(float64(0))

// resolveSink tries adapters, the target interfaces, plain maps and finally
// exported struct fields matched by name, case-insensitively. Struct fields
// are skipped for targets implementing PropertyTarget or AttributeTarget.
func resolveSink(adapters []Adapter, target any, prop string) (Sink, error) {
	for i := len(adapters) - 1; i >= 0; i-- {
		if s, ok := adapters[i].Resolve(target, prop); ok {
			return s, nil
		}
	}

	// Targets with their own property interfaces are never reached
	// through their struct fields.
	owned := false
	if pt, ok := target.(PropertyTarget); ok {
		owned = true
		if _, ok := pt.Property(prop); ok {
			return NewAccessorSink(
				func() float64 { v, _ := pt.Property(prop); return v },
				func(v float64) { pt.SetProperty(prop, v) },
			), nil
		}
	}
	if at, ok := target.(AttributeTarget); ok {
		owned = true
		if _, ok := at.Attr(prop); ok {
			return NewAttributeSink(
				func() string { v, _ := at.Attr(prop); return v },
				func(v string) { at.SetAttr(prop, v) },
			), nil
		}
	}

	switch t := target.(type) {
	case *float64:
		if prop == "" || strings.EqualFold(prop, "value") {
			return NewFieldSink(t), nil
		}
	case map[string]float64:
		return NewAccessorSink(
			func() float64 { return t[prop] },
			func(v float64) { t[prop] = v },
		), nil
	case map[string]string:
		return NewAttributeSink(
			func() string { return t[prop] },
			func(v string) { t[prop] = v },
		), nil
	case map[string]any:
		if _, isString := t[prop].(string); isString {
			return NewAttributeSink(
				func() string { s, _ := t[prop].(string); return s },
				func(v string) { t[prop] = v },
			), nil
		}
		return NewAccessorSink(
			func() float64 { v, _ := toFloat(t[prop]); return v },
			func(v float64) { t[prop] = v },
		), nil
	}

	rv := reflect.ValueOf(target)
	if !owned && rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		elem := rv.Elem()
		f := elem.FieldByName(prop)
		if !f.IsValid() {
			f = elem.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, prop) })
		}
		if f.IsValid() && f.CanSet() {
			switch f.Kind() {
			case reflect.Float32, reflect.Float64,
				reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				if f.Type() == float64Type && f.CanAddr() {
					return NewFieldSink(f.Addr().Interface().(*float64)), nil
				}
				return Sink{kind: KindField, field: f}, nil
			case reflect.String:
				return NewAttributeSink(f.String, f.SetString), nil
			}
		}
	}

	return Sink{}, fmt.Errorf("%w: %q on %T", ErrNoAdapter, prop, target)
}
