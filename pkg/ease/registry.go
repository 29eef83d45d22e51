package ease

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	fe "github.com/fogleman/ease"
)

// Base builds the "in" form of an ease from a parameter list. Missing
// parameters are filled from Defaults.
type Base struct {
	Defaults []float64
	Build    func(params []float64) (Func, error)
}

// Fixed wraps a parameterless "in" formula.
func Fixed(in Func) Base {
	return Base{Build: func([]float64) (Func, error) { return in, nil }}
}

type Registry struct {
	mu      sync.RWMutex
	bases   map[string]Base
	aliases map[string]string
}

// Default is the registry used by the package level helpers.
var Default = NewRegistry()

// NewRegistry returns a registry holding the built-in bases.
func NewRegistry() *Registry {
	r := &Registry{
		bases:   make(map[string]Base),
		aliases: make(map[string]string),
	}

	r.bases["power0"] = Fixed(fe.Linear)
	r.bases["power1"] = Fixed(fe.InQuad)
	r.bases["power2"] = Fixed(fe.InCubic)
	r.bases["power3"] = Fixed(fe.InQuart)
	r.bases["power4"] = Fixed(fe.InQuint)
	r.bases["sine"] = Fixed(fe.InSine)
	r.bases["circ"] = Fixed(fe.InCirc)
	r.bases["expo"] = Fixed(fe.InExpo)
	r.bases["bounce"] = Fixed(fe.InBounce)

	r.bases["back"] = Base{
		Defaults: []float64{1.70158},
		Build: func(p []float64) (Func, error) {
			return backIn(p[0]), nil
		},
	}
	r.bases["elastic"] = Base{
		Defaults: []float64{1, 0.3},
		Build: func(p []float64) (Func, error) {
			if p[1] <= 0 {
				return nil, fmt.Errorf("%w: elastic period must be positive", ErrBadEaseParams)
			}
			return elasticIn(p[0], p[1]), nil
		},
	}
	r.bases["steps"] = Base{
		Defaults: []float64{12},
		Build: func(p []float64) (Func, error) {
			n := int(p[0])
			if n < 1 {
				return nil, fmt.Errorf("%w: steps needs at least 1 step", ErrBadEaseParams)
			}
			return stepsIn(n), nil
		},
	}
	r.bases["spring"] = Base{
		Defaults: []float64{12, 0.5},
		Build: func(p []float64) (Func, error) {
			if p[0] <= 0 || p[1] <= 0 {
				return nil, fmt.Errorf("%w: spring frequency and damping must be positive", ErrBadEaseParams)
			}
			return springIn(p[0], p[1]), nil
		},
	}

	r.aliases["quad"] = "power1"
	r.aliases["cubic"] = "power2"
	r.aliases["quart"] = "power3"
	r.aliases["quint"] = "power4"
	r.aliases["strong"] = "power4"

	return r
}

// Register adds a parameterless base under name.
func (r *Registry) Register(name string, in Func) {
	r.RegisterBase(name, Fixed(in))
}

func (r *Registry) RegisterBase(name string, b Base) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bases[strings.ToLower(name)] = b
}

func (r *Registry) Alias(alias, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[strings.ToLower(alias)] = strings.ToLower(name)
}

// Parse resolves an ease name such as "power2.inOut" or "back.out(3)".
func (r *Registry) Parse(spec string) (Func, error) {
	name, variant, params, err := split(spec)
	if err != nil {
		return nil, err
	}
	if name == "none" || name == "linear" {
		return Linear, nil
	}

	r.mu.RLock()
	if real, ok := r.aliases[name]; ok {
		name = real
	}
	base, ok := r.bases[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEase, spec)
	}

	if len(params) > len(base.Defaults) {
		return nil, fmt.Errorf("%w: %q takes at most %d parameters", ErrBadEaseParams, name, len(base.Defaults))
	}
	full := make([]float64, len(base.Defaults))
	copy(full, base.Defaults)
	copy(full, params)

	in, err := base.Build(full)
	if err != nil {
		return nil, err
	}
	return Derive(in, variant), nil
}

// Names lists every registered base and alias.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bases)+len(r.aliases)+1)
	names = append(names, "none")
	for name := range r.bases {
		names = append(names, name)
	}
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func split(spec string) (string, Variant, []float64, error) {
	s := strings.TrimSpace(spec)
	var params []float64
	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return "", 0, nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrBadEaseParams, spec)
		}
		inner := strings.TrimSpace(s[open+1 : len(s)-1])
		s = s[:open]
		if inner != "" {
			for _, field := range strings.Split(inner, ",") {
				v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
				if err != nil {
					return "", 0, nil, fmt.Errorf("%w: %q: %v", ErrBadEaseParams, spec, err)
				}
				params = append(params, v)
			}
		}
	}

	name, variantName, _ := strings.Cut(strings.ToLower(s), ".")
	variant := VariantOut
	switch variantName {
	case "", "out", "easeout":
		variant = VariantOut
	case "in", "easein":
		variant = VariantIn
	case "inout", "easeinout":
		variant = VariantInOut
	default:
		return "", 0, nil, fmt.Errorf("%w: unknown variant %q", ErrUnknownEase, variantName)
	}
	if name == "" {
		return "", 0, nil, fmt.Errorf("%w: empty name", ErrUnknownEase)
	}
	return name, variant, params, nil
}

// Parse resolves spec against the Default registry.
func Parse(spec string) (Func, error) {
	return Default.Parse(spec)
}

// Get is Parse for names known to be valid; it falls back to Linear.
func Get(spec string) Func {
	f, err := Default.Parse(spec)
	if err != nil {
		return Linear
	}
	return f
}

// Register adds a base to the Default registry.
func Register(name string, in Func) {
	Default.Register(name, in)
}

func Names() []string {
	return Default.Names()
}
