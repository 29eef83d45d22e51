// Package script evaluates small tengo programs used by scene documents:
// custom ease curves written as a function of t and property modifiers
// written as a function of value.
package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/san-kum/tempo/pkg/ease"
	"github.com/san-kum/tempo/pkg/motion"
)

// ErrNotNumeric is returned when a program leaves a non-number in out.
var ErrNotNumeric = errors.New("script: result is not a number")

// ErrNoOutput is returned when a run leaves out undefined.
var ErrNoOutput = errors.New("script: program does not define out")

const outVar = "out"

// Program is a compiled tengo program reading one float input and leaving
// a number in the global out.
type Program struct {
	mu       sync.Mutex
	input    string
	compiled *tengo.Compiled
}

// Expr compiles a single expression over input, e.g. "t * t".
func Expr(expr, input string) (*Program, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("script: empty expression")
	}
	src := "math := import(\"math\")\n" + outVar + " := " + expr
	return compile(src, input)
}

// Source compiles a whole program that assigns out itself.
func Source(src []byte, input string) (*Program, error) {
	return compile(string(src), input)
}

func compile(src, input string) (*Program, error) {
	s := tengo.NewScript([]byte(src))
	if err := s.Add(input, 0.0); err != nil {
		return nil, err
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	p := &Program{input: input, compiled: compiled}
	// Globals stay undefined until the first run.
	if _, err := p.Eval(0); errors.Is(err, ErrNoOutput) {
		return nil, err
	}
	return p, nil
}

// Eval runs the program with x bound to its input.
func (p *Program) Eval(x float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.compiled.Set(p.input, x); err != nil {
		return 0, err
	}
	if err := p.compiled.Run(); err != nil {
		return 0, fmt.Errorf("script: %w", err)
	}
	out := p.compiled.Get(outVar)
	if out.IsUndefined() {
		return 0, ErrNoOutput
	}
	switch v := out.Value().(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, ErrNotNumeric
}

const easeSamples = 512

// Ease samples p over [0,1] into a lookup table. The program runs only
// here, so the returned curve is safe for concurrent use.
func Ease(p *Program) (ease.Func, error) {
	table := make([]float64, easeSamples+1)
	for i := range table {
		v, err := p.Eval(float64(i) / easeSamples)
		if err != nil {
			return nil, err
		}
		table[i] = v
	}
	return func(t float64) float64 {
		idx := t * easeSamples
		i := int(idx)
		if i < 0 {
			return table[0]
		}
		if i >= easeSamples {
			return table[easeSamples]
		}
		frac := idx - float64(i)
		return table[i]*(1-frac) + table[i+1]*frac
	}, nil
}

// Modifier turns p into a motion modifier. A failing run reports through
// onErr and leaves the value unchanged.
func Modifier(p *Program, onErr func(error)) motion.Modifier {
	return func(v float64) float64 {
		out, err := p.Eval(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return v
		}
		return out
	}
}
