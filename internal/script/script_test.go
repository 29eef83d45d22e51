package script

import (
	"errors"
	"math"
	"testing"
)

func TestExprEval(t *testing.T) {
	p, err := Expr("t * t * (3 - 2 * t)", "t")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{0.25, 0.15625},
	}
	for _, tt := range tests {
		got, err := p.Eval(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("eval(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExprUsesMath(t *testing.T) {
	p, err := Expr("math.round(value)", "value")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Eval(2.6); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestIntegerResult(t *testing.T) {
	p, err := Expr("7", "t")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := p.Eval(0); err != nil || got != 7 {
		t.Errorf("expected 7, got %v (%v)", got, err)
	}
}

func TestSource(t *testing.T) {
	p, err := Source([]byte("out := 0\nif t > 0.5 { out = 1 }"), "t")
	if err != nil {
		t.Fatal(err)
	}
	lo, _ := p.Eval(0.2)
	hi, _ := p.Eval(0.8)
	if lo != 0 || hi != 1 {
		t.Errorf("unexpected results %v %v", lo, hi)
	}

	for _, src := range []string{"x := 1", "out := undefined"} {
		if _, err := Source([]byte(src), "t"); !errors.Is(err, ErrNoOutput) {
			t.Errorf("%q: expected ErrNoOutput, got %v", src, err)
		}
	}
}

func TestOutputDefinedOnlyAfterRun(t *testing.T) {
	p, err := Source([]byte("out := t > 0.5 ? undefined : t"), "t")
	if err != nil {
		t.Fatalf("a program that defines out at 0 should compile: %v", err)
	}
	if got, err := p.Eval(0.25); err != nil || got != 0.25 {
		t.Errorf("expected 0.25, got %v (%v)", got, err)
	}
	if _, err := p.Eval(0.75); !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{"", "t *", "unknown_fn(t)"} {
		if _, err := Expr(expr, "t"); err == nil {
			t.Errorf("expected %q to fail", expr)
		}
	}
}

func TestNotNumeric(t *testing.T) {
	p, err := Expr(`"text"`, "t")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Eval(0); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("expected ErrNotNumeric, got %v", err)
	}
}

func TestEaseTable(t *testing.T) {
	p, err := Expr("t * t", "t")
	if err != nil {
		t.Fatal(err)
	}
	f, err := Ease(p)
	if err != nil {
		t.Fatal(err)
	}
	if f(0) != 0 || f(1) != 1 {
		t.Errorf("boundaries: %v %v", f(0), f(1))
	}
	if got := f(0.5); math.Abs(got-0.25) > 1e-5 {
		t.Errorf("f(0.5) = %v", got)
	}
	if f(2) != 1 || f(-1) != 0 {
		t.Error("out of range input should clamp to the table ends")
	}
}

func TestModifierFallsBack(t *testing.T) {
	p, _ := Expr(`value > 1 ? "big" : value * 2`, "value")
	var errs []error
	m := Modifier(p, func(err error) { errs = append(errs, err) })

	if got := m(0.5); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := m(5); got != 5 {
		t.Errorf("expected the value unchanged, got %v", got)
	}
	if len(errs) != 1 {
		t.Errorf("expected one error, got %d", len(errs))
	}
}
