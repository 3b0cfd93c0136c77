package solver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestBracketRoot(t *testing.T) {
	// Solve x^2 = 2 on [0, 2]. Residual target - f(x) is positive when x is
	// below the root, so a positive residual pins the lower bound.
	b := NewBracket(0, 2, 1)
	for i := 0; i < 200; i++ {
		resid := 2 - b.X*b.X
		if math.Abs(resid) < 1e-13 {
			break
		}
		b.Next(resid, resid > 0)
	}
	if !scalar.EqualWithinAbsOrRel(b.X, math.Sqrt2, 1e-12, 1e-12) {
		t.Errorf("mismatch. Found %v, expected %v", b.X, math.Sqrt2)
	}
}

func TestBracketSecant(t *testing.T) {
	b := NewBracket(0, 10, 4)
	for i := 0; i < 200; i++ {
		resid := 5 - b.X
		if math.Abs(resid) < 1e-13 {
			break
		}
		b.NextSecant(resid, resid > 0)
	}
	if !scalar.EqualWithinAbsOrRel(b.X, 5, 1e-12, 1e-12) {
		t.Errorf("mismatch. Found %v, expected %v", b.X, 5.0)
	}
}

func TestBracketNarrow(t *testing.T) {
	b := NewBracket(0, 8, 2)
	got := b.NarrowLo()
	if b.Lo != 2 || got != 5 {
		t.Errorf("narrow low: bounds [%v,%v] guess %v", b.Lo, b.Hi, got)
	}
	got = b.NarrowHi()
	if b.Hi != 5 || got != 3.5 {
		t.Errorf("narrow high: bounds [%v,%v] guess %v", b.Lo, b.Hi, got)
	}
	if b.Collapsed(2) {
		t.Error("bracket should not have collapsed yet")
	}
}

func TestFalsePosition(t *testing.T) {
	// Linear function: one step lands on the root.
	got := FalsePosition(1, -2, 5, 6)
	if !scalar.EqualWithinAbsOrRel(got, 2, 1e-14, 1e-14) {
		t.Errorf("mismatch. Found %v, expected %v", got, 2.0)
	}
}

func TestFminbr(t *testing.T) {
	testPts := []struct {
		lo, hi, want float64
		f            func(float64) float64
	}{
		{0, 4, 2, func(x float64) float64 { return (x - 2) * (x - 2) }},
		{-3, 1, -1, func(x float64) float64 { return math.Cosh(x + 1) }},
		{0, math.Pi, math.Pi / 2, func(x float64) float64 { return -math.Sin(x) }},
	}
	for i, pt := range testPts {
		got := Fminbr(pt.lo, pt.hi, 1e-10, pt.f)
		if !scalar.EqualWithinAbsOrRel(got, pt.want, 1e-6, 1e-6) {
			t.Errorf("mismatch case %v. Found %v, expected %v", i, got, pt.want)
		}
	}
}
