// Package solver provides the scalar iteration primitives shared by the
// cycle solvers: a bracketing root search with false-position and secant
// acceleration, and a bounded 1-D minimizer.
package solver

import "math"

// Bracket tracks one scalar iteration variable bounded by [Lo, Hi]. Guesses
// are accelerated with false position (both bound residuals known) or a
// secant step from the previous iterate, falling back to bisection whenever
// the accelerated step is not strictly inside the bracket. Residual sign
// conventions differ between loops, so the caller states which bound each
// residual belongs to.
type Bracket struct {
	Lo, Hi float64
	X      float64 // current guess

	loR, hiR     float64
	loSet, hiSet bool
	lastX, lastR float64
	hasLast      bool
}

// NewBracket starts a search at x0 inside [lo, hi].
func NewBracket(lo, hi, x0 float64) *Bracket {
	return &Bracket{Lo: lo, Hi: hi, X: x0}
}

// Width returns the current bracket width.
func (b *Bracket) Width() float64 { return b.Hi - b.Lo }

// Collapsed reports whether the bracket has shrunk below tol.
func (b *Bracket) Collapsed(tol float64) bool { return b.Hi-b.Lo < tol }

func (b *Bracket) bisect() float64 {
	b.X = 0.5 * (b.Lo + b.Hi)
	return b.X
}

// SeedLast supplies an a-priori iterate for the first secant step, e.g. a
// bound where the residual is known without an evaluation.
func (b *Bracket) SeedLast(x, resid float64) {
	b.lastX = x
	b.lastR = resid
	b.hasLast = true
}

// NarrowLo moves the lower bound to the current guess without a usable
// residual (e.g. a second-law violation) and bisects. The last secant point
// is kept.
func (b *Bracket) NarrowLo() float64 {
	b.Lo = b.X
	b.loSet = false
	return b.bisect()
}

// NarrowHi moves the upper bound to the current guess without a usable
// residual and bisects.
func (b *Bracket) NarrowHi() float64 {
	b.Hi = b.X
	b.hiSet = false
	return b.bisect()
}

func (b *Bracket) record(resid float64, low bool) {
	if low {
		b.Lo = b.X
		b.loR = resid
		b.loSet = true
	} else {
		b.Hi = b.X
		b.hiR = resid
		b.hiSet = true
	}
	b.lastX = b.X
	b.lastR = resid
	b.hasLast = true
}

// Next records resid at the current guess on the stated bound and returns the
// next guess. With residuals at both bounds it takes the false-position
// point; otherwise it bisects.
func (b *Bracket) Next(resid float64, low bool) float64 {
	b.record(resid, low)
	if b.loSet && b.hiSet && b.hiR != b.loR {
		x := b.hiR/(b.hiR-b.loR)*(b.Lo-b.Hi) + b.Hi
		if x > b.Lo && x < b.Hi {
			b.X = x
			return b.X
		}
	}
	return b.bisect()
}

// NextSecant records resid on the stated bound and returns a secant step from
// the previous iterate, bisecting when no previous iterate exists or the
// step leaves the bracket.
func (b *Bracket) NextSecant(resid float64, low bool) float64 {
	lastX, lastR, hasLast := b.lastX, b.lastR, b.hasLast
	b.record(resid, low)
	if hasLast && lastR != resid {
		x := b.lastX - resid*(lastX-b.lastX)/(lastR-resid)
		if !math.IsNaN(x) && x > b.Lo && x < b.Hi {
			b.X = x
			return b.X
		}
	}
	return b.bisect()
}

// FalsePosition returns the regula-falsi point for (x1,y1), (x2,y2).
func FalsePosition(x1, y1, x2, y2 float64) float64 {
	return y2/(y2-y1)*(x1-x2) + x2
}
