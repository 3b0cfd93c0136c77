package solver

import "math"

// Fminbr finds a local minimizer of f on [a, b] to within tol using Brent's
// combined golden-section and parabolic-interpolation search. It evaluates f
// only inside the interval and needs no derivatives.
func Fminbr(a, b, tol float64, f func(float64) float64) float64 {
	const golden = 0.3819660112501051 // (3 - sqrt(5)) / 2

	if a > b {
		a, b = b, a
	}
	x := a + golden*(b-a)
	w, v := x, x
	fx := f(x)
	fw, fv := fx, fx

	for {
		mid := 0.5 * (a + b)
		tolAct := math.Sqrt(2.2e-16)*math.Abs(x) + tol/3
		if math.Abs(x-mid) <= 2*tolAct-0.5*(b-a) {
			return x
		}

		// Golden-section step by default.
		step := golden * func() float64 {
			if x < mid {
				return b - x
			}
			return a - x
		}()

		// Try a parabolic fit through x, w, v.
		if math.Abs(x-w) >= tolAct {
			t := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*t
			q = 2 * (q - t)
			if q > 0 {
				p = -p
			} else {
				q = -q
			}
			if math.Abs(p) < math.Abs(step*q) && p > q*(a-x+2*tolAct) && p < q*(b-x-2*tolAct) {
				step = p / q
			}
		}

		if math.Abs(step) < tolAct {
			if step > 0 {
				step = tolAct
			} else {
				step = -tolAct
			}
		}

		u := x + step
		fu := f(u)
		if fu <= fx {
			if u < x {
				b = x
			} else {
				a = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}
}
