package models

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// rk4 integrates dy/dt = f(t, y) with the classic fixed-step Runge-Kutta
// scheme, returning y at each of the n+1 grid points from t0 with step h.
func rk4(f func(t, y float64) float64, t0, y0, h float64, n int) []float64 {
	ys := make([]float64, n+1)
	ys[0] = y0
	t, y := t0, y0
	for i := 1; i <= n; i++ {
		k1 := f(t, y)
		k2 := f(t+h/2, y+h*k1/2)
		k3 := f(t+h/2, y+h*k2/2)
		k4 := f(t+h, y+h*k3)
		y += h / 6 * (k1 + 2*k2 + 2*k3 + k4)
		t += h
		ys[i] = y
	}
	return ys
}

// denseGrid builds a uniform grid from 0 to tMax with the given number of
// points, excluding t=0 itself (many models are singular there).
func denseGrid(tMax float64, points int) []float64 {
	grid := make([]float64, points)
	for i := range grid {
		grid[i] = tMax * float64(i+1) / float64(points)
	}
	return grid
}

// interpolateTo maps a curve computed on a dense internal grid onto the
// caller's requested times with piecewise-linear interpolation. Times below
// the first grid point are clamped to the first value.
func interpolateTo(grid, values, t []float64) ([]float64, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(grid, values); err != nil {
		return nil, fmt.Errorf("interpolation fit failed: %w", err)
	}
	out := make([]float64, len(t))
	for i, ti := range t {
		switch {
		case ti <= grid[0]:
			out[i] = values[0]
		case ti >= grid[len(grid)-1]:
			out[i] = values[len(values)-1]
		default:
			out[i] = pl.Predict(ti)
		}
	}
	return out, nil
}

// cumulativeTrapezoid returns the running trapezoidal integral of y over x.
func cumulativeTrapezoid(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		out[i] = out[i-1] + 0.5*(y[i]+y[i-1])*(x[i]-x[i-1])
	}
	return out
}
