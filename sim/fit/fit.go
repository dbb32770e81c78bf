// Package fit calibrates the leading coefficient of a polynomial whose
// other coefficients are known, and scores the fit by its RMSE.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/plantgen/sim"
)

// ErrNotConverged is returned when the optimizer never reaches a finite
// objective or the resulting RMSE is not finite.
var ErrNotConverged = errors.New("least squares did not converge")

// stationarityTolerance bounds the cosine between the residual vector and
// x^degree at an accepted optimum. It is scale free.
const stationarityTolerance = 1e-6

// exactFitTolerance is the residual norm, relative to the norm of y, below
// which a fit is treated as exact.
const exactFitTolerance = 1e-9

// Result holds the fitted leading coefficient and its validity scores.
type Result struct {
	A        float64 // fitted coefficient of highest degree
	RMSE     float64 // sqrt(sum(residuals^2) / (n - 1))
	RSquared float64 // 1 - SSres/SStot; NaN when y is constant
}

// Poly evaluates the polynomial [a, fixed...] (descending powers) at x.
func Poly(a float64, fixed []float64, x float64) float64 {
	v := a
	for _, c := range fixed {
		v = v*x + c
	}
	return v
}

// residuals writes y - P(x) into dst.
func residuals(dst []float64, a float64, fixed, x, y []float64) {
	for i := range x {
		dst[i] = y[i] - Poly(a, fixed, x[i])
	}
}

// FitPoly finds the leading coefficient a minimizing the squared residuals
// between y and the polynomial [a, fixed...] evaluated at x, starting the
// search from initialGuess.
//
// At least two samples are required: the RMSE divides by n - 1.
func FitPoly(x, y, fixed []float64, initialGuess float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("x has %d samples, y has %d: %w", len(x), len(y), sim.ErrInputContract)
	}
	if len(x) < 2 {
		return Result{}, fmt.Errorf("RMSE needs at least 2 samples, got %d: %w", len(x), sim.ErrInputContract)
	}
	if math.IsNaN(initialGuess) || math.IsInf(initialGuess, 0) {
		return Result{}, fmt.Errorf("initial guess must be finite, got %g: %w", initialGuess, sim.ErrInputContract)
	}
	if !allFinite(x) || !allFinite(y) {
		return Result{}, fmt.Errorf("samples must be finite: %w", sim.ErrInputContract)
	}
	if !allFinite(fixed) {
		return Result{}, fmt.Errorf("fixed coefficients must be finite: %w", sim.ErrInputContract)
	}

	degree := float64(len(fixed))
	r := make([]float64, len(x))
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			residuals(r, p[0], fixed, x, y)
			return floats.Dot(r, r)
		},
		Grad: func(grad, p []float64) {
			residuals(r, p[0], fixed, x, y)
			g := 0.0
			for i, xi := range x {
				g -= 2 * r[i] * math.Pow(xi, degree)
			}
			grad[0] = g
		},
	}

	result, err := optimize.Minimize(problem, []float64{initialGuess}, nil, &optimize.BFGS{})
	// F stays +Inf when no finite point was ever accepted.
	if result == nil || !allFinite(result.X) || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrNotConverged, err)
		}
		return Result{}, fmt.Errorf("%w: non-finite coefficient", ErrNotConverged)
	}

	a := result.X[0]
	residuals(r, a, fixed, x, y)
	ssRes := floats.Dot(r, r)
	rmse := math.Sqrt(ssRes / float64(len(x)-1))
	if math.IsNaN(rmse) || math.IsInf(rmse, 0) {
		return Result{}, fmt.Errorf("%w: rmse %g at a=%g", ErrNotConverged, rmse, a)
	}
	// A line search that stalls at a stationary point is not a failure.
	if err != nil && !stationary(r, x, y, degree) {
		logrus.Warnf("FitPoly: optimizer stopped with %v (status %v); using last point", err, result.Status)
	}
	res := Result{
		A:        a,
		RMSE:     rmse,
		RSquared: rSquared(ssRes, y),
	}
	logrus.Debugf("FitPoly: a=%g rmse=%g r2=%g after %d evaluations", res.A, res.RMSE, res.RSquared, result.Stats.FuncEvaluations)
	return res, nil
}

func allFinite(v []float64) bool {
	if floats.HasNaN(v) {
		return false
	}
	for _, f := range v {
		if math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// stationary reports whether the residuals r are orthogonal to x^degree,
// the first-order condition of the one-parameter least squares problem.
// Residuals at rounding level relative to y count as an exact fit.
func stationary(r, x, y []float64, degree float64) bool {
	rNorm := floats.Norm(r, 2)
	if rNorm <= exactFitTolerance*math.Max(floats.Norm(y, 2), 1) {
		return true
	}
	basis := make([]float64, len(x))
	for i, xi := range x {
		basis[i] = math.Pow(xi, degree)
	}
	bNorm := floats.Norm(basis, 2)
	if bNorm == 0 {
		return true
	}
	return math.Abs(floats.Dot(r, basis))/(rNorm*bNorm) <= stationarityTolerance
}

func rSquared(ssRes float64, y []float64) float64 {
	mean := stat.Mean(y, nil)
	ssTot := 0.0
	for _, v := range y {
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}
