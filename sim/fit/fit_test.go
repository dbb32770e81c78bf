package fit

import (
	"bytes"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/plantgen/sim"
)

func TestPoly(t *testing.T) {
	// 2x^2 + 3x + 1 at x = 2
	assert.Equal(t, 15.0, Poly(2, []float64{3, 1}, 2))
	// constant
	assert.Equal(t, 4.0, Poly(4, nil, 10))
}

func TestFitPoly_Linear_RoundTrip(t *testing.T) {
	// GIVEN noiseless samples of y = 3x + 5
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 5
	}

	// WHEN fitting the slope with the intercept fixed
	res, err := FitPoly(x, y, []float64{5.0}, 0.0)
	require.NoError(t, err)

	// THEN the true slope is recovered with zero error
	assert.InDelta(t, 3.0, res.A, 1e-6)
	assert.InDelta(t, 0.0, res.RMSE, 1e-5)
	assert.InDelta(t, 1.0, res.RSquared, 1e-9)
}

func TestFitPoly_Quadratic(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2, 3}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 0.5*v*v - v + 2
	}
	res, err := FitPoly(x, y, []float64{-1, 2}, 3.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.A, 1e-6)
	assert.InDelta(t, 0.0, res.RMSE, 1e-5)
}

func TestFitPoly_NoisyRMSE(t *testing.T) {
	// Residuals of +1/-1 around y = 2x: sum of squares 4, dof 3
	x := []float64{1, 2, 3, 4}
	y := []float64{3, 3, 7, 7}
	res, err := FitPoly(x, y, []float64{0}, 1.0)
	require.NoError(t, err)

	// least squares slope: sum(xy)/sum(x^2) = 58/30
	wantA := 58.0 / 30.0
	assert.InDelta(t, wantA, res.A, 1e-6)
	ss := 0.0
	for i := range x {
		r := y[i] - wantA*x[i]
		ss += r * r
	}
	assert.InDelta(t, math.Sqrt(ss/3), res.RMSE, 1e-6)
}

func TestFitPoly_TooFewSamples(t *testing.T) {
	_, err := FitPoly([]float64{1}, []float64{2}, []float64{0}, 1)
	assert.True(t, errors.Is(err, sim.ErrInputContract), "got %v", err)

	_, err = FitPoly(nil, nil, nil, 1)
	assert.True(t, errors.Is(err, sim.ErrInputContract), "got %v", err)
}

func TestFitPoly_LengthMismatch(t *testing.T) {
	_, err := FitPoly([]float64{1, 2, 3}, []float64{2, 4}, nil, 1)
	assert.True(t, errors.Is(err, sim.ErrInputContract), "got %v", err)
}

func TestFitPoly_ConstantY_RSquaredUndefined(t *testing.T) {
	res, err := FitPoly([]float64{1, 2, 3}, []float64{4, 4, 4}, []float64{4}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.A, 1e-6)
	assert.True(t, math.IsNaN(res.RSquared))
}

func TestFitPoly_NonFiniteInputs_Rejected(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name  string
		x, y  []float64
		fixed []float64
	}{
		{"NaN in y", []float64{1, 2, 3}, []float64{2, nan, 6}, []float64{0}},
		{"NaN in x", []float64{1, nan, 3}, []float64{2, 4, 6}, []float64{0}},
		{"+Inf in y", []float64{1, 2, 3}, []float64{2, inf, 6}, []float64{0}},
		{"-Inf in x", []float64{-inf, 2, 3}, []float64{2, 4, 6}, []float64{0}},
		{"NaN in fixed coefficients", []float64{1, 2, 3}, []float64{2, 4, 6}, []float64{nan}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN a sample set containing a non-finite value
			// WHEN fitting
			res, err := FitPoly(tc.x, tc.y, tc.fixed, 1)

			// THEN the fit fails with an input contract error and no partial result
			assert.True(t, errors.Is(err, sim.ErrInputContract), "got %v", err)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestFitPoly_ExactFitAtThermalTimeScale_NoWarning(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(os.Stderr)

	// GIVEN an exact quadratic sampled over a thermal-time range
	var x, y []float64
	for tt := 0.0; tt <= 2000; tt += 100 {
		x = append(x, tt)
		y = append(y, 2.5e-6*tt*tt+0.01*tt+3)
	}

	// WHEN fitting the leading coefficient
	res, err := FitPoly(x, y, []float64{0.01, 3}, 0)

	// THEN the coefficient is recovered and no optimizer warning is logged
	require.NoError(t, err)
	assert.InDelta(t, 2.5e-6, res.A, 1e-12)
	assert.Less(t, res.RMSE, 1e-9)
	assert.NotContains(t, buf.String(), "optimizer stopped")
}

func TestFitPoly_OverflowingObjective_NotConverged(t *testing.T) {
	// GIVEN finite samples whose squared powers overflow float64
	x := []float64{1e200, 2e200}
	y := []float64{1, 2}

	// WHEN fitting a quadratic leading coefficient
	res, err := FitPoly(x, y, []float64{0, 0}, 1)

	// THEN the fit fails instead of returning a default coefficient
	assert.True(t, errors.Is(err, ErrNotConverged), "got %v", err)
	assert.Equal(t, Result{}, res)
}
