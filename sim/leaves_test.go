package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/plantgen/sim/internal/testutil"
)

func TestNewLeafNumberDistribution_AscendingOrder(t *testing.T) {
	dist, err := NewLeafNumberDistribution(map[float64]float64{13: 0.3, 11: 0.2, 12: 0.5})
	require.NoError(t, err)
	require.Len(t, dist, 3)
	assert.Equal(t, 11.0, dist[0].LeafNumber)
	assert.Equal(t, 12.0, dist[1].LeafNumber)
	assert.Equal(t, 13.0, dist[2].LeafNumber)
}

func TestNewLeafNumberDistribution_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		probs map[float64]float64
	}{
		{"empty", map[float64]float64{}},
		{"mass below one", map[float64]float64{11: 0.2, 12: 0.5}},
		{"probability above one", map[float64]float64{11: 1.2}},
		{"negative leaf number", map[float64]float64{-1: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLeafNumberDistribution(tt.probs)
			assert.True(t, errors.Is(err, ErrInputContract), "got %v", err)
		})
	}
}

func TestSampleMainStemLeafNumber_InverseCDF(t *testing.T) {
	dist, err := NewLeafNumberDistribution(map[float64]float64{11: 0.2, 12: 0.5, 13: 0.3})
	require.NoError(t, err)

	tests := []struct {
		draw float64
		want float64
	}{
		{0.0, 11},
		{0.1, 11},
		{0.2, 11}, // cumulative mass reaching the draw counts
		{0.5, 12},
		{0.69, 12},
		{0.95, 13},
		{0.999999, 13},
	}
	for _, tt := range tests {
		got, err := SampleMainStemLeafNumber(dist, testutil.NewScriptedSource(t, tt.draw))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "draw %v", tt.draw)
	}
}

func TestSampleMainStemLeafNumber_Empty(t *testing.T) {
	_, err := SampleMainStemLeafNumber(nil, testutil.NewScriptedSource(t))
	assert.True(t, errors.Is(err, ErrInputContract))
}

func TestTillerLeafNumber(t *testing.T) {
	c := TillerLeafCoefficients{A1: 0.9, A2: 0.5}
	assert.InDelta(t, 0.9*12-0.5*3, TillerLeafNumber(12, 3, c), 1e-12)
	assert.Equal(t, 10.5, TillerLeafNumber(12, 3, TillerLeafCoefficients{A1: 1, A2: 0.5}))
}

func TestClampLeafNumber(t *testing.T) {
	assert.Equal(t, 0.0, ClampLeafNumber(-2.5, "T4"))
	assert.Equal(t, 7.5, ClampLeafNumber(7.5, "T1"))
}

func TestSampleMainStemLeafNumber_NilSource(t *testing.T) {
	dist, err := NewLeafNumberDistribution(map[float64]float64{11: 1})
	require.NoError(t, err)

	_, err = SampleMainStemLeafNumber(dist, nil)
	assert.True(t, errors.Is(err, ErrInputContract), "got %v", err)
}
