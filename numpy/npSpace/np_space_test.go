package npSpace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	require.Len(t, got, 5)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[4])
	assert.InDelta(t, 0.25, got[1], 1e-15)

	assert.Equal(t, []float64{2.5}, Linspace(2.5, 9, 1))
	assert.Nil(t, Linspace(0, 1, 0))
}

func TestLogspace(t *testing.T) {
	got := Logspace(-9, -4, 6)
	require.Len(t, got, 6)
	assert.InEpsilon(t, 1e-9, got[0], 1e-12)
	assert.InEpsilon(t, 1e-8, got[1], 1e-12)
	assert.InEpsilon(t, 1e-4, got[5], 1e-12)
}

func TestReverse(t *testing.T) {
	assert.Equal(t, []float64{3, 2, 1}, Reverse([]float64{1, 2, 3}))
	assert.Equal(t, []float64{2, 1}, Reverse([]float64{1, 2}))
	assert.Equal(t, []float64{7}, Reverse([]float64{7}))
}

func TestArgmin(t *testing.T) {
	assert.Equal(t, 2, Argmin([]float64{3, 1, 0.5, 2}))
	assert.Equal(t, 1, Argmin([]float64{math.NaN(), 4, 9}))
	assert.Equal(t, -1, Argmin([]float64{math.NaN(), math.NaN()}))
	assert.Equal(t, -1, Argmin(nil))
}
