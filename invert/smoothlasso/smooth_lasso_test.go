package smoothlasso

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"specinv/invert/augment"
	"specinv/invert/grid"
	"specinv/ml/lasso"
)

func identityDense(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

func randDense(r, c int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

// 场景: 1D 网格 n=5, K = I₅, s = e₁。α=0, λ=0 的精确解是 f = s。
func TestIdentityScenarioExact(t *testing.T) {
	g := grid.Grid{{Count: 5}}
	K := identityDense(5)
	s := mat.NewDense(5, 1, []float64{1, 0, 0, 0, 0})

	sl, err := New(0, 0, g)
	require.NoError(t, err)
	require.NoError(t, sl.Fit(K, s))

	f, err := sl.F()
	require.NoError(t, err)
	require.Equal(t, []int{5}, f.Shape)
	assert.InDelta(t, 1.0, f.At(0), 1e-8)
	for i := 1; i < 5; i++ {
		assert.InDelta(t, 0.0, f.At(i), 1e-8)
	}
}

// 同一场景, λ 拉过阈值后必须返回全零解。
func TestIdentityScenarioLargeLambda(t *testing.T) {
	g := grid.Grid{{Count: 5}}
	K := identityDense(5)
	s := mat.NewDense(5, 1, []float64{1, 0, 0, 0, 0})

	// 增广后 M=9 行, 阈值 |Kᵀs|/M = 1/9
	sl, err := New(0, 0.5, g)
	require.NoError(t, err)
	require.NoError(t, sl.Fit(K, s))

	f, err := sl.F()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.0, f.At(i), "coefficient %d", i)
	}
}

// 相同输入重复 Fit, 结果逐位一致。
func TestFitIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	g := grid.Grid{{Count: 3}, {Count: 2}}
	K := randDense(10, 6, rng)
	s := randDense(10, 1, rng)

	sl, err := New(1e-4, 1e-4, g)
	require.NoError(t, err)

	require.NoError(t, sl.Fit(K, s))
	first, err := sl.Coefficients()
	require.NoError(t, err)
	var snapshot mat.Dense
	snapshot.CloneFrom(first)

	require.NoError(t, sl.Fit(K, s))
	second, err := sl.Coefficients()
	require.NoError(t, err)
	assert.True(t, mat.Equal(&snapshot, second), "repeated fit must be bit-identical")
}

func TestPredictAndResiduals(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	g := grid.Grid{{Count: 4}}
	K := randDense(8, 4, rng)
	s := randDense(8, 1, rng)

	sl, err := New(1e-6, 1e-6, g)
	require.NoError(t, err)
	require.NoError(t, sl.Fit(K, s))

	pred, err := sl.Predict(K)
	require.NoError(t, err)
	res, err := sl.Residuals(K, s)
	require.NoError(t, err)

	// residuals = s − prediction, 恒等式逐元素成立
	for i := 0; i < 8; i++ {
		assert.InDelta(t, s.At(i, 0)-pred.At(i, 0), res.At(i, 0), 1e-14)
	}
}

func TestMultiSpectrumShape(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	g := grid.Grid{{Count: 2}, {Count: 3}}
	K := randDense(9, 6, rng)
	s := randDense(9, 2, rng)

	sl, err := New(1e-5, 1e-5, g)
	require.NoError(t, err)
	require.NoError(t, sl.Fit(K, s))

	f, err := sl.F()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 2}, f.Shape, "spectrum index appended as the fastest axis")

	coef, err := sl.Coefficients()
	require.NoError(t, err)
	// 张量与系数矩阵只是排布不同
	assert.Equal(t, coef.At(4, 1), f.At(1, 1, 1))
}

// 增大 α 单调增强平滑: 平滑惩罚不升, 解的总变差不升。
func TestAlphaMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	g := grid.Grid{{Count: 6}}
	K := randDense(12, 6, rng)
	s := randDense(12, 1, rng)

	variation := func(alpha float64) float64 {
		sl, err := New(alpha, 1e-8, g)
		require.NoError(t, err)
		sl.Opts.NonNegative = false
		require.NoError(t, sl.Fit(K, s))
		f, err := sl.F()
		require.NoError(t, err)
		tv := 0.0
		for i := 0; i+1 < 6; i++ {
			d := f.At(i) - f.At(i+1)
			tv += d * d
		}
		return tv
	}

	weak := variation(1e-8)
	strong := variation(10.0)
	assert.Less(t, strong, weak, "heavier smoothing must reduce the difference penalty")
}

func TestNotFitted(t *testing.T) {
	g := grid.Grid{{Count: 3}}
	sl, err := New(0, 0, g)
	require.NoError(t, err)

	_, err = sl.F()
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = sl.Coefficients()
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = sl.Predict(identityDense(3))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestConstructorValidation(t *testing.T) {
	g := grid.Grid{{Count: 3}}
	_, err := New(-1, 0, g)
	assert.ErrorIs(t, err, augment.ErrNegativeAlpha)

	_, err = New(0, -1, g)
	assert.ErrorIs(t, err, lasso.ErrNegativeLambda)

	_, err = New(0, 0, grid.Grid{})
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)
}

func TestFitDimensionChecks(t *testing.T) {
	g := grid.Grid{{Count: 3}}
	sl, err := New(0, 0, g)
	require.NoError(t, err)

	K := identityDense(3)
	sBad := mat.NewDense(2, 1, nil)
	assert.ErrorIs(t, sl.Fit(K, sBad), augment.ErrDimMismatch)

	kBad := mat.NewDense(3, 4, nil)
	s := mat.NewDense(3, 1, nil)
	assert.ErrorIs(t, sl.Fit(kBad, s), augment.ErrDimMismatch)
}

func TestZeroSignal(t *testing.T) {
	g := grid.Grid{{Count: 4}}
	K := identityDense(4)
	s := mat.NewDense(4, 1, nil)

	sl, err := New(1e-3, 1e-3, g)
	require.NoError(t, err)
	require.NoError(t, sl.Fit(K, s))

	f, err := sl.F()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, f.At(i))
	}
	assert.False(t, math.IsNaN(f.At(0)), "zero-norm signal must not divide by zero")
}
