package npKron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestKronKnownProduct(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{0, 5, 6, 7})

	got := Kron(a, b)
	want := mat.NewDense(4, 4, []float64{
		0, 5, 0, 10,
		6, 7, 12, 14,
		0, 15, 0, 20,
		18, 21, 24, 28,
	})
	assert.True(t, mat.Equal(got, want), "kron product mismatch:\n%v", mat.Formatted(got))
}

func TestKronShape(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	b := mat.NewDense(4, 5, nil)
	r, c := Kron(a, b).Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 15, c)
}

func TestKronIdentityFactors(t *testing.T) {
	// I ⊗ I = I
	got := Kron(Eye(2), Eye(3))
	assert.True(t, mat.Equal(got, Eye(6)))
}

func TestEye(t *testing.T) {
	e := Eye(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.Equal(t, want, e.At(i, j))
		}
	}
}

func TestFirstDiff(t *testing.T) {
	d := FirstDiff(4)
	require.NotNil(t, d)
	r, c := d.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 4, c)

	// 行 k: +1 在 k 列, -1 在 k+1 列
	for k := 0; k < 3; k++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if j == k {
				want = 1.0
			} else if j == k+1 {
				want = -1.0
			}
			assert.Equal(t, want, d.At(k, j), "row %d col %d", k, j)
		}
	}
}

func TestFirstDiffSinglePoint(t *testing.T) {
	assert.Nil(t, FirstDiff(1), "single-point axis has an empty difference operator")
	assert.Nil(t, FirstDiff(0))
}
