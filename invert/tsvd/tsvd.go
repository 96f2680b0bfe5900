// Package tsvd compresses an inversion problem with a truncated singular
// value decomposition of the kernel. Factoring K = U·Σ·Vᵀ and keeping the
// r leading singular values maps (K, s) to the equivalent, much smaller
// system (Σ_r·V_rᵀ, U_rᵀ·s) before the expensive hyperparameter sweep.
package tsvd

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimMismatch K 与 s 行数不一致
	ErrDimMismatch = errors.New("tsvd: K and s row counts differ")
	// ErrSVDFailed SVD 分解失败
	ErrSVDFailed = errors.New("tsvd: SVD factorization failed")
	// ErrBadTruncation 截断数超出奇异值个数
	ErrBadTruncation = errors.New("tsvd: truncation index out of range")
)

// Compression 截断 SVD 压缩结果。K/S 即可直接替换原 (K, s) 参与反演,
// 解向量 f 不变 (列空间未动)。
type Compression struct {
	K *mat.Dense // Σ_r·V_rᵀ, shape (r, n)
	S *mat.Dense // U_rᵀ·s, shape (r, 谱数)

	TruncationIndex int       // 保留的奇异值个数 r
	Values          []float64 // 全部奇异值, 降序
	rowsIn          int
}

// CompressionFactor 原行数 / 压缩后行数。
func (c *Compression) CompressionFactor() float64 {
	return float64(c.rowsIn) / float64(c.TruncationIndex)
}

// Compress 压缩 (K, s)。trunc <= 0 时自动按数值秩截断:
// 保留 σ_i > σ_max · max(m,n) · 2^-52 的奇异值 (LAPACK 惯例)。
func Compress(K, s *mat.Dense, trunc int) (*Compression, error) {
	m, n := K.Dims()
	ms, r := s.Dims()
	if ms != m {
		return nil, fmt.Errorf("%w: K has %d rows, s has %d", ErrDimMismatch, m, ms)
	}

	var svd mat.SVD
	if ok := svd.Factorize(K, mat.SVDThin); !ok {
		return nil, ErrSVDFailed
	}
	values := svd.Values(nil)

	if trunc <= 0 {
		trunc = numericalRank(values, m, n)
	}
	if trunc < 1 || trunc > len(values) {
		return nil, fmt.Errorf("%w: %d of %d singular values", ErrBadTruncation, trunc, len(values))
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// K̃ = Σ_r·V_rᵀ: 取 Vᵀ 的前 r 行, 逐行乘 σ_i
	kc := mat.NewDense(trunc, n, nil)
	for i := 0; i < trunc; i++ {
		for j := 0; j < n; j++ {
			kc.Set(i, j, values[i]*v.At(j, i))
		}
	}

	// s̃ = U_rᵀ·s
	sc := mat.NewDense(trunc, r, nil)
	for i := 0; i < trunc; i++ {
		for c := 0; c < r; c++ {
			sum := 0.0
			for k := 0; k < m; k++ {
				sum += u.At(k, i) * s.At(k, c)
			}
			sc.Set(i, c, sum)
		}
	}

	return &Compression{
		K:               kc,
		S:               sc,
		TruncationIndex: trunc,
		Values:          values,
		rowsIn:          m,
	}, nil
}

const machEps = 2.220446049250313e-16

func numericalRank(values []float64, m, n int) int {
	if len(values) == 0 {
		return 0
	}
	dim := m
	if n > dim {
		dim = n
	}
	tol := values[0] * float64(dim) * machEps
	rank := 0
	for _, v := range values {
		if v > tol {
			rank++
		}
	}
	if rank == 0 {
		rank = 1
	}
	return rank
}
