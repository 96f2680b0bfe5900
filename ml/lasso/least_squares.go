package lasso

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"specinv/observe/staticLog"
)

// ErrSVDFailed SVD 分解失败 (病态到无法分解的输入)
var ErrSVDFailed = errors.New("lasso: SVD factorization failed")

// LeastSquares 求 λ=0 的闭式解 f = (KᵀK)⁻¹Kᵀs。调用方传入的是岭增广系统时,
// 这就是岭回归解。KᵀK 不可逆时退回 SVD 广义逆。
func LeastSquares(K, s *mat.Dense) (*mat.Dense, error) {
	m, n := K.Dims()
	ms, r := s.Dims()
	if ms != m {
		return nil, fmt.Errorf("%w: K has %d rows, s has %d", ErrDimMismatch, m, ms)
	}

	var kt mat.Dense
	kt.CloneFrom(K.T())

	var ktk mat.Dense
	ktk.Mul(&kt, K)

	var inv mat.Dense
	if err := inv.Inverse(&ktk); err != nil {
		staticLog.Log.Infof("warning KᵀK singular (%v), falling back to pseudo-inverse", err)
		pinv, errSVD := pseudoInverse(&ktk)
		if errSVD != nil {
			return nil, errSVD
		}
		inv.CloneFrom(pinv)
	}

	var kts mat.Dense
	kts.Mul(&kt, s)

	f := mat.NewDense(n, r, nil)
	f.Mul(&inv, &kts)
	return f, nil
}

// pseudoInverse 用 SVD 求广义逆 A⁺ = V·Σ⁺·Uᵀ, 小奇异值按 1e-12 截断。
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrSVDFailed
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sigma := svd.Values(nil)
	m, n := a.Dims()
	sInv := mat.NewDense(n, m, nil)

	const tol = 1e-12
	for i, val := range sigma {
		if val > tol {
			sInv.Set(i, i, 1.0/val)
		}
	}

	var tmp mat.Dense
	tmp.Mul(&v, sInv)
	var ut mat.Dense
	ut.CloneFrom(u.T())

	var pinv mat.Dense
	pinv.Mul(&tmp, &ut)
	return &pinv, nil
}
