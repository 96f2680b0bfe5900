// Package augment assembles the augmented least-squares system that folds
// the L2 smoothness penalty into extra kernel rows, reducing
//
//	min ‖Kf−s‖² + α·Σ‖J_i f‖² + λ‖f‖₁
//
// to a pure L1-penalized problem on the stacked system:
//
//	‖K'f − s'‖² = ‖Kf−s‖² + α·Σ‖J_i f‖²   (exact, Σ‖√α J_i f‖² 的分块恒等式)
package augment

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"specinv/invert/smooth"
)

var (
	// ErrDimMismatch K、s、或算子形状不一致
	ErrDimMismatch = errors.New("augment: dimension mismatch")
	// ErrNegativeAlpha 平滑权重必须非负
	ErrNegativeAlpha = errors.New("augment: smoothness weight alpha must be >= 0")
)

// System 把 K (m×n) 与每个 √α·J_i 垂直堆叠成 K', 并给 s (m×r) 追加对应的
// 零行得到 s'。nil 算子 (单点维度) 直接跳过。α==0 或算子集为空时返回的
// K'/s' 即为 K/s 的拷贝。
func System(K, s *mat.Dense, ops []*mat.Dense, alpha float64) (*mat.Dense, *mat.Dense, error) {
	if alpha < 0 {
		return nil, nil, fmt.Errorf("%w: got %g", ErrNegativeAlpha, alpha)
	}
	m, n := K.Dims()
	ms, r := s.Dims()
	if ms != m {
		return nil, nil, fmt.Errorf("%w: K has %d rows, s has %d", ErrDimMismatch, m, ms)
	}
	for i, op := range ops {
		if op == nil {
			continue
		}
		if _, c := op.Dims(); c != n {
			return nil, nil, fmt.Errorf("%w: operator %d has %d columns, K has %d", ErrDimMismatch, i, c, n)
		}
	}

	extra := smooth.Rows(ops)
	kaug := mat.NewDense(m+extra, n, nil)
	saug := mat.NewDense(m+extra, r, nil)
	kaug.Slice(0, m, 0, n).(*mat.Dense).Copy(K)
	saug.Slice(0, m, 0, r).(*mat.Dense).Copy(s)

	sqrtA := math.Sqrt(alpha)
	row := m
	for _, op := range ops {
		if op == nil {
			continue
		}
		or, _ := op.Dims()
		block := kaug.Slice(row, row+or, 0, n).(*mat.Dense)
		block.Scale(sqrtA, op)
		row += or
	}
	// s' 的追加行保持为零: min ‖J_i f − 0‖² 正是平滑惩罚
	return kaug, saug, nil
}
