// Package smoothlasso is the user-facing entry point of the inversion
// engine. It recovers a smooth, sparse distribution f on an n-dimensional
// grid from a measured spectrum s and an externally supplied kernel K by
// minimizing
//
//	‖Kf−s‖² + α·Σ‖J_i f‖² + λ‖f‖₁
//
// where the J_i are dimension-wise first-difference operators. All heavy
// numeric work is delegated to invert/smooth, invert/augment, ml/lasso and
// invert/cv; this package only sequences them, scales the signal and keeps
// the shape bookkeeping.
package smoothlasso

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"specinv/invert/augment"
	"specinv/invert/grid"
	"specinv/invert/smooth"
	"specinv/ml/lasso"
)

// ErrNotFitted 在 Fit 成功之前调用 F/Predict/Residuals
var ErrNotFitted = errors.New("smoothlasso: model is not fitted")

// SmoothLasso 固定 (α,λ) 的一次反演。Fit 之后 f 只读。
type SmoothLasso struct {
	Alpha  float64
	Lambda float64
	Opts   lasso.Options

	g   grid.Grid
	ops []*mat.Dense // 由 Grid 导出, 首次 Fit 构建后整个生命周期复用
	f   *mat.Dense   // n×r, 已恢复到输入信号的量纲
}

// New 构造固定超参数的模型。求解器参数取当前 Settings 的默认值,
// 可在 Fit 之前直接改写 Opts 字段。
func New(alpha, lambda float64, g grid.Grid) (*SmoothLasso, error) {
	if alpha < 0 {
		return nil, fmt.Errorf("%w: got %g", augment.ErrNegativeAlpha, alpha)
	}
	if lambda < 0 {
		return nil, fmt.Errorf("%w: got %g", lasso.ErrNegativeLambda, lambda)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	set := CurrentSettings()
	return &SmoothLasso{
		Alpha:  alpha,
		Lambda: lambda,
		Opts: lasso.Options{
			MaxIter:     set.MaxIterations,
			Tol:         set.Tolerance,
			NonNegative: set.NonNegative,
		},
		g: g,
	}, nil
}

// Fit 求解系数矩阵 f (每个谱一列)。
//
// 信号在求解前除以其 Frobenius 范数, 解回乘同一因子, 让 λ 的量纲与
// 数据尺度解耦。未收敛时 f 仍为当前最优近似并返回
// lasso.ErrNonConvergence (可放宽 Opts 后重试, 不视为致命)。
func (sl *SmoothLasso) Fit(K, s *mat.Dense) error {
	m, n := K.Dims()
	ms, _ := s.Dims()
	if ms != m {
		return fmt.Errorf("%w: K has %d rows, s has %d", augment.ErrDimMismatch, m, ms)
	}
	if gn := sl.g.Size(); gn != n {
		return fmt.Errorf("%w: K has %d columns, grid size %d", augment.ErrDimMismatch, n, gn)
	}

	if sl.ops == nil {
		ops, err := smooth.Operators(sl.g)
		if err != nil {
			return err
		}
		sl.ops = ops
	}

	scale := mat.Norm(s, 2)
	if scale == 0 {
		scale = 1
	}
	var sscaled mat.Dense
	sscaled.Scale(1/scale, s)

	kaug, saug, err := augment.System(K, &sscaled, sl.ops, sl.Alpha)
	if err != nil {
		return err
	}

	f, err := lasso.Solve(kaug, saug, sl.Lambda, sl.Opts)
	if f != nil {
		f.Scale(scale, f)
		sl.f = f
	}
	return err
}

// Coefficients 返回展平系数矩阵 (n×r), 调用方按只读处理。
func (sl *SmoothLasso) Coefficients() (*mat.Dense, error) {
	if sl.f == nil {
		return nil, ErrNotFitted
	}
	return sl.f, nil
}

// F 把解 reshape 回网格张量, 维度顺序与 Grid 一致 (行主序, 第 0 维最慢)。
// 多谱时在末尾追加谱维 (最快变化)。
func (sl *SmoothLasso) F() (grid.Tensor, error) {
	if sl.f == nil {
		return grid.Tensor{}, ErrNotFitted
	}
	n, r := sl.f.Dims()
	if r == 1 {
		return sl.g.Reshape(mat.Col(nil, 0, sl.f))
	}
	data := make([]float64, n*r)
	for idx := 0; idx < n; idx++ {
		for c := 0; c < r; c++ {
			data[idx*r+c] = sl.f.At(idx, c)
		}
	}
	shape := append(sl.g.Shape(), r)
	return grid.Tensor{Shape: shape, Data: data}, nil
}

// Predict 计算 K·f。
func (sl *SmoothLasso) Predict(K *mat.Dense) (*mat.Dense, error) {
	if sl.f == nil {
		return nil, ErrNotFitted
	}
	n, _ := sl.f.Dims()
	if _, kc := K.Dims(); kc != n {
		return nil, fmt.Errorf("%w: K has %d columns, f has %d rows", augment.ErrDimMismatch, kc, n)
	}
	var pred mat.Dense
	pred.Mul(K, sl.f)
	return &pred, nil
}

// Residuals 返回 s − K·f, 供诊断与画图。
func (sl *SmoothLasso) Residuals(K, s *mat.Dense) (*mat.Dense, error) {
	pred, err := sl.Predict(K)
	if err != nil {
		return nil, err
	}
	pr, pc := pred.Dims()
	sr, sc := s.Dims()
	if sr != pr || sc != pc {
		return nil, fmt.Errorf("%w: prediction is %d×%d, s is %d×%d", augment.ErrDimMismatch, pr, pc, sr, sc)
	}
	var res mat.Dense
	res.Sub(s, pred)
	return &res, nil
}
