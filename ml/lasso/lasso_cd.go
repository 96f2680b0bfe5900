package lasso

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Package: lasso
// 说明: 坐标下降求解 L1 正则最小二乘。调用方先把 L2 平滑惩罚折叠进增广
// 系统 (invert/augment), 这里只处理纯 LASSO 目标。
//
// 归一化约定 (固定且随 API 文档发布, 影响 λ 的有效尺度):
//
//	(1/(2M))·‖Kf − s‖² + λ·‖f‖₁,  M = 传入系统的行数 (增广后的行数)
//
// - 无截距、不做列标准化: 核矩阵的列是物理基函数, 重新中心化会破坏前向模型。
// - 扫描顺序固定为列 0..n-1, 结果对输入确定 (无随机初始化)。
// - λ == 0 退化为普通 (岭增广) 最小二乘, 走闭式解快速路径。
// - λ ≥ LambdaMax 时所有系数被软阈值压成 0。

var (
	// ErrNonConvergence 迭代预算耗尽仍未达到容差, 返回的解是截至当前的最优近似
	ErrNonConvergence = errors.New("lasso: coordinate descent did not converge")
	// ErrNegativeLambda 稀疏权重必须非负
	ErrNegativeLambda = errors.New("lasso: sparsity weight lambda must be >= 0")
	// ErrDimMismatch K 与 s 的行数不一致
	ErrDimMismatch = errors.New("lasso: K and s row counts differ")
)

// Options 求解器参数。
type Options struct {
	MaxIter     int     // 最大全列扫描次数
	Tol         float64 // 收敛容差: 单轮最大系数变化
	NonNegative bool    // 解约束在 f >= 0 (软阈值后截断)
}

// DefaultOptions 与 sklearn 量级一致的默认预算。
func DefaultOptions() Options {
	return Options{MaxIter: 10000, Tol: 1e-5}
}

// softThreshold: S(z, a) = sign(z) * max(|z|-a, 0)
func softThreshold(z, a float64) float64 {
	if z > a {
		return z - a
	}
	if z < -a {
		return z + a
	}
	return 0
}

// LambdaMax 返回使全零解成为最优的最小 λ: max_j |K_jᵀ s| / M (多谱取列最大)。
// 用于构造 λ 扫描网格的上界。
func LambdaMax(K, s *mat.Dense) float64 {
	m, n := K.Dims()
	_, r := s.Dims()
	best := 0.0
	for j := 0; j < n; j++ {
		for c := 0; c < r; c++ {
			dot := 0.0
			for i := 0; i < m; i++ {
				dot += K.At(i, j) * s.At(i, c)
			}
			if v := math.Abs(dot) / float64(m); v > best {
				best = v
			}
		}
	}
	return best
}

// Solve 最小化 (1/(2M))‖Kf−s‖² + λ‖f‖₁, 返回 n×r 的系数矩阵 (每个谱一列)。
// 多谱共享列范数预计算, 逐列独立下降。未收敛时返回当前最优解并附带
// ErrNonConvergence (可重试, 不是致命错误)。
func Solve(K, s *mat.Dense, lambda float64, opts Options) (*mat.Dense, error) {
	if lambda < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrNegativeLambda, lambda)
	}
	m, n := K.Dims()
	ms, r := s.Dims()
	if ms != m {
		return nil, fmt.Errorf("%w: K has %d rows, s has %d", ErrDimMismatch, m, ms)
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultOptions().MaxIter
	}
	if opts.Tol <= 0 {
		opts.Tol = DefaultOptions().Tol
	}

	if lambda == 0 && !opts.NonNegative {
		return LeastSquares(K, s)
	}

	// gj = (1/M)·‖K_j‖², 所有右端共享
	gj := make([]float64, n)
	for j := 0; j < n; j++ {
		sum := 0.0
		for i := 0; i < m; i++ {
			v := K.At(i, j)
			sum += v * v
		}
		gj[j] = sum / float64(m)
		if gj[j] == 0 {
			gj[j] = 1e-8
		}
	}

	f := mat.NewDense(n, r, nil)
	var firstErr error
	for c := 0; c < r; c++ {
		col, err := descendColumn(K, s, c, lambda, gj, opts)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		for j := 0; j < n; j++ {
			f.Set(j, c, col[j])
		}
	}
	return f, firstErr
}

// descendColumn 对单个右端列做坐标下降, 残差缓存避免整列重算。
func descendColumn(K, s *mat.Dense, col int, lambda float64, gj []float64, opts Options) ([]float64, error) {
	m, n := K.Dims()
	beta := make([]float64, n)

	// f=0 起步, 残差即信号列
	resid := make([]float64, m)
	for i := 0; i < m; i++ {
		resid[i] = s.At(i, col)
	}

	for it := 0; it < opts.MaxIter; it++ {
		maxChange := 0.0
		for j := 0; j < n; j++ {
			// ρ_j = (1/M)·K_jᵀ(resid) + gj·β_j  (把第 j 列从残差中解出)
			rho := 0.0
			for i := 0; i < m; i++ {
				rho += K.At(i, j) * resid[i]
			}
			rho = rho/float64(m) + gj[j]*beta[j]

			newB := softThreshold(rho, lambda) / gj[j]
			if opts.NonNegative && newB < 0 {
				newB = 0
			}
			if math.IsNaN(newB) || math.IsInf(newB, 0) {
				newB = 0
			}
			if d := newB - beta[j]; d != 0 {
				for i := 0; i < m; i++ {
					resid[i] -= d * K.At(i, j)
				}
				if ad := math.Abs(d); ad > maxChange {
					maxChange = ad
				}
				beta[j] = newB
			}
		}
		if maxChange < opts.Tol {
			return beta, nil
		}
	}
	return beta, fmt.Errorf("%w: column %d after %d sweeps (tol=%g)",
		ErrNonConvergence, col, opts.MaxIter, opts.Tol)
}
