// Package cv sweeps a grid of (alpha, lambda) regularization weights with
// k-fold cross-validation and selects the pair with the lowest held-out
// prediction error.
package cv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/gonum/stat"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"specinv/invert/augment"
	"specinv/invert/grid"
	"specinv/invert/smooth"
	"specinv/ml/lasso"
	"specinv/observe/staticLog"
)

var (
	// ErrInvalidHyperparameter 扫描集为空或含负权重
	ErrInvalidHyperparameter = errors.New("cv: invalid hyperparameter scan set")
	// ErrEmptyFold 折数超过可用观测数 (或 < 2)
	ErrEmptyFold = errors.New("cv: fold count must be in [2, rows]")
	// ErrAllCellsFailed 整个扫描没有任何 (α,λ) 格点收敛
	ErrAllCellsFailed = errors.New("cv: no hyperparameter cell converged")
)

// Config 超参数搜索配置。零值字段取默认: Times=1, NJobs=NumCPU,
// MaxRetries=2 (设为负值禁用重试), Solver=lasso.DefaultOptions()。
type Config struct {
	Alphas  []float64 // 平滑权重扫描集 (≥0, 非空)
	Lambdas []float64 // 稀疏权重扫描集 (≥0, 非空)

	Folds     int   // 折数 k, 2 ≤ k ≤ 观测行数
	Times     int   // 折集重复组数 (独立重复划分)
	Randomize bool  // true 时每组折先打乱观测顺序
	Seed      int64 // 打乱用的种子, 固定种子 ⇒ 折集确定

	Sigma     float64 // 信号噪声标准差: 得分先减 σ² 再取绝对值
	OneStdErr bool    // 一倍标准误规则: 取得分在最小值一个标准误内的最正则化格点

	NJobs      int // 并行 worker 上限
	MaxRetries int // 未收敛格点的额外重试次数 (每次 tol×10, 迭代×2)

	Solver lasso.Options
}

// Result 完整 (p×q) 得分面与选中的超参数对。
// 失败格点的得分与标准误均为 NaN, 绝不以零充数; 被取消的扫描返回的
// 部分结果同样以 NaN 标记未计算格点。
type Result struct {
	Alpha  float64 // 选中的平滑权重
	Lambda float64 // 选中的稀疏权重

	AlphaIndex  int // 在 Alphas 中的下标, 无可选格点时为 -1
	LambdaIndex int

	Scores  *mat.Dense // (len(Alphas) × len(Lambdas)) 折均得分
	StdErrs *mat.Dense // 对应标准误

	Alphas  []float64 // 扫描轴拷贝, 供下游画热力图
	Lambdas []float64
}

// Search 对每个 (α,λ) 格点做 k 折交叉验证并选择最优对。
//
// 平滑算子只依赖 Grid, 在所有折与格点间构建一次、只读共享。每个格点由
// 一个 worker 独立求解, 只写自己的得分面单元, 无共享可变状态。取消在
// 格点粒度生效: ctx 取消后不再派发新格点, 已算出的部分得分面随
// ctx.Err() 一并返回。
func Search(ctx context.Context, K, s *mat.Dense, g grid.Grid, cfg Config) (*Result, error) {
	if len(cfg.Alphas) == 0 || len(cfg.Lambdas) == 0 {
		return nil, fmt.Errorf("%w: empty scan set", ErrInvalidHyperparameter)
	}
	for _, a := range cfg.Alphas {
		if a < 0 || math.IsNaN(a) {
			return nil, fmt.Errorf("%w: alpha %g", ErrInvalidHyperparameter, a)
		}
	}
	for _, l := range cfg.Lambdas {
		if l < 0 || math.IsNaN(l) {
			return nil, fmt.Errorf("%w: lambda %g", ErrInvalidHyperparameter, l)
		}
	}

	m, n := K.Dims()
	ms, _ := s.Dims()
	if ms != m {
		return nil, fmt.Errorf("%w: K has %d rows, s has %d", augment.ErrDimMismatch, m, ms)
	}
	if gn := g.Size(); gn != n {
		return nil, fmt.Errorf("%w: K has %d columns, grid size %d", augment.ErrDimMismatch, n, gn)
	}
	if cfg.Folds < 2 || cfg.Folds > m {
		return nil, fmt.Errorf("%w: got %d folds for %d rows", ErrEmptyFold, cfg.Folds, m)
	}

	times := cfg.Times
	if times <= 0 {
		times = 1
	}
	njobs := cfg.NJobs
	if njobs <= 0 {
		njobs = runtime.NumCPU()
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 2
	} else if retries < 0 {
		retries = 0
	}
	solverOpts := cfg.Solver
	if solverOpts.MaxIter <= 0 || solverOpts.Tol <= 0 {
		def := lasso.DefaultOptions()
		if solverOpts.MaxIter <= 0 {
			solverOpts.MaxIter = def.MaxIter
		}
		if solverOpts.Tol <= 0 {
			solverOpts.Tol = def.Tol
		}
	}

	// 算子集合为整次搜索构建一次, 作为参数传给所有 worker (只读)
	ops, err := smooth.Operators(g)
	if err != nil {
		return nil, err
	}

	folds := buildFolds(m, cfg.Folds, times, cfg.Randomize, cfg.Seed)

	p, q := len(cfg.Alphas), len(cfg.Lambdas)
	res := &Result{
		AlphaIndex:  -1,
		LambdaIndex: -1,
		Scores:      nanDense(p, q),
		StdErrs:     nanDense(p, q),
		Alphas:      append([]float64(nil), cfg.Alphas...),
		Lambdas:     append([]float64(nil), cfg.Lambdas...),
	}

	staticLog.Log.Infof("cv: sweeping %d×%d pairs, %d folds × %d, %d workers", p, q, cfg.Folds, times, njobs)

	eg := new(errgroup.Group)
	eg.SetLimit(njobs)
	canceled := false
sweep:
	for ai := range cfg.Alphas {
		for li := range cfg.Lambdas {
			if ctx.Err() != nil {
				canceled = true
				break sweep
			}
			ai, li := ai, li
			eg.Go(func() error {
				mean, se, err := scorePair(K, s, ops, folds, cfg.Alphas[ai], cfg.Lambdas[li], solverOpts, retries, cfg.Sigma)
				if err != nil {
					return err
				}
				// 每个 worker 只写自己独占的单元
				res.Scores.Set(ai, li, mean)
				res.StdErrs.Set(ai, li, se)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if canceled {
		selectPair(res, cfg.OneStdErr)
		return res, ctx.Err()
	}

	selectPair(res, cfg.OneStdErr)
	if res.AlphaIndex < 0 {
		return res, ErrAllCellsFailed
	}
	staticLog.Log.Infof("cv: selected alpha=%.3e lambda=%.3e (score %.6e)",
		res.Alpha, res.Lambda, res.Scores.At(res.AlphaIndex, res.LambdaIndex))
	return res, nil
}

// scorePair 一个 (α,λ) 格点: 逐折增广、拟合、以 held-out 均方残差计分,
// 再聚合均值与标准误。任何一折重试后仍未收敛 ⇒ 整格点 NaN。
func scorePair(K, s *mat.Dense, ops []*mat.Dense, folds []foldSplit, alpha, lambda float64, opts lasso.Options, retries int, sigma float64) (mean, se float64, err error) {
	scores := make([]float64, len(folds))
	for fi, fs := range folds {
		kin := rowSubset(K, fs.in)
		sin := rowSubset(s, fs.in)

		kaug, saug, aerr := augment.System(kin, sin, ops, alpha)
		if aerr != nil {
			return 0, 0, aerr
		}

		f, serr := solveWithRetry(kaug, saug, lambda, opts, retries)
		if serr != nil {
			if errors.Is(serr, lasso.ErrNonConvergence) {
				staticLog.Log.Infof("warning cv: alpha=%.3e lambda=%.3e fold %d dropped: %v", alpha, lambda, fi, serr)
				scores[fi] = math.NaN()
				continue
			}
			return 0, 0, serr
		}
		scores[fi] = heldOutMSE(K, s, fs.out, f)
	}

	for _, v := range scores {
		if math.IsNaN(v) {
			return math.NaN(), math.NaN(), nil
		}
	}
	mean = stat.Mean(scores, nil)
	mean = math.Abs(mean - sigma*sigma)
	se = stat.StdDev(scores, nil) / math.Sqrt(float64(len(scores)))
	return mean, se, nil
}

// solveWithRetry 未收敛时按放宽策略重试有限次: tol ×10, 迭代预算 ×2。
func solveWithRetry(kaug, saug *mat.Dense, lambda float64, opts lasso.Options, retries int) (*mat.Dense, error) {
	var f *mat.Dense
	var err error
	for attempt := 0; ; attempt++ {
		f, err = lasso.Solve(kaug, saug, lambda, opts)
		if err == nil || !errors.Is(err, lasso.ErrNonConvergence) || attempt >= retries {
			return f, err
		}
		opts.Tol *= 10
		opts.MaxIter *= 2
	}
}

// heldOutMSE 在 held-out 行上评估: ‖K_out·f − s_out‖² / (行数×谱数)。
func heldOutMSE(K, s *mat.Dense, out []int, f *mat.Dense) float64 {
	_, n := K.Dims()
	_, r := s.Dims()
	rss := 0.0
	for _, row := range out {
		for c := 0; c < r; c++ {
			pred := 0.0
			for j := 0; j < n; j++ {
				pred += K.At(row, j) * f.At(j, c)
			}
			d := s.At(row, c) - pred
			rss += d * d
		}
	}
	return rss / float64(len(out)*r)
}

func rowSubset(a *mat.Dense, rows []int) *mat.Dense {
	_, c := a.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, row := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(row, j))
		}
	}
	return out
}

func nanDense(r, c int) *mat.Dense {
	d := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.Set(i, j, math.NaN())
		}
	}
	return d
}
