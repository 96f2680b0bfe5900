package smoothlasso

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"specinv/invert/cv"
	"specinv/invert/grid"
	"specinv/ml/lasso"
	"specinv/numpy/npSpace"
)

// DefaultLambdas 默认稀疏权重扫描集: 10 个对数等距点,
// 从 1e-4 降到 1e-9 (降序, 先试强正则)。
func DefaultLambdas() []float64 {
	return npSpace.Reverse(npSpace.Logspace(-9, -4, 10))
}

// DefaultAlphas 平滑权重扫描集, 量级同上。
func DefaultAlphas() []float64 {
	return npSpace.Reverse(npSpace.Logspace(-9, -4, 10))
}

// SmoothLassoCV 先在 (α,λ) 网格上做 k 折交叉验证, 再以胜出对在全量数据上
// 重拟合。Config 在 Fit 之前可改 (Sigma、Randomize、OneStdErr 等);
// Alphas/Lambdas/Folds/NJobs/Solver 由构造函数按当前 Settings 填好。
type SmoothLassoCV struct {
	Config cv.Config

	g    grid.Grid
	best *SmoothLasso
	res  *cv.Result
}

// NewCV 构造交叉验证模型。alphas/lambdas 传 nil 用默认扫描集。
func NewCV(alphas, lambdas []float64, g grid.Grid) (*SmoothLassoCV, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if alphas == nil {
		alphas = DefaultAlphas()
	}
	if lambdas == nil {
		lambdas = DefaultLambdas()
	}
	set := CurrentSettings()
	return &SmoothLassoCV{
		Config: cv.Config{
			Alphas:  alphas,
			Lambdas: lambdas,
			Folds:   set.Folds,
			NJobs:   set.Jobs,
			Solver: lasso.Options{
				MaxIter:     set.MaxIterations,
				Tol:         set.Tolerance,
				NonNegative: set.NonNegative,
			},
		},
		g: g,
	}, nil
}

// Fit 执行搜索并在全量数据上重拟合胜出超参数对。
//
// 信号先除以 Frobenius 范数再进入搜索 (Sigma 同步换算到缩放后的量纲),
// 重拟合走 SmoothLasso.Fit 自己的缩放。扫描被 ctx 取消时返回 ctx 错误,
// 已算出的部分得分面仍可从 Result() 读取 (未计算格点为 NaN)。
func (m *SmoothLassoCV) Fit(ctx context.Context, K, s *mat.Dense) error {
	scale := mat.Norm(s, 2)
	if scale == 0 {
		scale = 1
	}
	var sscaled mat.Dense
	sscaled.Scale(1/scale, s)

	cfg := m.Config
	cfg.Sigma = cfg.Sigma / scale

	res, err := cv.Search(ctx, K, &sscaled, m.g, cfg)
	m.res = res
	if err != nil {
		return fmt.Errorf("smoothlasso: hyperparameter search: %w", err)
	}

	best, err := New(res.Alpha, res.Lambda, m.g)
	if err != nil {
		return err
	}
	best.Opts = m.Config.Solver
	if err := best.Fit(K, s); err != nil {
		return err
	}
	m.best = best
	return nil
}

// Alpha 选中的平滑权重。
func (m *SmoothLassoCV) Alpha() float64 { return m.res.Alpha }

// Lambda 选中的稀疏权重。
func (m *SmoothLassoCV) Lambda() float64 { return m.res.Lambda }

// Result 完整得分面与扫描轴 (失败/未计算格点为 NaN), 适合直接画热力图。
func (m *SmoothLassoCV) Result() *cv.Result { return m.res }

// F 胜出模型的网格张量解。
func (m *SmoothLassoCV) F() (grid.Tensor, error) {
	if m.best == nil {
		return grid.Tensor{}, ErrNotFitted
	}
	return m.best.F()
}

// Coefficients 胜出模型的展平系数。
func (m *SmoothLassoCV) Coefficients() (*mat.Dense, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Coefficients()
}

// Predict 胜出模型的 K·f。
func (m *SmoothLassoCV) Predict(K *mat.Dense) (*mat.Dense, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(K)
}

// Residuals 胜出模型的 s − K·f。
func (m *SmoothLassoCV) Residuals(K, s *mat.Dense) (*mat.Dense, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Residuals(K, s)
}
