// Package smooth builds the dimension-wise first-difference operators used
// as the L2 smoothness penalty of the smooth-LASSO objective.
package smooth

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"specinv/invert/grid"
	"specinv/numpy/npKron"
)

// Operators 为网格的每个维度构造 Kronecker 展开的一阶差分算子:
//
//	J_i = I_{n_1} ⊗ … ⊗ A_{n_i} ⊗ … ⊗ I_{n_d}
//
// A_{n_i} 是 (n_i-1)×n_i 的一阶差分阵。J_i 作用在行主序展平
// (第 0 维最慢) 的解向量上, shape 恒为 ((n_i-1)·n/n_i, n)。
// d==1 时 J_1 = A_{n_1}; n_i==1 的维度差分行数为 0, 对应槽位为 nil,
// 该轴不贡献平滑惩罚。
//
// 纯函数: 只依赖 Grid, 结果可在所有超参数/折之间只读复用。
func Operators(g grid.Grid) ([]*mat.Dense, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	ops := make([]*mat.Dense, len(g))
	for i := range g {
		diff := npKron.FirstDiff(g[i].Count)
		if diff == nil {
			continue // single-point axis, empty operator
		}
		// 迭代折叠: 先把左侧所有维度折成一个单位阵, 再依次右乘
		pre, post := 1, 1
		for j := 0; j < i; j++ {
			pre *= g[j].Count
		}
		for j := i + 1; j < len(g); j++ {
			post *= g[j].Count
		}
		op := diff
		if pre > 1 {
			op = npKron.Kron(npKron.Eye(pre), op)
		}
		if post > 1 {
			op = npKron.Kron(op, npKron.Eye(post))
		}
		ops[i] = op
	}
	return ops, nil
}

// Rows 算子集合的总行数, nil 槽位计 0。
func Rows(ops []*mat.Dense) int {
	total := 0
	for _, op := range ops {
		if op == nil {
			continue
		}
		r, _ := op.Dims()
		total += r
	}
	return total
}

// Penalty 计算 Σ‖J_i f‖², 即 α=1 时的平滑惩罚值。
func Penalty(ops []*mat.Dense, f []float64) float64 {
	total := 0.0
	for _, op := range ops {
		if op == nil {
			continue
		}
		r, _ := op.Dims()
		for i := 0; i < r; i++ {
			s := floats.Dot(op.RawRowView(i), f)
			total += s * s
		}
	}
	return total
}
