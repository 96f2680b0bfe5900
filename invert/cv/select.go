package cv

import "math"

// selectPair 在得分面上选最优 (α,λ), 结果写回 res。
//
// 基本规则: 均值最小的格点, NaN 跳过。并列时取固定的行主序
// (α 外层、λ 内层) 中先遇到的格点, 与容器遍历顺序无关。
//
// oneStdErr=true 时改用一倍标准误规则: 在均值 ≤ 最小均值+其标准误的
// 格点中, 取正则化最强的一个: 先比 α 值大者, 再比 λ 值大者;
// 两者都相同的并列仍按行主序先到先得。该规则用少量拟合换稀疏,
// 选出的模型与纯最小值规则可能不同。
func selectPair(res *Result, oneStdErr bool) {
	p, q := res.Scores.Dims()

	bestA, bestL := -1, -1
	bestV := math.Inf(1)
	for ai := 0; ai < p; ai++ {
		for li := 0; li < q; li++ {
			v := res.Scores.At(ai, li)
			if math.IsNaN(v) {
				continue
			}
			if v < bestV {
				bestV = v
				bestA, bestL = ai, li
			}
		}
	}
	if bestA < 0 {
		res.AlphaIndex, res.LambdaIndex = -1, -1
		return
	}

	if oneStdErr {
		thr := bestV + res.StdErrs.At(bestA, bestL)
		regA, regL := bestA, bestL
		for ai := 0; ai < p; ai++ {
			for li := 0; li < q; li++ {
				v := res.Scores.At(ai, li)
				if math.IsNaN(v) || v > thr {
					continue
				}
				a, l := res.Alphas[ai], res.Lambdas[li]
				switch {
				case a > res.Alphas[regA]:
					regA, regL = ai, li
				case a == res.Alphas[regA] && l > res.Lambdas[regL]:
					regA, regL = ai, li
				}
			}
		}
		bestA, bestL = regA, regL
	}

	res.AlphaIndex, res.LambdaIndex = bestA, bestL
	res.Alpha = res.Alphas[bestA]
	res.Lambda = res.Lambdas[bestL]
}
