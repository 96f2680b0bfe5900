package cv

import "math/rand"

// foldSplit 一折的行索引划分。
type foldSplit struct {
	in  []int // held-in 训练行
	out []int // held-out 评估行
}

// buildFolds 把 m 行观测划成 folds 折, 重复 times 组。
// randomize=false 时用确定性跨步: 第 f 折的评估行为 {i : i mod folds == f},
// 与 numpy 的 index[f::folds] 一致; randomize=true 时每组先按 seed+组号
// Fisher-Yates 打乱再跨步, 折集固定后在所有 (α,λ) 间复用。
func buildFolds(m, folds, times int, randomize bool, seed int64) []foldSplit {
	splits := make([]foldSplit, 0, folds*times)
	for t := 0; t < times; t++ {
		perm := make([]int, m)
		for i := range perm {
			perm[i] = i
		}
		if randomize {
			rng := rand.New(rand.NewSource(seed + int64(t)))
			rng.Shuffle(m, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		}
		for f := 0; f < folds; f++ {
			var in, out []int
			for i, row := range perm {
				if i%folds == f {
					out = append(out, row)
				} else {
					in = append(in, row)
				}
			}
			splits = append(splits, foldSplit{in: in, out: out})
		}
	}
	return splits
}
