package npSpace

import "math"

// np.linspace: num 个点, 含两端
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	out := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop // avoid drift at the endpoint
	return out
}

// np.logspace: 以 10 为底, 指数从 start 到 stop 均匀取 num 个点
func Logspace(start, stop float64, num int) []float64 {
	out := Linspace(start, stop, num)
	for i, e := range out {
		out[i] = math.Pow(10, e)
	}
	return out
}

// Reverse 原地反转并返回切片 (np 的 [::-1])
func Reverse(x []float64) []float64 {
	for l, r := 0, len(x)-1; l < r; l, r = l+1, r-1 {
		x[l], x[r] = x[r], x[l]
	}
	return x
}

// np.argmin, NaN 跳过; 全 NaN 或空切片返回 -1
func Argmin(x []float64) int {
	best := -1
	bestV := math.Inf(1)
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if v < bestV {
			bestV = v
			best = i
		}
	}
	return best
}
