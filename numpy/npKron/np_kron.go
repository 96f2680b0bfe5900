package npKron

import (
	"gonum.org/v1/gonum/mat"
)

// np.kron 的稠密实现: out[i*p+k, j*q+l] = a[i,j] * b[k,l]
// a: (m,n), b: (p,q) → out: (m*p, n*q)
func Kron(a, b *mat.Dense) *mat.Dense {
	am, an := a.Dims()
	bm, bn := b.Dims()
	out := mat.NewDense(am*bm, an*bn, nil)
	for i := 0; i < am; i++ {
		for j := 0; j < an; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			for k := 0; k < bm; k++ {
				for l := 0; l < bn; l++ {
					out.Set(i*bm+k, j*bn+l, v*b.At(k, l))
				}
			}
		}
	}
	return out
}

// np.eye: n 阶单位阵
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// FirstDiff 构造一阶差分算子 A, shape (n-1, n):
// 第 k 行在第 k 列为 +1, 第 k+1 列为 -1, 其余为 0 (np.diff 的矩阵形式)。
// n == 1 时差分行数为 0, gonum 不支持零行矩阵, 返回 nil 表示空算子。
func FirstDiff(n int) *mat.Dense {
	if n <= 1 {
		return nil
	}
	out := mat.NewDense(n-1, n, nil)
	for k := 0; k < n-1; k++ {
		out.Set(k, k, 1)
		out.Set(k, k+1, -1)
	}
	return out
}
