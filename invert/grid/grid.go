package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGrid 维度声明非法 (空网格或 Count < 1)
	ErrInvalidGrid = errors.New("grid: invalid grid dimensions")
	// ErrBadLength 展平向量长度与网格点数不一致
	ErrBadLength = errors.New("grid: flattened length does not match grid size")
)

// Dim 单个解维度: 点数、步长、原点。
type Dim struct {
	Count   int
	Spacing float64
	Origin  float64
}

// Grid 有序的解维度列表, 维度数 d 任意。
// 展平约定: 行主序, 第 0 维最慢, 第 d-1 维最快。核矩阵 K 的列顺序
// 与平滑算子的 Kronecker 构造都必须遵守这一约定。
type Grid []Dim

// Validate 检查每个维度 Count >= 1 且网格非空。
func (g Grid) Validate() error {
	if len(g) == 0 {
		return fmt.Errorf("%w: no dimensions", ErrInvalidGrid)
	}
	for i, d := range g {
		if d.Count < 1 {
			return fmt.Errorf("%w: dimension %d has count %d", ErrInvalidGrid, i, d.Count)
		}
	}
	return nil
}

// Size 网格点总数 n = Π count_i。
func (g Grid) Size() int {
	n := 1
	for _, d := range g {
		n *= d.Count
	}
	return n
}

// Shape 各维点数。
func (g Grid) Shape() []int {
	s := make([]int, len(g))
	for i, d := range g {
		s[i] = d.Count
	}
	return s
}

// Axis 第 i 维的坐标轴: origin + k*spacing, k = 0..count-1。
func (g Grid) Axis(i int) []float64 {
	d := g[i]
	ax := make([]float64, d.Count)
	for k := range ax {
		ax[k] = d.Origin + float64(k)*d.Spacing
	}
	return ax
}

// Tensor 行主序存放的 d 维网格值, 解向量 reshape 之后的只读视图。
type Tensor struct {
	Shape []int
	Data  []float64
}

// At 行主序索引 (第 0 维最慢)。
func (t Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("grid: tensor rank %d, got %d indices", len(t.Shape), len(idx)))
	}
	flat := 0
	for i, ix := range idx {
		if ix < 0 || ix >= t.Shape[i] {
			panic(fmt.Sprintf("grid: index %d out of range for axis %d (size %d)", ix, i, t.Shape[i]))
		}
		flat = flat*t.Shape[i] + ix
	}
	return t.Data[flat]
}

// Reshape 把长度为 Size() 的展平解向量还原成网格张量, 不拷贝数据。
func (g Grid) Reshape(f []float64) (Tensor, error) {
	if err := g.Validate(); err != nil {
		return Tensor{}, err
	}
	if len(f) != g.Size() {
		return Tensor{}, fmt.Errorf("%w: got %d, grid size %d", ErrBadLength, len(f), g.Size())
	}
	return Tensor{Shape: g.Shape(), Data: f}, nil
}
