package partition

import (
	"math"

	"github.com/paulmach/orb"
)

// Cut：一次成功的弦切分结果
type Cut struct {
	I, J   int
	Ti, Tj float64
	First  orb.Ring
	Second orb.Ring
	// Diff：First 面积与目标面积之差的绝对值
	Diff float64
}

// usableEdgePair：排除同一条边与相邻边（含首尾相邻）
func usableEdgePair(i, j, n int) bool {
	d := i - j
	if d < 0 {
		d = -d
	}
	return d >= 2 && d <= n-2
}

// FindChord：在开放环上搜索一条弦，使第一块面积尽量接近 target
// 遍历顺序固定为 i、j、si、sj 升序；首个相对误差小于 Tolerance 的候选立即返回，
// 因此结果依赖遍历顺序而非全局最优。全部遍历后返回误差最小的候选。
// 返回 false 表示不存在可用边对（n < 4）。
func FindChord(ring orb.Ring, target float64, opts Options) (Cut, bool) {
	opts = opts.Normalized()
	n := len(ring)
	if n < 4 {
		return Cut{}, false
	}
	var best Cut
	found := false
	best.Diff = math.Inf(1)
	limit := opts.Tolerance * target
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !usableEdgePair(i, j, n) {
				continue
			}
			for si := 1; si < opts.Steps; si++ {
				ti := float64(si) / float64(opts.Steps)
				for sj := 1; sj < opts.Steps; sj++ {
					tj := float64(sj) / float64(opts.Steps)
					first, second := SplitAtEdges(ring, i, j, ti, tj)
					diff := math.Abs(Area(first) - target)
					if diff < best.Diff {
						best = Cut{I: i, J: j, Ti: ti, Tj: tj, First: first, Second: second, Diff: diff}
						found = true
					}
					if diff < limit {
						return best, true
					}
				}
			}
		}
	}
	return best, found
}
