package partition

import (
	"math"

	"github.com/paulmach/orb"
)

// Area：鞋带公式面积，取绝对值，与环绕方向无关
// 约束：少于 3 个点返回 0，由调用方在上游拦截
func Area(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return math.Abs(sum) / 2
}

// Interpolate：线性插值，t=0 得到 p1，t=1 得到 p2；不做区间裁剪
func Interpolate(p1, p2 orb.Point, t float64) orb.Point {
	return orb.Point{
		p1[0] + (p2[0]-p1[0])*t,
		p1[1] + (p2[1]-p1[1])*t,
	}
}

// SplitAtEdges：沿边 i 上的 pi 与边 j 上的 pj 之间的弦把环拆成两个开放子环
// 第一个子环为 pi, ring[i+1..j], pj；第二个为 pj, ring[j+1..i], pi（下标取模）。
// 约束：ring 必须是开放环，i、j 不相同且不相邻；本函数不校验。
func SplitAtEdges(ring orb.Ring, i, j int, ti, tj float64) (orb.Ring, orb.Ring) {
	n := len(ring)
	pi := Interpolate(ring[i], ring[(i+1)%n], ti)
	pj := Interpolate(ring[j], ring[(j+1)%n], tj)
	return walk(ring, pi, i, j, pj), walk(ring, pj, j, i, pi)
}

// walk 返回 from, ring[a+1..b], to
func walk(ring orb.Ring, from orb.Point, a, b int, to orb.Point) orb.Ring {
	n := len(ring)
	cnt := (b-a+n)%n + 2
	out := make(orb.Ring, 0, cnt)
	out = append(out, from)
	for k := (a + 1) % n; ; k = (k + 1) % n {
		out = append(out, ring[k])
		if k == b {
			break
		}
	}
	return append(out, to)
}

// Close：返回闭合副本（首点重复为尾点）；已闭合的环不会重复追加
func Close(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring), len(ring)+1)
	copy(out, ring)
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// Open：返回去掉闭合尾点的副本，并折叠相邻重复点
func Open(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// yRange：环的 y 范围
func yRange(ring orb.Ring) (float64, float64) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range ring {
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return minY, maxY
}

// prepare：校验输入环并返回开放副本
func prepare(ring orb.Ring) (orb.Ring, error) {
	if ring == nil {
		return nil, errorf(KindInvalidShape, "ring is missing")
	}
	for i, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return nil, errorf(KindInvalidShape, "point %d has a non-finite coordinate", i)
		}
	}
	open := Open(ring)
	if len(open) < 3 {
		return nil, errorf(KindInvalidShape, "ring needs at least 3 distinct points, got %d", len(open))
	}
	return open, nil
}
