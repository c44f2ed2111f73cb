package partition

import "github.com/paulmach/orb"

// ClipHorizontal：把环裁剪到水平带 [yMin, yMax]，在两条边界上插入精确交点
// 顶点 y 位于带内即保留；边穿越边界时按 y 线性插值求 x，多个交点按沿边顺序插入。
// 输出显式闭合；不在此层做最少顶点数拒绝。
func ClipHorizontal(ring orb.Ring, yMin, yMax float64) orb.Ring {
	src := Open(ring)
	n := len(src)
	out := make(orb.Ring, 0, n+4)
	push := func(p orb.Point) {
		if len(out) > 0 && out[len(out)-1] == p {
			return
		}
		out = append(out, p)
	}
	for i := 0; i < n; i++ {
		a := src[i]
		b := src[(i+1)%n]
		if a[1] >= yMin && a[1] <= yMax {
			push(a)
		}
		lo, okLo := crossing(a, b, yMin, crossesLower(a[1], b[1], yMin))
		hi, okHi := crossing(a, b, yMax, crossesUpper(a[1], b[1], yMax))
		switch {
		case okLo && okHi:
			// 边同时穿过两条边界时，离 a 更近的交点先入
			if (yMin-a[1])*(yMin-a[1]) <= (yMax-a[1])*(yMax-a[1]) {
				push(lo)
				push(hi)
			} else {
				push(hi)
				push(lo)
			}
		case okLo:
			push(lo)
		case okHi:
			push(hi)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		return out
	}
	return Close(out)
}

// 一端严格在下边界之下，另一端在其上或之上
func crossesLower(ay, by, y float64) bool {
	return (ay < y && by >= y) || (by < y && ay >= y)
}

// 一端严格在上边界之上，另一端在其上或之下
func crossesUpper(ay, by, y float64) bool {
	return (ay > y && by <= y) || (by > y && ay <= y)
}

func crossing(a, b orb.Point, y float64, ok bool) (orb.Point, bool) {
	if !ok {
		return orb.Point{}, false
	}
	t := (y - a[1]) / (b[1] - a[1])
	return orb.Point{a[0] + (b[0]-a[0])*t, y}, true
}
