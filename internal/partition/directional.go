package partition

import (
	"math"

	"github.com/paulmach/orb"
)

// frame：以顶点均值为原点、把拟合方向旋转到 +y 的正交坐标系
type frame struct {
	origin orb.Point
	dx, dy float64
}

// fitFrame：对顶点做最小二乘直线拟合 y = a·x + b，方向取 (1, a) 归一化
// x 方差为零（竖直分布）或结果非有限时退回 y 轴方向。
func fitFrame(ring orb.Ring) frame {
	n := float64(len(ring))
	var mx, my float64
	for _, p := range ring {
		mx += p[0]
		my += p[1]
	}
	mx /= n
	my /= n
	var sxx, sxy float64
	for _, p := range ring {
		sxx += (p[0] - mx) * (p[0] - mx)
		sxy += (p[0] - mx) * (p[1] - my)
	}
	f := frame{origin: orb.Point{mx, my}, dx: 0, dy: 1}
	if sxx == 0 {
		return f
	}
	a := sxy / sxx
	norm := math.Hypot(1, a)
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return f
	}
	f.dx, f.dy = 1/norm, a/norm
	return f
}

// toLocal 把方向 (dx, dy) 映射到 (0, 1)
func (f frame) toLocal(p orb.Point) orb.Point {
	x, y := p[0]-f.origin[0], p[1]-f.origin[1]
	return orb.Point{f.dy*x - f.dx*y, f.dx*x + f.dy*y}
}

func (f frame) toWorld(p orb.Point) orb.Point {
	return orb.Point{
		f.dy*p[0] + f.dx*p[1] + f.origin[0],
		-f.dx*p[0] + f.dy*p[1] + f.origin[1],
	}
}

func (f frame) mapRing(ring orb.Ring, fn func(orb.Point) orb.Point) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = fn(p)
	}
	return out
}

// SplitDirectionalEqualArea：沿顶点拟合方向扫描，用垂直于该方向的直线切出 count 块
// 水平切分是其方向固定为 y 轴的特例；输出按拟合方向递增排列。
func SplitDirectionalEqualArea(ring orb.Ring, count int, opts Options) ([]orb.Ring, error) {
	open, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	if err := checkCount(count, opts); err != nil {
		return nil, err
	}
	return splitDirectional(open, count, opts), nil
}

// SplitDirectionalByArea：按目标面积推导块数后执行方向切分
func SplitDirectionalByArea(ring orb.Ring, area float64, opts Options) ([]orb.Ring, error) {
	open, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	count, err := countForArea(open, area, opts)
	if err != nil {
		return nil, err
	}
	return splitDirectional(open, count, opts), nil
}

func splitDirectional(ring orb.Ring, count int, opts Options) []orb.Ring {
	f := fitFrame(ring)
	pieces := splitHorizontal(f.mapRing(ring, f.toLocal), count, opts)
	for i, p := range pieces {
		pieces[i] = f.mapRing(p, f.toWorld)
	}
	return pieces
}
