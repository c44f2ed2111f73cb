// 包 union：把多个输入多边形合并为单个外环，供切分引擎使用
package union

import (
	"errors"

	"github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

// ErrNotSingleRing：合并结果不是单一外环（不相交、含洞或为空）
var ErrNotSingleRing = errors.New("union is not a single ring")

// Merge：按外环做多边形并集
// 约束：只使用每个多边形的外环；结果为一个闭合环，否则返回 ErrNotSingleRing。
func Merge(polys []orb.Polygon) (orb.Ring, error) {
	var acc polyclip.Polygon
	for _, p := range polys {
		if len(p) == 0 || len(p[0]) < 3 {
			continue
		}
		c := toContour(p[0])
		if acc == nil {
			acc = polyclip.Polygon{c}
			continue
		}
		acc = acc.Construct(polyclip.UNION, polyclip.Polygon{c})
	}
	if len(acc) != 1 || len(acc[0]) < 3 {
		return nil, ErrNotSingleRing
	}
	return fromContour(acc[0]), nil
}

// Best：尽力合并；失败时退回第一个多边形的外环，merged 表示是否真正合并
func Best(polys []orb.Polygon) (ring orb.Ring, merged bool) {
	if len(polys) == 0 || len(polys[0]) == 0 {
		return nil, false
	}
	if len(polys) > 1 {
		if r, err := Merge(polys); err == nil {
			return r, true
		}
	}
	return polys[0][0].Clone(), false
}

func toContour(r orb.Ring) polyclip.Contour {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	c := make(polyclip.Contour, n)
	for i := 0; i < n; i++ {
		c[i] = polyclip.Point{X: r[i][0], Y: r[i][1]}
	}
	return c
}

func fromContour(c polyclip.Contour) orb.Ring {
	r := make(orb.Ring, 0, len(c)+1)
	for _, p := range c {
		r = append(r, orb.Point{p.X, p.Y})
	}
	if r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}
