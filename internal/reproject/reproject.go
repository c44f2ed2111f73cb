// 包 reproject：地理坐标与平面坐标之间的转换器，构造一次后只读共享
package reproject

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Converter：不可变的坐标转换对象
// 约束：面积计算只在平面坐标（米）下进行；地理坐标输入先 ToPlanar，结果再 FromPlanar。
type Converter struct {
	name    string
	forward orb.Projection
	inverse orb.Projection
}

func identity(p orb.Point) orb.Point { return p }

// 已支持的输入坐标系
var (
	WGS84       = Converter{name: "EPSG:4326", forward: project.WGS84.ToMercator, inverse: project.Mercator.ToWGS84}
	WebMercator = Converter{name: "EPSG:3857", forward: identity, inverse: identity}
)

// ForCRS：按名称返回转换器；空名称视为 GeoJSON 默认的 WGS84
func ForCRS(name string) (Converter, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "EPSG:4326", "WGS84", "CRS84":
		return WGS84, nil
	case "EPSG:3857", "EPSG:900913", "EPSG:3785":
		return WebMercator, nil
	}
	return Converter{}, fmt.Errorf("unsupported crs %q", name)
}

func (c Converter) Name() string { return c.name }

// Planar：输入本身已是平面坐标
func (c Converter) Planar() bool { return c.name == WebMercator.name }

// ToPlanar：返回投影后的新环，不修改输入
func (c Converter) ToPlanar(r orb.Ring) orb.Ring { return project.Ring(r.Clone(), c.forward) }

// FromPlanar：ToPlanar 的逆变换
func (c Converter) FromPlanar(r orb.Ring) orb.Ring { return project.Ring(r.Clone(), c.inverse) }
