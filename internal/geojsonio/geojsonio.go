// 包 geojsonio：GeoJSON 读写，把上传的 Feature/FeatureCollection/Geometry 展平为多边形外环
package geojsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoPolygons：输入中没有 Polygon/MultiPolygon 要素
var ErrNoPolygons = errors.New("no polygon features found")

// Input：解码后的上传内容
// 约束：只保留外环；洞被丢弃，多面按成员拆成独立多边形，顺序与输入一致。
type Input struct {
	Polygons []orb.Polygon
	// CRS：输入声明的坐标系（旧式 crs 成员），未声明时为空
	CRS string
}

type envelope struct {
	Type string `json:"type"`
	CRS  *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// Decode：解析 GeoJSON 文本
func Decode(data []byte) (*Input, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	in := &Input{}
	if env.CRS != nil {
		in.CRS = normalizeCRS(env.CRS.Properties.Name)
	}
	switch strings.ToLower(env.Type) {
	case "featurecollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		for _, f := range fc.Features {
			in.Polygons = appendPolygons(in.Polygons, f.Geometry)
		}
	case "feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode feature: %w", err)
		}
		in.Polygons = appendPolygons(in.Polygons, f.Geometry)
	case "":
		return nil, fmt.Errorf("decode geojson: missing type member")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geometry: %w", err)
		}
		in.Polygons = appendPolygons(in.Polygons, g.Geometry())
	}
	if len(in.Polygons) == 0 {
		return nil, ErrNoPolygons
	}
	return in, nil
}

func appendPolygons(out []orb.Polygon, g orb.Geometry) []orb.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) > 0 && len(v[0]) > 0 {
			out = append(out, orb.Polygon{v[0].Clone()})
		}
	case orb.MultiPolygon:
		for _, p := range v {
			out = appendPolygons(out, p)
		}
	case orb.Collection:
		for _, c := range v {
			out = appendPolygons(out, c)
		}
	}
	return out
}

// normalizeCRS：把 urn:ogc:def:crs:EPSG::3857 等写法统一为 EPSG:3857
func normalizeCRS(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case n == "":
		return ""
	case strings.HasSuffix(n, "CRS84"):
		return "EPSG:4326"
	case strings.Contains(n, "EPSG"):
		i := strings.LastIndex(n, ":")
		return "EPSG:" + n[i+1:]
	}
	return n
}

// Piece：一个输出环与其属性
type Piece struct {
	Ring  orb.Ring
	Area  float64
	Group int
}

// Encode：输出 FeatureCollection，每块一个 Polygon 要素，带 index/group/area_m2 属性
func Encode(pieces []Piece) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, p := range pieces {
		f := geojson.NewFeature(orb.Polygon{p.Ring})
		f.Properties["index"] = i
		f.Properties["group"] = p.Group
		f.Properties["area_m2"] = p.Area
		fc.Append(f)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return b, nil
}
