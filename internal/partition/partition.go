package partition

import (
	"math"

	"github.com/paulmach/orb"
)

// minBandPoints：闭合带至少需要 3 个不同顶点加闭合点
const minBandPoints = 4

// SplitEqualArea：逐块剥离，把环切成 count 块等面积子环
// 每轮目标为 剩余面积/剩余块数；弦搜索无结果时提前结束，剩余部分作为最后一块。
// 返回的子环可能是开放的，对外输出前需 Close。
func SplitEqualArea(ring orb.Ring, count int, opts Options) ([]orb.Ring, error) {
	remaining, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	if err := checkCount(count, opts); err != nil {
		return nil, err
	}
	return splitEqualArea(remaining, count, opts), nil
}

func splitEqualArea(remaining orb.Ring, count int, opts Options) []orb.Ring {
	out := make([]orb.Ring, 0, count)
	for k := 0; k < count-1; k++ {
		target := Area(remaining) / float64(count-k)
		cut, ok := FindChord(remaining, target, opts)
		if !ok {
			break
		}
		out = append(out, cut.First)
		remaining = cut.Second
	}
	return append(out, remaining)
}

// SplitByArea：按目标单块面积推导块数 round(总面积/area)，至少 1
func SplitByArea(ring orb.Ring, area float64, opts Options) ([]orb.Ring, error) {
	open, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	count, err := countForArea(open, area, opts)
	if err != nil {
		return nil, err
	}
	return splitEqualArea(open, count, opts), nil
}

// SplitHorizontalEqualArea：自下而上剥离 count 条水平带
// 输出按 y 递增排列；顶点数不足的退化带被丢弃。
func SplitHorizontalEqualArea(ring orb.Ring, count int, opts Options) ([]orb.Ring, error) {
	open, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	if err := checkCount(count, opts); err != nil {
		return nil, err
	}
	return splitHorizontal(open, count, opts), nil
}

func splitHorizontal(ring orb.Ring, count int, opts Options) []orb.Ring {
	currentY, maxY := yRange(ring)
	remaining := Close(ring)
	out := make([]orb.Ring, 0, count)
	for k := 0; k < count-1; k++ {
		left := count - k
		target := Area(remaining) / float64(left)
		cut, band := FindBand(remaining, currentY, maxY, target, left, opts)
		if len(band) >= minBandPoints {
			out = append(out, band)
		}
		currentY = cut
		remaining = ClipHorizontal(remaining, currentY, maxY)
	}
	if len(remaining) >= minBandPoints {
		out = append(out, remaining)
	}
	return out
}

// SplitHorizontalByArea：按目标面积推导块数后执行水平切分
func SplitHorizontalByArea(ring orb.Ring, area float64, opts Options) ([]orb.Ring, error) {
	open, err := prepare(ring)
	if err != nil {
		return nil, err
	}
	count, err := countForArea(open, area, opts)
	if err != nil {
		return nil, err
	}
	return splitHorizontal(open, count, opts), nil
}

func checkCount(count int, opts Options) error {
	if count < 1 {
		return errorf(KindInvalidParameter, "count must be a positive integer, got %d", count)
	}
	if limit := opts.Normalized().MaxPieces; count > limit {
		return errorf(KindInvalidParameter, "count %d exceeds the limit of %d pieces", count, limit)
	}
	return nil
}

func countForArea(ring orb.Ring, area float64, opts Options) (int, error) {
	if !(area > 0) || math.IsInf(area, 1) {
		return 0, errorf(KindInvalidParameter, "area must be a positive number, got %v", area)
	}
	ratio := math.Round(Area(ring) / area)
	if limit := opts.Normalized().MaxPieces; ratio > float64(limit) {
		return 0, errorf(KindInvalidParameter, "area %v yields %.0f pieces, limit is %d", area, ratio, limit)
	}
	count := int(ratio)
	if count < 1 {
		count = 1
	}
	return count, nil
}
