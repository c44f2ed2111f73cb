package partition

import (
	"math"

	"github.com/paulmach/orb"
)

// FindBand：二分搜索水平切线 cut，使 [currentY, cut] 内的面积接近 target
// 假设裁剪面积随 cut 单调不减；未收敛时退回固定比例切线
// currentY + (maxY-currentY)/remaining，保证驱动循环总能前进。
// 返回切线位置与该带（已闭合）。
func FindBand(ring orb.Ring, currentY, maxY, target float64, remaining int, opts Options) (float64, orb.Ring) {
	opts = opts.Normalized()
	low, high := currentY, maxY
	for it := 0; it < opts.BandIterations; it++ {
		mid := (low + high) / 2
		band := ClipHorizontal(ring, currentY, mid)
		a := Area(band)
		if math.Abs(a-target) < opts.BandTolerance*target {
			return mid, band
		}
		if a < target {
			low = mid
		} else {
			high = mid
		}
	}
	if remaining < 1 {
		remaining = 1
	}
	cut := currentY + (maxY-currentY)/float64(remaining)
	return cut, ClipHorizontal(ring, currentY, cut)
}
