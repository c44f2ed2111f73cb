package partition

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// Mode：切分模式，决定使用的驱动与 value 的含义（块数或单块面积）
type Mode string

const (
	ModeCount            Mode = "count"
	ModeArea             Mode = "area"
	ModeHorizontalCount  Mode = "horizontal-count"
	ModeHorizontalArea   Mode = "horizontal-area"
	ModeDirectionalCount Mode = "directional-count"
	ModeDirectionalArea  Mode = "directional-area"
)

// Modes：全部支持的模式，顺序用于接口展示
var Modes = []Mode{
	ModeCount,
	ModeArea,
	ModeHorizontalCount,
	ModeHorizontalArea,
	ModeDirectionalCount,
	ModeDirectionalArea,
}

// ParseMode：解析模式名，大小写与下划线不敏感；兼容旧表单的数字 0（count）与 1（area）
func ParseMode(s string) (Mode, error) {
	v := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch v {
	case "0":
		return ModeCount, nil
	case "1":
		return ModeArea, nil
	}
	for _, m := range Modes {
		if string(m) == v {
			return m, nil
		}
	}
	return "", errorf(KindUnknownMode, "unknown mode %q", s)
}

// ByCount：value 是否解释为块数
func (m Mode) ByCount() bool {
	return m == ModeCount || m == ModeHorizontalCount || m == ModeDirectionalCount
}

// Split：按模式校验 value 并调用对应驱动，输出的每个环均已闭合
func Split(ring orb.Ring, mode Mode, value float64, opts Options) ([]orb.Ring, error) {
	if err := CheckValue(mode, value); err != nil {
		return nil, err
	}
	var (
		pieces []orb.Ring
		err    error
	)
	switch mode {
	case ModeCount:
		pieces, err = SplitEqualArea(ring, int(value), opts)
	case ModeArea:
		pieces, err = SplitByArea(ring, value, opts)
	case ModeHorizontalCount:
		pieces, err = SplitHorizontalEqualArea(ring, int(value), opts)
	case ModeHorizontalArea:
		pieces, err = SplitHorizontalByArea(ring, value, opts)
	case ModeDirectionalCount:
		pieces, err = SplitDirectionalEqualArea(ring, int(value), opts)
	case ModeDirectionalArea:
		pieces, err = SplitDirectionalByArea(ring, value, opts)
	}
	if err != nil {
		return nil, err
	}
	for i, p := range pieces {
		pieces[i] = Close(p)
	}
	return pieces, nil
}

// CheckValue：在任何几何计算之前校验模式与数值参数
func CheckValue(mode Mode, value float64) error {
	switch {
	case mode.ByCount():
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 1 || value != math.Trunc(value) {
			return errorf(KindInvalidParameter, "count must be a positive integer, got %v", value)
		}
		if value > math.MaxInt32 {
			return errorf(KindInvalidParameter, "count %.0f exceeds the limit of %d pieces", value, math.MaxInt32)
		}
	case mode == ModeArea || mode == ModeHorizontalArea || mode == ModeDirectionalArea:
		if !(value > 0) || math.IsInf(value, 1) {
			return errorf(KindInvalidParameter, "area must be a positive number, got %v", value)
		}
	default:
		return errorf(KindUnknownMode, "unknown mode %q", string(mode))
	}
	return nil
}

// Requested：未发生搜索耗尽时该模式应产生的块数；参数非法时返回 0
func Requested(ring orb.Ring, mode Mode, value float64) int {
	if CheckValue(mode, value) != nil {
		return 0
	}
	if mode.ByCount() {
		return int(value)
	}
	return max(1, int(math.Round(Area(ring)/value)))
}
