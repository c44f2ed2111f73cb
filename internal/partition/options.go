package partition

const (
	DefaultSteps          = 10
	DefaultTolerance      = 0.05
	DefaultBandTolerance  = 0.01
	DefaultBandIterations = 20
	DefaultMaxPieces      = 10000
)

// Options：搜索参数；零值字段在使用时回退到默认值
type Options struct {
	// Steps：每条边上的插值分段数，采样 k/Steps, k=1..Steps-1
	Steps int
	// Tolerance：弦搜索的相对面积容差，命中即提前返回
	Tolerance float64
	// BandTolerance：带搜索的相对面积容差
	BandTolerance float64
	// BandIterations：带搜索二分次数上限
	BandIterations int
	// MaxPieces：单次切分允许的最大块数
	MaxPieces int
}

func DefaultOptions() Options {
	return Options{
		Steps:          DefaultSteps,
		Tolerance:      DefaultTolerance,
		BandTolerance:  DefaultBandTolerance,
		BandIterations: DefaultBandIterations,
		MaxPieces:      DefaultMaxPieces,
	}
}

// Normalized：返回零值字段已替换为默认值的副本
func (o Options) Normalized() Options {
	if o.Steps < 2 {
		o.Steps = DefaultSteps
	}
	if !(o.Tolerance > 0) {
		o.Tolerance = DefaultTolerance
	}
	if !(o.BandTolerance > 0) {
		o.BandTolerance = DefaultBandTolerance
	}
	if o.BandIterations <= 0 {
		o.BandIterations = DefaultBandIterations
	}
	if o.MaxPieces <= 0 {
		o.MaxPieces = DefaultMaxPieces
	}
	return o
}
