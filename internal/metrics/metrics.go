package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SplitRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polysplit_requests_total",
		Help: "Total number of split requests by mode",
	}, []string{"mode"})
	SplitErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polysplit_errors_total",
		Help: "Total number of failed split requests by error kind",
	}, []string{"kind"})
	SplitDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polysplit_duration_ms",
		Help:    "Split request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000},
	}, []string{"mode"})
	PiecesProduced = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "polysplit_pieces",
		Help:    "Number of pieces produced per request",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 512},
	})
	ShortfallTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polysplit_shortfall_total",
		Help: "Requests that produced fewer pieces than requested",
	})
	UnionFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polysplit_union_fallback_total",
		Help: "Requests where the union failed and the first polygon was used",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polysplit_cache_hits_total",
		Help: "Total redis result cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polysplit_cache_misses_total",
		Help: "Total redis result cache misses",
	})
)

func init() {
	prometheus.MustRegister(SplitRequestsTotal)
	prometheus.MustRegister(SplitErrorsTotal)
	prometheus.MustRegister(SplitDurationMs)
	prometheus.MustRegister(PiecesProduced)
	prometheus.MustRegister(ShortfallTotal)
	prometheus.MustRegister(UnionFallbackTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// 文档注释：返回 Prometheus 指标处理器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
