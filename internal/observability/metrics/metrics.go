package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics tracks request volume and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tunebridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tunebridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// AllocationMetrics tracks allocation engine runs.
type AllocationMetrics struct {
	runs     *prometheus.CounterVec
	partners prometheus.Counter
	duration prometheus.Histogram
}

func NewAllocationMetrics() *AllocationMetrics {
	return &AllocationMetrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tunebridge",
			Subsystem: "settlement",
			Name:      "allocation_runs_total",
			Help:      "Allocation runs by outcome.",
		}, []string{"outcome"}),
		partners: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tunebridge",
			Subsystem: "settlement",
			Name:      "allocated_partners_total",
			Help:      "Partners allocated across all runs.",
		}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tunebridge",
			Subsystem: "settlement",
			Name:      "allocation_duration_seconds",
			Help:      "Allocation run duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *AllocationMetrics) ObserveRun(outcome string, partners int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.partners.Add(float64(partners))
	m.duration.Observe(elapsed.Seconds())
}
