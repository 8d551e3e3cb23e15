package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the gradebook.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	gradesRecorded  *prometheus.CounterVec
	recomputeTime   *prometheus.HistogramVec
	averageRows     prometheus.Gauge
	atRiskStudents  *prometheus.GaugeVec
	alertsSent      *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	gradeCount     uint64
}

// MetricsSnapshot is a compact view of counters for the health endpoint.
type MetricsSnapshot struct {
	CacheHitRatio  float64   `json:"cache_hit_ratio"`
	CacheHits      uint64    `json:"cache_hits"`
	CacheMisses    uint64    `json:"cache_misses"`
	RequestsTotal  uint64    `json:"requests_total"`
	GradesRecorded uint64    `json:"grades_recorded"`
	Goroutines     int       `json:"goroutines"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_hits_total", Help: "Total cache hits"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_misses_total", Help: "Total cache misses"})

	gradesRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_grades_recorded_total",
		Help: "Grade entries written, by outcome",
	}, []string{"outcome"})

	recomputeTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gradebook_average_recompute_seconds",
		Help:    "Duration of subject average recomputation",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	averageRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gradebook_average_rows",
		Help: "Rows written by the last full average rebuild",
	})

	atRiskStudents := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gradebook_at_risk_students",
		Help: "Students below the at-risk threshold at the last lookup",
	}, []string{"period"})

	alertsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gradebook_alerts_total",
		Help: "At-risk alerts dispatched, by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		gradesRecorded, recomputeTime, averageRows, atRiskStudents, alertsSent, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		gradesRecorded:  gradesRecorded,
		recomputeTime:   recomputeTime,
		averageRows:     averageRows,
		atRiskStudents:  atRiskStudents,
		alertsSent:      alertsSent,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records cache hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordGrade counts a grade write attempt. outcome is "ok", "rejected" or "failed".
func (m *MetricsService) RecordGrade(outcome string) {
	if m == nil {
		return
	}
	m.gradesRecorded.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		atomic.AddUint64(&m.gradeCount, 1)
	}
}

// ObserveRecompute records how long a recompute took. scope is "key" or "all".
func (m *MetricsService) ObserveRecompute(scope string, duration time.Duration) {
	if m == nil {
		return
	}
	m.recomputeTime.WithLabelValues(scope).Observe(duration.Seconds())
}

// SetAverageRows records the size of the last rebuild.
func (m *MetricsService) SetAverageRows(rows int) {
	if m == nil {
		return
	}
	m.averageRows.Set(float64(rows))
}

// SetAtRisk records the at-risk count for a period.
func (m *MetricsService) SetAtRisk(periodID string, count int) {
	if m == nil {
		return
	}
	m.atRiskStudents.WithLabelValues(periodID).Set(float64(count))
}

// RecordAlert counts an alert dispatch outcome.
func (m *MetricsService) RecordAlert(outcome string) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return MetricsSnapshot{
		CacheHitRatio:  ratio,
		CacheHits:      hits,
		CacheMisses:    misses,
		RequestsTotal:  atomic.LoadUint64(&m.requestCount),
		GradesRecorded: atomic.LoadUint64(&m.gradeCount),
		Goroutines:     runtime.NumGoroutine(),
		GeneratedAt:    time.Now().UTC(),
	}
}
