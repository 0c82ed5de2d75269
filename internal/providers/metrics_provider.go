package providers

import (
	"admission/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveSyncDuration(job string, duration time.Duration)
	IncRemoteErrors(op string)
	IncBackups()
	AddTelemetryFlushed(count int)
	AddTelemetryDropped(count int)
	SetTelemetryBuffered(count int)
	SetRecordsTotal(store string, platform string, count int)
}

type MetricsProvider struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	syncDuration      *prometheus.HistogramVec
	remoteErrors      *prometheus.CounterVec
	backupsTotal      prometheus.Counter
	telemetryFlushed  prometheus.Counter
	telemetryDropped  prometheus.Counter
	telemetryBuffered prometheus.Gauge
	recordsTotal      *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveSyncDuration(job string, duration time.Duration) {
	m.syncDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRemoteErrors(op string) {
	m.remoteErrors.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) IncBackups() {
	m.backupsTotal.Inc()
}

func (m *MetricsProvider) AddTelemetryFlushed(count int) {
	m.telemetryFlushed.Add(float64(count))
}

func (m *MetricsProvider) AddTelemetryDropped(count int) {
	m.telemetryDropped.Add(float64(count))
}

func (m *MetricsProvider) SetTelemetryBuffered(count int) {
	m.telemetryBuffered.Set(float64(count))
}

func (m *MetricsProvider) SetRecordsTotal(store string, platform string, count int) {
	m.recordsTotal.WithLabelValues(store, platform).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admission_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admission_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admission_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		syncDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admission_sync_duration_seconds",
			Help:    "Duration of background synchronization jobs in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),

		remoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admission_remote_errors_total",
			Help: "Total number of failed spreadsheet calls",
		}, []string{"op"}),

		backupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admission_backups_total",
			Help: "Total number of written user backups",
		}),

		telemetryFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admission_telemetry_flushed_total",
			Help: "Total number of telemetry events written to the spreadsheet",
		}),

		telemetryDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admission_telemetry_dropped_total",
			Help: "Total number of telemetry events dropped at flush",
		}),

		telemetryBuffered: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "admission_telemetry_buffered",
			Help: "Current number of buffered telemetry events",
		}),

		recordsTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "admission_records_total",
			Help: "Total number of cached registry records per store and platform",
		}, []string{"store", "platform"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveSyncDuration(_ string, _ time.Duration)    {}
func (n *noopMetrics) IncRemoteErrors(_ string)                         {}
func (n *noopMetrics) IncBackups()                                      {}
func (n *noopMetrics) AddTelemetryFlushed(_ int)                        {}
func (n *noopMetrics) AddTelemetryDropped(_ int)                        {}
func (n *noopMetrics) SetTelemetryBuffered(_ int)                       {}
func (n *noopMetrics) SetRecordsTotal(_ string, _ string, _ int)        {}
