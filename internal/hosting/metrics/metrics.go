// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hosting"

// 下单结果
const (
	OutcomeSuccess            = "success"
	OutcomeValidationError    = "validation_error"
	OutcomeIdentityConflict   = "identity_conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeRemoteUnavailable  = "remote_unavailable"
	OutcomeRemoteRejected     = "remote_rejected"
	OutcomeProvisioningFailed = "provisioning_failed"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomeInternalError      = "internal_error"
)

// Metrics 服务指标，每个实例使用独立的 Registry
type Metrics struct {
	registry *prometheus.Registry

	ordersTotal             *prometheus.CounterVec
	orderDuration           prometheus.Histogram
	remoteCallsTotal        *prometheus.CounterVec
	remoteCallLatency       *prometheus.HistogramVec
	orphanedRemoteInstances prometheus.Counter
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec
}

// New 创建指标并注册到新的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ordersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "total",
				Help:      "Total number of server orders by outcome",
			},
			[]string{"outcome"},
		),

		orderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "duration_seconds",
				Help:      "Duration of server orders in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),

		remoteCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pterodactyl",
				Name:      "api_calls_total",
				Help:      "Total number of Pterodactyl API calls by operation and result",
			},
			[]string{"operation", "result"},
		),

		remoteCallLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pterodactyl",
				Name:      "api_latency_seconds",
				Help:      "Latency of Pterodactyl API calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"operation"},
		),

		orphanedRemoteInstances: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "orphaned_remote_instances_total",
				Help:      "Remote servers created without a local instance record",
			},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersTotal,
		m.orderDuration,
		m.remoteCallsTotal,
		m.remoteCallLatency,
		m.orphanedRemoteInstances,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Registry 返回指标所在的 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordOrder 记录一次下单的结果和耗时
func (m *Metrics) RecordOrder(outcome string, duration time.Duration) {
	m.ordersTotal.WithLabelValues(outcome).Inc()
	m.orderDuration.Observe(duration.Seconds())
}

// RecordRemoteCall 记录一次面板 API 调用
func (m *Metrics) RecordRemoteCall(operation, result string, duration time.Duration) {
	m.remoteCallsTotal.WithLabelValues(operation, result).Inc()
	m.remoteCallLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOrphanedRemoteInstance 记录一台没有本地记录的面板服务器
func (m *Metrics) RecordOrphanedRemoteInstance() {
	m.orphanedRemoteInstances.Inc()
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
