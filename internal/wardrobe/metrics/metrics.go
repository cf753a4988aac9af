// Package metrics 提供服务的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 汇总所有 Prometheus 指标
// 同时实现 cache.Recorder，缓存命中率通过它上报
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 缓存指标，按命名空间区分
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal prometheus.Counter

	// 目录和关联的业务指标
	AttributeWritesTotal *prometheus.CounterVec
	LinkWritesTotal      *prometheus.CounterVec
}

// New 创建并注册所有指标
// 注册器由调用方传入，测试里传独立的 prometheus.NewRegistry 避免重复注册
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wardrobe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	m.CacheHitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"namespace"},
	)

	m.CacheMissesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"namespace"},
	)

	m.CacheEvictionsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wardrobe_cache_evictions_total",
			Help: "Total number of expired cache entries removed by the sweeper",
		},
	)

	m.AttributeWritesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_attribute_writes_total",
			Help: "Total number of attribute catalog write operations",
		},
		[]string{"operation"},
	)

	m.LinkWritesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_entity_attribute_writes_total",
			Help: "Total number of entity attribute link write operations",
		},
		[]string{"operation"},
	)

	return m
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// CacheHit 实现 cache.Recorder
func (m *Metrics) CacheHit(namespace string) {
	m.CacheHitsTotal.WithLabelValues(namespace).Inc()
}

// CacheMiss 实现 cache.Recorder
func (m *Metrics) CacheMiss(namespace string) {
	m.CacheMissesTotal.WithLabelValues(namespace).Inc()
}

// CacheEviction 实现 cache.Recorder
func (m *Metrics) CacheEviction(count int) {
	m.CacheEvictionsTotal.Add(float64(count))
}
