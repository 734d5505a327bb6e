package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// 同名指标重复注册会 panic
	once sync.Once

	// HTTPRequestsTotal 按 method / 路由模板 / 状态码累计请求数。
	// route 必须是模板（/api/v1/links/:code），不能是真实 path，否则 label 基数无限增长。
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// CodecDecodeFailures 按原因统计短码解码失败：invalid_character / overflow / empty。
	CodecDecodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "base62_decode_failures_total",
			Help: "Base62 decode failures by reason.",
		},
		[]string{"reason"},
	)

	LinksCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Links created or re-issued.",
		},
	)

	LinkRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "link_redirects_total",
			Help: "Successful short link redirects.",
		},
	)

	// CacheOperations layer: bloom / l1 / l2；result: hit / hit_negative / miss / reject
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_cache_operations_total",
			Help: "Link cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	ClickEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_events_dropped_total",
			Help: "Click events dropped because the buffer was full or closed.",
		},
	)
)

// Init 注册全部指标，可重复调用。
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			CodecDecodeFailures,
			LinksCreated,
			LinkRedirects,
			CacheOperations,
			ClickEventsDropped,
		)
	})
}
