package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests 按路由、方法、状态码统计请求数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunch_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration 请求耗时
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lunch_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms ~ 2s
	}, []string{"route", "method"})

	// ChoicesSaved 写入的选择记录数，mode 为 week 或 daily
	ChoicesSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunch_choices_saved_total",
		Help: "Total lunch choices persisted by submission mode",
	}, []string{"mode"})

	// ChoicesRejected 被拒绝的提交条目数
	ChoicesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunch_choices_rejected_total",
		Help: "Total submitted selections rejected by reason",
	}, []string{"reason"})

	// ReconcileDuration 周提交对账耗时
	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lunch_reconcile_duration_seconds",
		Help:    "Weekly reconcile duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// ReportCache 报表缓存命中情况，result 为 hit / miss / error
	ReportCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunch_report_cache_total",
		Help: "Report cache lookups by result",
	}, []string{"result"})
)

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
