package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/pkg/metrics"
)

// Metrics Prometheus 请求计数与耗时
// 以路由模板作为标签，未匹配路由统一记为 unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
