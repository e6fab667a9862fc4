package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetrics is the part of *aws.MetricsClient the middleware needs.
type HTTPMetrics interface {
	IsEnabled() bool
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"
)

// Metrics records request count, latency and error class per route.
func Metrics(m HTTPMetrics, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || !m.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		dims := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    path,
			"Status":  fmt.Sprintf("%dxx", status/100),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = m.RecordCount(ctx, MetricHTTPRequests, dims)
			_ = m.RecordLatency(ctx, MetricHTTPLatency, duration, dims)
			switch {
			case status >= 500:
				_ = m.RecordCount(ctx, MetricHTTP5xx, dims)
			case status >= 400:
				_ = m.RecordCount(ctx, MetricHTTP4xx, dims)
			}
		}()
	}
}
