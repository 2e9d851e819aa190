package rpc

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts JSON-RPC requests by method and result code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tipjar_rpc_requests_total",
			Help: "Total JSON-RPC requests by method and code",
		},
		[]string{"method", "code"},
	)

	// RequestDuration tracks JSON-RPC request latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tipjar_rpc_request_duration_seconds",
			Help:    "JSON-RPC request duration in seconds",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 30, 120},
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration)
}

// metricsMiddleware records request metrics once the handler has run.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			RequestDuration.WithLabelValues(methodLabel(c)).Observe(v)
		}))

		c.Next()

		if c.FullPath() != "/" || c.Request.Method != "POST" {
			return
		}
		timer.ObserveDuration()
		RequestsTotal.WithLabelValues(methodLabel(c), strconv.Itoa(c.GetInt(codeKey))).Inc()
	}
}

// methodLabel keeps the label set bounded: unknown methods share one label.
func methodLabel(c *gin.Context) string {
	method := c.GetString(methodKey)
	switch {
	case method == "":
		return "invalid"
	case c.GetInt(codeKey) == CodeMethodNotFound:
		return "unknown"
	}
	return method
}
