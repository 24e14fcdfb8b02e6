package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youapp_http_requests_total",
			Help: "Total number of HTTP requests processed, per service.",
		},
		[]string{"service", "method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "youapp_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)
	rpcClientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youapp_rpc_client_requests_total",
			Help: "Total number of request/reply calls issued over the bus.",
		},
		[]string{"pattern", "outcome"},
	)
	rpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youapp_rpc_server_handled_total",
			Help: "Total number of bus requests handled.",
		},
		[]string{"pattern", "outcome"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "youapp_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "youapp_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "youapp_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		rpcClientRequestsTotal,
		rpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(service, c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(service, route).Observe(time.Since(start).Seconds())
	}
}

func IncRPCClient(pattern, outcome string) {
	rpcClientRequestsTotal.WithLabelValues(pattern, outcome).Inc()
}

func IncRPCServer(pattern, outcome string) {
	rpcServerHandledTotal.WithLabelValues(pattern, outcome).Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
