package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	activeRESTConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rest_connections",
			Help: "Number of active REST API connections",
		},
	)

	responseTimeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_time_milliseconds",
			Help:    "REST API response time distributions",
			Buckets: []float64{1, 10, 50, 100, 200, 300, 400, 500, 1000, 5000},
		},
		[]string{"method", "endpoint"},
	)

	RESTRequestMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_requests_processed_total",
		Help: "The total number of processed REST requests",
	}, []string{"method", "endpoint", "status"})

	// Number of successful face registrations
	FaceRegistrationsMetricsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "face_registrations_total",
		Help: "The total number of successful face registrations",
	})

	// Number of successful face authentications
	FaceAuthenticationsMetricsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "face_authentications_total",
		Help: "The total number of successful face authentications",
	})

	// Number of messages accepted by outbound SMTP servers
	EmailsSentMetricsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "The total number of emails sent",
	})

	// Number of unread-mail fetches served
	EmailFetchesMetricsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "email_fetches_total",
		Help: "The total number of unread email fetches",
	})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(activeRESTConnections)
		prometheus.MustRegister(responseTimeRESTAPI)
		prometheus.MustRegister(RESTRequestMetricsTotal)
		prometheus.MustRegister(FaceRegistrationsMetricsCount)
		prometheus.MustRegister(FaceAuthenticationsMetricsCount)
		prometheus.MustRegister(EmailsSentMetricsCount)
		prometheus.MustRegister(EmailFetchesMetricsCount)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		activeRESTConnections.Inc()
		defer activeRESTConnections.Dec()

		c.Next()

		RESTRequestMetricsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		latency := time.Since(start)
		responseTimeRESTAPI.WithLabelValues(c.Request.Method, c.FullPath()).Observe(float64(latency.Milliseconds()))
	}
}
