package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "party_scheduler"

// Metrics holds Prometheus collectors for the API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RequestsTotal counts handled HTTP requests.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes handler latency.
	RequestDuration *prometheus.HistogramVec

	// PartyMutations counts successful booking writes by operation.
	PartyMutations *prometheus.CounterVec

	// PartiesDeleted counts bookings removed, including bulk deletes.
	PartiesDeleted prometheus.Counter

	// Logins counts login attempts by result.
	Logins *prometheus.CounterVec
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time spent handling HTTP requests",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		PartyMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "party_mutations_total",
				Help:      "Total number of successful booking writes",
			},
			[]string{"op"},
		),

		PartiesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parties_deleted_total",
				Help:      "Total number of bookings deleted",
			},
		),

		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts",
			},
			[]string{"result"},
		),
	}
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// IncPartyMutation increments the write counter for op (create, update, delete).
func (m *Metrics) IncPartyMutation(op string) {
	if m == nil {
		return
	}
	m.PartyMutations.WithLabelValues(op).Inc()
}

// AddPartiesDeleted adds n removed bookings.
func (m *Metrics) AddPartiesDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.PartiesDeleted.Add(float64(n))
}

// IncLogin increments the login counter for result (success, invalid, error, limited).
func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}
