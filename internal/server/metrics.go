package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	questions *prometheus.CounterVec
	grades    *prometheus.CounterVec
	gatherer  prometheus.Gatherer
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyquiz_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studyquiz_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"method", "endpoint"}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyquiz_generated_questions_total",
			Help: "Questions returned by the model, by outcome",
		}, []string{"outcome"}),
		grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyquiz_answer_verifications_total",
			Help: "Answer verification calls, by verdict",
		}, []string{"verdict"}),
		gatherer: gatherer,
	}
	reg.MustRegister(m.requests, m.duration, m.questions, m.grades)
	return m
}

// Middleware records request count and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeQuestions(kept, discarded int) {
	m.questions.WithLabelValues("kept").Add(float64(kept))
	m.questions.WithLabelValues("discarded").Add(float64(discarded))
}

func (m *Metrics) observeVerdict(verdict string) {
	m.grades.WithLabelValues(verdict).Inc()
}
