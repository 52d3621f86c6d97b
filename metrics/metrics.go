// Package metrics exposes Prometheus collectors for the prompt API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ActionLiked   = "liked"
	ActionUnliked = "unliked"
)

// Metrics holds all API collectors, registered on a single registry.
type Metrics struct {
	registry *prometheus.Registry

	LikeToggles     *prometheus.CounterVec
	Views           prometheus.Counter
	ListCacheHits   prometheus.Counter
	ListCacheMisses prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LikeToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prompt_like_toggles_total",
			Help: "Like toggles by resulting action",
		}, []string{"action"}),
		Views: factory.NewCounter(prometheus.CounterOpts{
			Name: "prompt_views_total",
			Help: "Recorded prompt views",
		}),
		ListCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "prompt_list_cache_hits_total",
			Help: "List requests served from cache",
		}),
		ListCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "prompt_list_cache_misses_total",
			Help: "List requests that went to the store",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}
}

// RecordLike counts one toggle outcome.
func (m *Metrics) RecordLike(liked bool) {
	action := ActionUnliked
	if liked {
		action = ActionLiked
	}
	m.LikeToggles.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordView() {
	m.Views.Inc()
}

func (m *Metrics) RecordListCache(hit bool) {
	if hit {
		m.ListCacheHits.Inc()
		return
	}
	m.ListCacheMisses.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes request latency labelled by the matched route
// template, so path parameters do not explode cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
