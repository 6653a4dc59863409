package metrics

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsProcessed counts completed jobs per queue.
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentos_jobs_processed_total",
			Help: "Total number of successfully processed jobs",
		},
		[]string{"queue"},
	)

	// JobsFailed counts failed job attempts per queue, split by whether the
	// failure is terminal (skip-retry) or retryable.
	JobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentos_jobs_failed_total",
			Help: "Total number of failed job attempts",
		},
		[]string{"queue", "terminal"},
	)

	// JobsEnqueued counts producer-side enqueues per queue.
	JobsEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentos_jobs_enqueued_total",
			Help: "Total number of enqueued jobs",
		},
		[]string{"queue"},
	)

	// PostsCreated counts generated posts per module.
	PostsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentos_posts_created_total",
			Help: "Total number of draft posts created by processors",
		},
		[]string{"module"},
	)
)

var registerOnce sync.Once

// Register registers all collectors; safe to call from both binaries.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(JobsProcessed)
		prometheus.MustRegister(JobsFailed)
		prometheus.MustRegister(JobsEnqueued)
		prometheus.MustRegister(PostsCreated)
	})
}

// Handler returns the scrape endpoint handler for echo.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// ListenAndServe exposes /metrics on a dedicated listener. Used by the
// worker, which runs no echo server of its own.
func ListenAndServe(addr string) error {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
