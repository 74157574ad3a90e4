package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flock_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// GraphMutations counts follow-graph and interaction toggles by kind and direction.
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flock_graph_mutations_total",
		Help: "Total number of graph and interaction toggles",
	}, []string{"kind", "direction"})

	// TimelineAssembly records feed assembly latency by view type.
	TimelineAssembly = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flock_timeline_assembly_seconds",
		Help:    "Timeline assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register globally, so the instance is shared.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(service)
	})
	return prom
}

// MetricsMiddleware returns the Fiber handler that records request metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
