package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booklink_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// EmailDispatches counts outbound notification emails by template and outcome.
	EmailDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booklink_email_dispatches_total",
		Help: "Total number of notification emails dispatched by template and outcome",
	}, []string{"template", "outcome"})

	// ModerationActions counts moderation state transitions by entity and action.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booklink_moderation_actions_total",
		Help: "Total number of moderation actions by entity and action",
	}, []string{"entity", "action"})
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The HTTP collectors register on the default registry, so the middleware is
// created once and shared across server instances.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(service)
	})
	return promMW
}

// MetricsMiddleware returns the HTTP metrics collection handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
