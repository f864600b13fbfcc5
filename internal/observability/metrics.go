// Package observability holds the Prometheus metrics of the HTTP surface and
// the lifecycle engine.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service metrics and the gatherer that exposes them.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Transitions *prometheus.CounterVec
	BulkIDs     *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against one registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibertrack_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"}), "fibertrack_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fibertrack_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"}), "fibertrack_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibertrack_lifecycle_transitions_total",
		Help: "Lifecycle transitions applied to single entities, labeled by kind and action.",
	}, []string{"kind", "action"}), "fibertrack_lifecycle_transitions_total")
	if err != nil {
		return nil, err
	}

	bulk, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fibertrack_bulk_ids_total",
		Help: "Ids handled by bulk actions, labeled by kind, action, and outcome (processed or skipped).",
	}, []string{"kind", "action", "outcome"}), "fibertrack_bulk_ids_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		HTTPRequests:  requests,
		HTTPDurations: durations,
		Transitions:   transitions,
		BulkIDs:       bulk,
	}, nil
}

// Middleware records request counts and durations by matched route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// Resolve the error now so the recorded code is the one sent.
				// It is still returned so outer middleware can log it.
				ctx.Error(err)
			}
			if c == nil {
				return err
			}
			status := ctx.Response().Status

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method

			c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.HTTPDurations.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// RecordTransition counts one single-entity lifecycle transition.
func (c *Collector) RecordTransition(kind, action string) {
	if c == nil {
		return
	}
	c.Transitions.WithLabelValues(kind, action).Inc()
}

// RecordBulk counts the processed and skipped ids of a bulk action.
func (c *Collector) RecordBulk(kind, action string, processed, skipped int) {
	if c == nil {
		return
	}
	c.BulkIDs.WithLabelValues(kind, action, "processed").Add(float64(processed))
	c.BulkIDs.WithLabelValues(kind, action, "skipped").Add(float64(skipped))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
