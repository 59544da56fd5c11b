// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus HTTP collectors. Every series carries a
// surface label so guard traffic, letters API traffic and operator endpoints
// can be told apart without regex matching on routes:
//
//   - surface: "guard" for /interaction-guard, "ops" for /health, /metrics and
//     /swagger, "api" for everything else
//   - route:   the registered Gin template (/api/v1/letters/:id/comments);
//     requests that matched no route share the single value "unmatched", so
//     scanners probing random URLs cannot grow the series count
//   - method, status
//
// Guard outcomes (allowed, blocked, already_done, ...) are counted by the
// services package in guard_decisions_total; here the guard is just traffic.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Surface label values.
const (
	SurfaceGuard = "guard"
	SurfaceAPI   = "api"
	SurfaceOps   = "ops"

	routeUnmatched = "unmatched"
	guardRoute     = "/interaction-guard"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by surface, route, method and status.",
		},
		[]string{"surface", "method", "route", "status"},
	)

	// No status label: latency per route is what the dashboards chart.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency in seconds.",
			// Guard decisions are one small transaction; feed pages are the
			// slow end.
			Buckets: []float64{.002, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"surface", "method", "route"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests currently being served.",
		},
		[]string{"surface"},
	)

	// Letters are capped at a few KiB and feed pages at 100 items.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: []float64{16, 64, 256, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20},
		},
		[]string{"surface", "route"},
	)

	httpRateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-actor rate limiter.",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, httpRateLimited)
}

// routeLabel is the matched route template or "unmatched".
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return routeUnmatched
}

// surfaceOf classifies a route label.
func surfaceOf(route string) string {
	switch {
	case route == guardRoute:
		return SurfaceGuard
	case route == "/health", route == "/metrics", strings.HasPrefix(route, "/swagger/"):
		return SurfaceOps
	}
	return SurfaceAPI
}

// Metrics instruments every request:
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Gin resolves the route before the chain runs, so the in-flight gauge can be
// labelled by surface up front.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := routeLabel(c)
		surface := surfaceOf(route)

		inflight := httpInflight.WithLabelValues(surface)
		inflight.Inc()
		defer inflight.Dec()

		c.Next()

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		httpReqs.WithLabelValues(surface, method, route, status).Inc()
		httpLat.WithLabelValues(surface, method, route).Observe(time.Since(start).Seconds())
		// -1 when nothing was written (204, 304).
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(surface, route).Observe(float64(size))
		}
	}
}
