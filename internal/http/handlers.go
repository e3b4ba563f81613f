package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.deps.Records.Store().Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.deps.Estimator != nil && s.deps.Estimator.Available() {
		checks["estimator"] = "ok"
	} else {
		checks["estimator"] = "not_configured"
	}

	if s.deps.Exports != nil {
		checks["exporter"] = "ok"
	} else {
		checks["exporter"] = "not_configured"
	}

	checks["rate_limiter"] = gin.H{
		"active_clients": s.rateLimiter.activeClients(),
		"status":         "ok",
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	w := c.Writer

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", atomic.LoadInt64(&s.appMetrics.requests))
	counter("record_writes_total", "Total record creates, updates and deletes", atomic.LoadInt64(&s.appMetrics.recordWrites))
	counter("exports_requested_total", "Total export requests", atomic.LoadInt64(&s.appMetrics.exports))
	counter("estimates_total", "Total AI estimate calls", atomic.LoadInt64(&s.appMetrics.estimates))
	counter("rate_limit_hits_total", "Total rate limit hits", atomic.LoadInt64(&s.security.rateLimitHits))
	counter("suspicious_requests_total", "Total suspicious requests detected", atomic.LoadInt64(&s.security.suspiciousRequests))

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.activeClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", time.Since(s.appMetrics.uptime).Seconds())
}
