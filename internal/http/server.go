// Package http serves the JSON API: record CRUD plus the budget,
// payment application, estimating, import and export endpoints.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"buildcost/internal/estimating"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
	"buildcost/internal/sheets"
)

// Deps are the services the handlers call. Exports and Rows are optional.
type Deps struct {
	Records   *services.RecordService
	Budget    *services.BudgetService
	Estimator *estimating.Estimator
	Exports   *services.ExportService
	Rows      sheets.RowReader
}

// Options configure the listener and the middleware around the API.
type Options struct {
	Addr               string
	CORSAllowedOrigins []string
	TrustedProxies     []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	Logger             *applog.Logger
}

// Server is the JSON API: a gin engine behind the security, rate limit
// and request logging middleware.
type Server struct {
	http.Server

	deps        Deps
	engine      *gin.Engine
	logger      *applog.Logger
	structured  *applog.StructuredLogger
	rateLimiter *rateLimiter
	trusted     []*net.IPNet
	security    *securityMetrics
	appMetrics  *appMetrics
}

type appMetrics struct {
	requests     int64
	recordWrites int64
	exports      int64
	estimates    int64
	uptime       time.Time
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewServer builds the routes and returns a ready-to-run server.
func NewServer(opts Options, deps Deps) (*Server, error) {
	if deps.Records == nil || deps.Budget == nil {
		return nil, fmt.Errorf("http: records and budget services are required")
	}
	trusted, err := parseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.NewWithLevel(slog.LevelInfo, applog.ComponentHTTP)
	}

	s := &Server{
		deps:        deps,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow),
		trusted:     trusted,
		security:    &securityMetrics{},
		appMetrics:  &appMetrics{uptime: time.Now()},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	if len(opts.CORSAllowedOrigins) > 0 {
		engine.Use(cors.New(corsConfig(opts.CORSAllowedOrigins)))
	}
	s.engine = engine
	s.routes()

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.withMiddleware(engine),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// corsConfig allows the given origins. A "*" entry allows every origin,
// without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)
	r.GET("/metrics", s.handleMetrics)

	api := r.Group("/api")
	mount(s, api, projectRoutes)
	mount(s, api, categoryRoutes)
	mount(s, api, vendorRoutes)
	mount(s, api, budgetItemRoutes)
	mount(s, api, expenseRoutes)
	mount(s, api, changeOrderRoutes)
	mount(s, api, rfiRoutes)
	mount(s, api, taskRoutes)

	api.POST("/projects/:id/budget-items/import", s.handleImport)
	api.GET("/projects/:id/categories/:name", s.handleCategory)
	api.GET("/projects/:id/budget-summary", s.handleBudgetSummary)
	api.GET("/projects/:id/rollup", s.handleRollup)
	api.POST("/projects/:id/payment-application", s.handlePaymentApplication)
	api.GET("/projects/:id/profit-loss", s.handleProfitLoss)
	api.POST("/projects/:id/estimate", s.handleEstimate)
	api.POST("/projects/:id/change-orders/suggest", s.handleSuggestChangeOrder)
	api.POST("/projects/:id/export", s.handleExport)
}

// withMiddleware adds request tracing, security headers, rate limiting
// and request logging around the engine.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r, s.trusted)
		atomic.AddInt64(&s.appMetrics.requests, 1)

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.security) {
			applog.FromContext(ctx).WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP, s.security) {
			applog.FromContext(ctx).WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", s.rateLimiter.window.Seconds()))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded, try again later"}`))
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})

	requestID := func(r *http.Request) string {
		if id := sanitizeInput(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
			return id
		}
		return generateRequestID()
	}
	return applog.Middleware(s.logger)(applog.RequestIDMiddleware(requestID)(inner))
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the listener and background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}
