package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"buildcost/internal/core"
	"buildcost/internal/estimating"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
	"buildcost/internal/store"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, estimating.ErrUnavailable), errors.Is(err, services.ErrPublisherUnavailable),
		errors.Is(err, errRowSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, estimating.ErrMalformedResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError writes {"error": ...}. Internal errors are logged and
// replaced by a generic message.
func (s *Server) writeError(c *gin.Context, operation string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		r := c.Request
		s.structured.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, operation,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()))
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
