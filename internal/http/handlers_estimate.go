package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"buildcost/internal/core"
	"buildcost/internal/estimating"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
)

type estimateRequest struct {
	Scope string `json:"scope"`
	Apply bool   `json:"apply"`
}

type suggestRequest struct {
	Description string `json:"description"`
	Apply       bool   `json:"apply"`
}

func (s *Server) estimator() (*estimating.Estimator, error) {
	if s.deps.Estimator == nil || !s.deps.Estimator.Available() {
		return nil, estimating.ErrUnavailable
	}
	return s.deps.Estimator, nil
}

// handleEstimate drafts budget items for a scope of work, saving them
// when apply is set.
func (s *Server) handleEstimate(c *gin.Context) {
	ctx := c.Request.Context()
	var req estimateRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	if strings.TrimSpace(req.Scope) == "" {
		s.writeError(c, applog.OpEstimate, fmt.Errorf("%w: scope is required", core.ErrValidation))
		return
	}
	project, err := s.project(c, pathParam(c, "id"))
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	est, err := s.estimator()
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	cats, err := services.List(ctx, s.deps.Records, services.Categories)
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}

	items, err := est.EstimateBudget(ctx, project, req.Scope, names)
	atomic.AddInt64(&s.appMetrics.estimates, 1)
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	if !req.Apply {
		c.JSON(http.StatusOK, gin.H{"items": items, "applied": false})
		return
	}
	saved := make([]core.BudgetItem, 0, len(items))
	for _, item := range items {
		out, err := services.Save(ctx, s.deps.Records, services.BudgetItems, item)
		if err != nil {
			s.writeError(c, applog.OpEstimate, err)
			return
		}
		saved = append(saved, out)
	}
	atomic.AddInt64(&s.appMetrics.recordWrites, int64(len(saved)))
	c.JSON(http.StatusCreated, gin.H{"items": saved, "applied": true})
}

// handleSuggestChangeOrder drafts a Submitted change order from a
// description, saving it when apply is set.
func (s *Server) handleSuggestChangeOrder(c *gin.Context) {
	ctx := c.Request.Context()
	var req suggestRequest
	if err := bindJSON(c, &req, false); err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		s.writeError(c, applog.OpEstimate, fmt.Errorf("%w: description is required", core.ErrValidation))
		return
	}
	project, err := s.project(c, pathParam(c, "id"))
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	est, err := s.estimator()
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	totals, err := s.deps.Budget.ProjectTotals(ctx, project.ID)
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}

	draft, err := est.SuggestChangeOrder(ctx, project, totals.ContractSumToDate, req.Description)
	atomic.AddInt64(&s.appMetrics.estimates, 1)
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	if !req.Apply {
		c.JSON(http.StatusOK, draft)
		return
	}
	saved, err := services.Save(ctx, s.deps.Records, services.ChangeOrders, draft)
	if err != nil {
		s.writeError(c, applog.OpEstimate, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.recordWrites, 1)
	c.JSON(http.StatusCreated, saved)
}
