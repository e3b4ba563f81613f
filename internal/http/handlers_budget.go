package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	applog "buildcost/internal/log"
	"buildcost/internal/rollup"
	"buildcost/internal/services"
)

type categoryResponse struct {
	Totals       rollup.CategoryTotals `json:"totals"`
	InMasterList bool                  `json:"inMasterList"`
	Overrun      bool                  `json:"overrun"`
}

func (s *Server) handleCategory(c *gin.Context) {
	name := c.Param("name")
	totals, known, err := s.deps.Budget.CategoryTotals(c.Request.Context(), pathParam(c, "id"), name)
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse{Totals: totals, InMasterList: known, Overrun: totals.Overrun()})
}

func (s *Server) handleBudgetSummary(c *gin.Context) {
	report, err := s.deps.Budget.Report(c.Request.Context(), pathParam(c, "id"))
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	c.JSON(http.StatusOK, report.Budget)
}

func (s *Server) handleRollup(c *gin.Context) {
	totals, err := s.deps.Budget.ProjectTotals(c.Request.Context(), pathParam(c, "id"))
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (s *Server) handleProfitLoss(c *gin.Context) {
	report, err := s.deps.Budget.Report(c.Request.Context(), pathParam(c, "id"))
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	c.JSON(http.StatusOK, report.ProfitLoss)
}

// handlePaymentApplication computes a payment application. Header fields
// default from the project and percentages from the form defaults; the
// body overrides any of them.
func (s *Server) handlePaymentApplication(c *gin.Context) {
	projectID := pathParam(c, "id")
	project, err := s.project(c, projectID)
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	form := rollup.NewPaymentApplicationForm()
	form.ArchitectName = project.ArchitectName
	form.ContractDate = project.ContractDate
	if err := bindJSON(c, &form, true); err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	form.ProjectID = projectID

	app, err := s.deps.Budget.PaymentApplication(c.Request.Context(), form)
	if err != nil {
		s.writeError(c, applog.OpRollup, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// handleExport queues an export through the event bus. Without a bus the
// export runs inline when an exporter is configured.
func (s *Server) handleExport(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := pathParam(c, "id")
	err := s.deps.Records.RequestExport(ctx, projectID)
	switch {
	case err == nil:
		atomic.AddInt64(&s.appMetrics.exports, 1)
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "projectId": projectID})
	case errors.Is(err, services.ErrPublisherUnavailable) && s.deps.Exports != nil:
		ref, err := s.deps.Exports.ExportProject(ctx, projectID)
		if err != nil {
			s.writeError(c, applog.OpExport, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.exports, 1)
		s.structured.LogExported(ctx, projectID, ref)
		c.JSON(http.StatusOK, gin.H{"status": "exported", "projectId": projectID, "ref": ref})
	default:
		s.writeError(c, applog.OpExport, err)
	}
}
