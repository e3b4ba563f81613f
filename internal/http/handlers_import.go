package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"buildcost/internal/importer"
	applog "buildcost/internal/log"
)

// errRowSourceUnavailable is returned for sheet-range imports when no
// spreadsheet is configured.
var errRowSourceUnavailable = errors.New("spreadsheet source not configured")

// handleImport imports budget items from a CSV body or, with ?range=, from
// a spreadsheet range. ?replace=true drops the project's current items
// first.
func (s *Server) handleImport(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := pathParam(c, "id")
	if err := s.requireProject(c, projectID); err != nil {
		s.writeError(c, applog.OpImport, err)
		return
	}

	var (
		parsed importer.Result
		err    error
	)
	if sheetRange := strings.TrimSpace(c.Query("range")); sheetRange != "" {
		if s.deps.Rows == nil {
			s.writeError(c, applog.OpImport, errRowSourceUnavailable)
			return
		}
		parsed, err = importer.FromSheet(ctx, s.deps.Rows, sheetRange)
	} else {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		parsed, err = importer.ParseCSV(body)
		if err != nil {
			err = badRequest("unreadable CSV: %v", err)
		}
	}
	if err != nil {
		s.writeError(c, applog.OpImport, err)
		return
	}

	res, err := s.deps.Records.ImportBudgetItems(ctx, projectID, parsed, queryBool(c, "replace"))
	if err != nil {
		s.writeError(c, applog.OpImport, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
