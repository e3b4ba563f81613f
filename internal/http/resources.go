package http

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"buildcost/internal/core"
	applog "buildcost/internal/log"
	"buildcost/internal/services"
)

// recordRoutes describes the CRUD routes of one record kind. Kinds with a
// project accessor are listed and created under /projects/:id/<path>.
type recordRoutes[T services.Validatable] struct {
	kind    services.Kind[T]
	path    string
	setID   func(*T, string)
	project func(*T) *string
}

var (
	projectRoutes = recordRoutes[core.Project]{
		kind: services.Projects, path: "projects",
		setID: func(p *core.Project, id string) { p.ID = id },
	}
	categoryRoutes = recordRoutes[core.BudgetCategory]{
		kind: services.Categories, path: "categories",
		setID: func(c *core.BudgetCategory, id string) { c.ID = id },
	}
	vendorRoutes = recordRoutes[core.Vendor]{
		kind: services.Vendors, path: "vendors",
		setID: func(v *core.Vendor, id string) { v.ID = id },
	}
	budgetItemRoutes = recordRoutes[core.BudgetItem]{
		kind: services.BudgetItems, path: "budget-items",
		setID:   func(b *core.BudgetItem, id string) { b.ID = id },
		project: func(b *core.BudgetItem) *string { return &b.ProjectID },
	}
	expenseRoutes = recordRoutes[core.Expense]{
		kind: services.Expenses, path: "expenses",
		setID:   func(e *core.Expense, id string) { e.ID = id },
		project: func(e *core.Expense) *string { return &e.ProjectID },
	}
	changeOrderRoutes = recordRoutes[core.ChangeOrder]{
		kind: services.ChangeOrders, path: "change-orders",
		setID:   func(co *core.ChangeOrder, id string) { co.ID = id },
		project: func(co *core.ChangeOrder) *string { return &co.ProjectID },
	}
	rfiRoutes = recordRoutes[core.RFI]{
		kind: services.RFIs, path: "rfis",
		setID:   func(r *core.RFI, id string) { r.ID = id },
		project: func(r *core.RFI) *string { return &r.ProjectID },
	}
	taskRoutes = recordRoutes[core.Task]{
		kind: services.Tasks, path: "tasks",
		setID:   func(t *core.Task, id string) { t.ID = id },
		project: func(t *core.Task) *string { return &t.ProjectID },
	}
)

func mount[T services.Validatable](s *Server, api *gin.RouterGroup, rr recordRoutes[T]) {
	if rr.project == nil {
		api.GET("/"+rr.path, listRecords(s, rr))
		api.POST("/"+rr.path, createRecord(s, rr))
	} else {
		api.GET("/projects/:id/"+rr.path, listRecords(s, rr))
		api.POST("/projects/:id/"+rr.path, createRecord(s, rr))
	}
	api.GET("/"+rr.path+"/:id", getRecord(s, rr))
	api.PUT("/"+rr.path+"/:id", updateRecord(s, rr))
	api.DELETE("/"+rr.path+"/:id", deleteRecord(s, rr))
}

func listRecords[T services.Validatable](s *Server, rr recordRoutes[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			recs []T
			err  error
		)
		if rr.project == nil {
			recs, err = services.List(ctx, s.deps.Records, rr.kind)
		} else if err = s.requireProject(c, pathParam(c, "id")); err == nil {
			recs, err = services.ListByProject(ctx, s.deps.Records, rr.kind, pathParam(c, "id"))
		}
		if err != nil {
			s.writeError(c, applog.OpList, err)
			return
		}
		if recs == nil {
			recs = []T{}
		}
		c.JSON(http.StatusOK, recs)
	}
}

func createRecord[T services.Validatable](s *Server, rr recordRoutes[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec T
		if err := bindJSON(c, &rec, false); err != nil {
			s.writeError(c, applog.OpCreate, err)
			return
		}
		rr.setID(&rec, "")
		if rr.project != nil {
			projectID := pathParam(c, "id")
			if err := s.requireProject(c, projectID); err != nil {
				s.writeError(c, applog.OpCreate, err)
				return
			}
			*rr.project(&rec) = projectID
		}
		saved, err := services.Save(c.Request.Context(), s.deps.Records, rr.kind, rec)
		if err != nil {
			s.writeError(c, applog.OpCreate, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.recordWrites, 1)
		logSaved(s, c, rr, saved)
		c.JSON(http.StatusCreated, saved)
	}
}

func getRecord[T services.Validatable](s *Server, rr recordRoutes[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := services.Get(c.Request.Context(), s.deps.Records, rr.kind, pathParam(c, "id"))
		if err != nil {
			s.writeError(c, applog.OpRead, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// updateRecord replaces a record. A project-scoped record keeps its
// project when the body leaves it empty.
func updateRecord[T services.Validatable](s *Server, rr recordRoutes[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := pathParam(c, "id")
		existing, err := services.Get(ctx, s.deps.Records, rr.kind, id)
		if err != nil {
			s.writeError(c, applog.OpUpdate, err)
			return
		}
		var rec T
		if err := bindJSON(c, &rec, false); err != nil {
			s.writeError(c, applog.OpUpdate, err)
			return
		}
		rr.setID(&rec, id)
		if rr.project != nil {
			projectID := rr.project(&rec)
			previous := *rr.project(&existing)
			if *projectID == "" {
				*projectID = previous
			} else if *projectID != previous {
				if err := s.requireProject(c, *projectID); err != nil {
					s.writeError(c, applog.OpUpdate, err)
					return
				}
			}
		}
		saved, err := services.Save(ctx, s.deps.Records, rr.kind, rec)
		if err != nil {
			s.writeError(c, applog.OpUpdate, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.recordWrites, 1)
		logSaved(s, c, rr, saved)
		c.JSON(http.StatusOK, saved)
	}
}

func deleteRecord[T services.Validatable](s *Server, rr recordRoutes[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := services.Delete(c.Request.Context(), s.deps.Records, rr.kind, pathParam(c, "id")); err != nil {
			s.writeError(c, applog.OpDelete, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.recordWrites, 1)
		c.Status(http.StatusNoContent)
	}
}

func logSaved[T services.Validatable](s *Server, c *gin.Context, rr recordRoutes[T], rec T) {
	var projectID string
	if rr.project != nil {
		projectID = *rr.project(&rec)
	}
	s.structured.LogRecordSaved(c.Request.Context(), rr.kind.Name, rec.RecordID(), projectID)
}

// requireProject returns store.ErrNotFound when the project is missing.
func (s *Server) requireProject(c *gin.Context, projectID string) error {
	_, err := s.project(c, projectID)
	return err
}

func (s *Server) project(c *gin.Context, projectID string) (core.Project, error) {
	return services.Get(c.Request.Context(), s.deps.Records, services.Projects, projectID)
}
