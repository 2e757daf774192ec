package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logger *audit.Logger
}

func NewAuditLogsHandler(logger *audit.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logger: logger}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	page := intQuery(c, "page")
	if page <= 0 {
		page = 1
	}
	limit := intQuery(c, "limit")
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	f := audit.Filter{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
	}

	// Dates are whole UTC days; "to" is inclusive.
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(timezone.DateLayout, raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(timezone.DateLayout, raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "to must be YYYY-MM-DD")
			return
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}

	logs, total, err := h.logger.List(c.Request.Context(), salonID, f, page, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	httpresp.OK(c, httpresp.PageResponse[models.AuditLog]{
		Data:     logs,
		Page:     page,
		PageSize: limit,
		Total:    total,
	})
}
