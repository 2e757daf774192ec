package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	ucattendance "github.com/BruksfildServices01/salon-scheduler/internal/usecase/attendance"
)

const (
	actionClockIn  = "clock_in"
	actionClockOut = "clock_out"
)

// ======================================================
// HANDLER
// ======================================================

type WorkHandler struct {
	clockInUC  *ucattendance.ClockIn
	clockOutUC *ucattendance.ClockOut
	breaksUC   *ucattendance.Breaks
	statusUC   *ucattendance.GetStatus
	historyUC  *ucattendance.History
}

func NewWorkHandler(
	clockInUC *ucattendance.ClockIn,
	clockOutUC *ucattendance.ClockOut,
	breaksUC *ucattendance.Breaks,
	statusUC *ucattendance.GetStatus,
	historyUC *ucattendance.History,
) *WorkHandler {
	return &WorkHandler{
		clockInUC:  clockInUC,
		clockOutUC: clockOutUC,
		breaksUC:   breaksUC,
		statusUC:   statusUC,
		historyUC:  historyUC,
	}
}

// ======================================================
// REQUESTS / RESPONSES
// ======================================================

type ClockRequest struct {
	Action    string   `json:"action"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Notes     string   `json:"notes" binding:"max=255"`
	WorkDate  string   `json:"workDate"`
	// HH:MM on the work date, or an RFC 3339 instant on that date.
	ClockTime string `json:"clockTime"`
}

type HistoryResponse struct {
	httpresp.PageResponse[models.WorkSession]
	Summary attendance.Summary `json:"summary"`
}

func staffRef(c *gin.Context) ucattendance.StaffRef {
	return ucattendance.StaffRef{
		UserID:  c.MustGet(middleware.ContextUserID).(uint),
		SalonID: c.MustGet(middleware.ContextSalonID).(uint),
	}
}

// ======================================================
// CLOCK
// ======================================================

// Clock dispatches on the action field of the body.
func (h *WorkHandler) Clock(c *gin.Context) {
	h.clock(c, "")
}

func (h *WorkHandler) ClockIn(c *gin.Context) {
	h.clock(c, actionClockIn)
}

func (h *WorkHandler) ClockOut(c *gin.Context) {
	h.clock(c, actionClockOut)
}

// normalizeAction accepts clock_in, clock-in and ClockIn alike.
func normalizeAction(raw string) string {
	switch strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(raw)) {
	case "clockin":
		return actionClockIn
	case "clockout":
		return actionClockOut
	}
	return raw
}

func (h *WorkHandler) clock(c *gin.Context, action string) {
	var req ClockRequest
	// An empty body is fine for the fixed-action routes.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", err.Error())
			return
		}
	}
	if action == "" {
		action = normalizeAction(req.Action)
	}

	in := ucattendance.ClockInput{
		StaffRef:  staffRef(c),
		WorkDate:  req.WorkDate,
		ClockTime: req.ClockTime,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
	}

	var (
		st  *attendance.WorkStatus
		err error
	)
	switch action {
	case actionClockIn:
		st, err = h.clockInUC.Execute(c.Request.Context(), in)
	case actionClockOut:
		st, err = h.clockOutUC.Execute(c.Request.Context(), in)
	default:
		httperr.BadRequest(c, "invalid_action", "action must be clock_in or clock_out")
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, st)
}

// ======================================================
// BREAKS
// ======================================================

func (h *WorkHandler) StartBreak(c *gin.Context) {
	st, err := h.breaksUC.Start(c.Request.Context(), staffRef(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, st)
}

func (h *WorkHandler) EndBreak(c *gin.Context) {
	st, err := h.breaksUC.End(c.Request.Context(), staffRef(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, st)
}

// ======================================================
// READS
// ======================================================

func (h *WorkHandler) Status(c *gin.Context) {
	st, err := h.statusUC.Execute(c.Request.Context(), staffRef(c), c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, st)
}

func (h *WorkHandler) History(c *gin.Context) {
	out, err := h.historyUC.Execute(c.Request.Context(), ucattendance.HistoryInput{
		StaffRef: staffRef(c),
		FromDate: c.Query("fromDate"),
		ToDate:   c.Query("toDate"),
		Page:     intQuery(c, "page"),
		PageSize: intQuery(c, "pageSize"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	sessions := out.Sessions
	if sessions == nil {
		sessions = []models.WorkSession{}
	}

	httpresp.OK(c, HistoryResponse{
		PageResponse: httpresp.PageResponse[models.WorkSession]{
			Data:     sessions,
			Page:     out.Page,
			PageSize: out.PageSize,
			Total:    out.Total,
		},
		Summary: out.Summary,
	})
}
