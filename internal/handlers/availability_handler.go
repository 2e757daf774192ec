package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucscheduling "github.com/BruksfildServices01/salon-scheduler/internal/usecase/scheduling"
)

type AvailabilityHandler struct {
	slotsUC   *ucscheduling.GetAvailability
	listUC    *ucscheduling.ListWindows
	replaceUC *ucscheduling.ReplaceWindows
}

func NewAvailabilityHandler(
	slotsUC *ucscheduling.GetAvailability,
	listUC *ucscheduling.ListWindows,
	replaceUC *ucscheduling.ReplaceWindows,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		slotsUC:   slotsUC,
		listUC:    listUC,
		replaceUC: replaceUC,
	}
}

type ReplaceWindowsRequest struct {
	Windows []ucscheduling.WindowInput `json:"windows" binding:"required"`
}

// Slots is public: clients browse open times before logging in.
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	serviceID, ok := idParam(c, "serviceId")
	if !ok {
		return
	}
	staffID, ok := optionalUintQuery(c, "staffId")
	if !ok {
		return
	}

	slots, err := h.slotsUC.Execute(c.Request.Context(), ucscheduling.GetAvailabilityInput{
		ServiceID: serviceID,
		Date:      c.Param("date"),
		StaffID:   staffID,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, slots)
}

func (h *AvailabilityHandler) ListWindows(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	serviceID, ok := idParam(c, "serviceId")
	if !ok {
		return
	}

	windows, err := h.listUC.Execute(c.Request.Context(), salonID, serviceID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, windows)
}

func (h *AvailabilityHandler) ReplaceWindows(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	serviceID, ok := idParam(c, "serviceId")
	if !ok {
		return
	}

	var req ReplaceWindowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	windows, err := h.replaceUC.Execute(c.Request.Context(), ucscheduling.ReplaceWindowsInput{
		SalonID:   salonID,
		UserID:    userID,
		ServiceID: serviceID,
		Windows:   req.Windows,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, windows)
}
