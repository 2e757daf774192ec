package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucscheduling "github.com/BruksfildServices01/salon-scheduler/internal/usecase/scheduling"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	db           *gorm.DB
	createUC     *ucscheduling.CreateBooking
	transitionUC *ucscheduling.UpdateBookingStatus
}

func NewBookingHandler(
	db *gorm.DB,
	createUC *ucscheduling.CreateBooking,
	transitionUC *ucscheduling.UpdateBookingStatus,
) *BookingHandler {
	return &BookingHandler{
		db:           db,
		createUC:     createUC,
		transitionUC: transitionUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ServiceID uint   `json:"service_id" binding:"required"`
	StaffID   *uint  `json:"staff_id"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Notes     string `json:"notes"`

	// Owners may book on behalf of a client of their salon.
	ClientID *uint `json:"client_id"`
}

type UpdateBookingStatusRequest struct {
	Action string `json:"action" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	role := c.GetString(middleware.ContextUserRole)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	clientID := userID
	if req.ClientID != nil && role == models.RoleOwner {
		var count int64
		if err := h.db.WithContext(c.Request.Context()).
			Model(&models.User{}).
			Where("id = ? AND salon_id = ? AND role = ?", *req.ClientID, salonID, models.RoleClient).
			Count(&count).Error; err != nil {
			httperr.Respond(c, err)
			return
		}
		if count == 0 {
			httperr.NotFound(c, "client_not_found", "client not found")
			return
		}
		clientID = *req.ClientID
	}

	booking, err := h.createUC.Execute(c.Request.Context(), ucscheduling.CreateBookingInput{
		SalonID:   salonID,
		ClientID:  clientID,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		Date:      req.Date,
		Time:      req.Time,
		Notes:     req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, booking)
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "date is required")
		return
	}
	if _, err := time.Parse(timezone.DateLayout, dateStr); err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	staffID, ok := optionalUintQuery(c, "staffId")
	if !ok {
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Where("salon_id = ? AND booking_date = ?", salonID, dateStr)
	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	}

	var bookings []models.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, bookings)
}

// ======================================================
// STATUS
// ======================================================

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	booking, err := h.transitionUC.Execute(c.Request.Context(), ucscheduling.UpdateBookingStatusInput{
		SalonID:   salonID,
		UserID:    userID,
		BookingID: id,
		Action:    ucscheduling.BookingAction(req.Action),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, booking)
}
