package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type SalonHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewSalonHandler(db *gorm.DB, audit *audit.Dispatcher) *SalonHandler {
	return &SalonHandler{db: db, audit: audit}
}

type UpdateSalonRequest struct {
	Name                  *string  `json:"name"`
	Phone                 *string  `json:"phone"`
	Address               *string  `json:"address"`
	Timezone              *string  `json:"timezone"`
	Latitude              *float64 `json:"latitude"`
	Longitude             *float64 `json:"longitude"`
	DefaultCommissionRate *float64 `json:"default_commission_rate"`
}

func (h *SalonHandler) loadSalon(c *gin.Context) (*models.Salon, bool) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var salon models.Salon
	if err := h.db.WithContext(c.Request.Context()).First(&salon, salonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "salon_not_found", "salon not found")
			return nil, false
		}
		httperr.Respond(c, err)
		return nil, false
	}
	return &salon, true
}

func (h *SalonHandler) GetMeSalon(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, salon)
}

func (h *SalonHandler) UpdateMeSalon(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}

	var req UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			httperr.BadRequest(c, "invalid_name", "name must not be empty")
			return
		}
		salon.Name = *req.Name
	}
	if req.Phone != nil {
		salon.Phone = *req.Phone
	}
	if req.Address != nil {
		salon.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "unknown IANA timezone")
			return
		}
		salon.Timezone = *req.Timezone
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			httperr.BadRequest(c, "invalid_latitude", "latitude must be within [-90, 90]")
			return
		}
		salon.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			httperr.BadRequest(c, "invalid_longitude", "longitude must be within [-180, 180]")
			return
		}
		salon.Longitude = req.Longitude
	}
	if req.DefaultCommissionRate != nil {
		if *req.DefaultCommissionRate < 0 || *req.DefaultCommissionRate > 100 {
			httperr.BadRequest(c, "invalid_commission_rate", "commission rate must be within [0, 100]")
			return
		}
		salon.DefaultCommissionRate = *req.DefaultCommissionRate
	}

	if err := h.db.WithContext(c.Request.Context()).Save(salon).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &userID,
		Action:   "salon_updated",
		Entity:   "salon",
		EntityID: &salon.ID,
		Metadata: req,
	})

	c.JSON(http.StatusOK, salon)
}
