package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type ServiceHandler struct {
	db    *gorm.DB
	slots scheduling.SlotCache
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, slots scheduling.SlotCache, audit *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, slots: slots, audit: audit}
}

type CreateServiceRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	DurationMin   int     `json:"duration_min" binding:"required,min=1"`
	Price         float64 `json:"price" binding:"min=0"`
	RequiresStaff bool    `json:"requires_staff"`
}

type UpdateServiceRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	DurationMin   *int     `json:"duration_min" binding:"omitempty,min=1"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	RequiresStaff *bool    `json:"requires_staff"`
	Active        *bool    `json:"active"`
}

func (h *ServiceHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	svc := models.Service{
		SalonID:       salonID,
		Name:          req.Name,
		Description:   req.Description,
		DurationMin:   req.DurationMin,
		Price:         req.Price,
		RequiresStaff: req.RequiresStaff,
		Active:        true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&svc).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   &userID,
		Action:   "service_created",
		Entity:   "service",
		EntityID: &svc.ID,
	})

	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("salon_id = ?", salonID).
		Order("name ASC").
		Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND salon_id = ?", id, salonID).
		First(&svc).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "service not found")
			return
		}
		httperr.Respond(c, err)
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.RequiresStaff != nil {
		svc.RequiresStaff = *req.RequiresStaff
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	// Save writes zero values too, so deactivation sticks.
	if err := h.db.WithContext(c.Request.Context()).Save(&svc).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	// Duration and activity feed slot generation.
	h.slots.Invalidate(c.Request.Context(), svc.ID)

	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   &userID,
		Action:   "service_updated",
		Entity:   "service",
		EntityID: &svc.ID,
		Metadata: req,
	})

	c.JSON(http.StatusOK, svc)
}
