package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// StaffHandler lets an owner onboard employees: a login plus the
// employment profile used by the attendance endpoints.
type StaffHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher
}

func NewStaffHandler(db *gorm.DB, cfg *config.Config, audit *audit.Dispatcher) *StaffHandler {
	return &StaffHandler{db: db, config: cfg, audit: audit}
}

type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`

	ShiftStart      string  `json:"shift_start" binding:"required"`
	ShiftEnd        string  `json:"shift_end" binding:"required"`
	LunchBreakStart string  `json:"lunch_break_start"`
	LunchBreakEnd   string  `json:"lunch_break_end"`
	CommissionRate  float64 `json:"commission_rate" binding:"min=0,max=100"`

	ServiceIDs []uint `json:"service_ids"`
}

func (h *StaffHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	ownerID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if _, err := attendance.ParseShift(req.ShiftStart, req.ShiftEnd, req.LunchBreakStart, req.LunchBreakEnd); err != nil {
		httperr.Respond(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.IsEmailValid(email, h.config.VerifyEmailDomain) {
		httperr.BadRequest(c, "invalid_email_domain", "The e-mail domain does not look valid.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var staff models.Staff

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var services []models.Service
		if len(req.ServiceIDs) > 0 {
			if err := tx.
				Where("salon_id = ? AND id IN ?", salonID, req.ServiceIDs).
				Find(&services).Error; err != nil {
				return err
			}
			if len(services) != len(req.ServiceIDs) {
				return httperr.Validation("invalid_service_ids", "every service must belong to the salon")
			}
		}

		user := models.User{
			SalonID:      salonID,
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hashed),
			Phone:        req.Phone,
			Role:         models.RoleStaff,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperr.Conflict("email_already_exists", "e-mail is already registered")
			}
			return err
		}

		staff = models.Staff{
			SalonID:         salonID,
			UserID:          user.ID,
			ShiftStart:      req.ShiftStart,
			ShiftEnd:        req.ShiftEnd,
			LunchBreakStart: req.LunchBreakStart,
			LunchBreakEnd:   req.LunchBreakEnd,
			CommissionRate:  req.CommissionRate,
			Active:          true,
			Services:        services,
		}
		return tx.Create(&staff).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   &ownerID,
		Action:   "staff_created",
		Entity:   "staff",
		EntityID: &staff.ID,
	})

	c.JSON(http.StatusCreated, staff)
}

func (h *StaffHandler) List(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var staff []models.Staff
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Services").
		Where("salon_id = ?", salonID).
		Order("id ASC").
		Find(&staff).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, staff)
}
