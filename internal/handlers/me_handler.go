package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	ctx := c.Request.Context()

	var user models.User
	if err := h.db.WithContext(ctx).Preload("Salon").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "user_not_found", "user not found")
			return
		}
		httperr.Respond(c, err)
		return
	}

	resp := gin.H{
		"user":  userJSON(&user),
		"salon": salonJSON(&user.Salon),
	}

	if user.Role == models.RoleStaff {
		var staff models.Staff
		err := h.db.WithContext(ctx).
			Preload("Services").
			Where("user_id = ?", user.ID).
			First(&staff).Error
		if err == nil {
			resp["staff"] = staff
		}
	}

	c.JSON(http.StatusOK, resp)
}
