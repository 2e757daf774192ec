package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the salon catalog to visitors who are not logged in.
type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

type publicStaff struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ServiceIDs []uint `json:"service_ids"`
}

////////////////////////////////////////////////////////
// CATALOG
////////////////////////////////////////////////////////

func (h *PublicHandler) Catalog(c *gin.Context) {
	ctx := c.Request.Context()
	slug := strings.ToLower(c.Param("slug"))

	var salon models.Salon
	if err := h.db.WithContext(ctx).Where("slug = ?", slug).First(&salon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "salon_not_found", "salon not found")
			return
		}
		httperr.Respond(c, err)
		return
	}

	q := h.db.WithContext(ctx).
		Where("salon_id = ? AND active = ?", salon.ID, true)

	if query := strings.TrimSpace(strings.ToLower(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	services := []models.Service{}
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var staff []models.Staff
	if err := h.db.WithContext(ctx).
		Preload("User").
		Preload("Services").
		Where("salon_id = ? AND active = ?", salon.ID, true).
		Order("id ASC").
		Find(&staff).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	team := make([]publicStaff, 0, len(staff))
	for _, s := range staff {
		ids := make([]uint, 0, len(s.Services))
		for _, svc := range s.Services {
			ids = append(ids, svc.ID)
		}
		team = append(team, publicStaff{ID: s.ID, Name: s.User.Name, ServiceIDs: ids})
	}

	c.JSON(http.StatusOK, gin.H{
		"salon":    salonJSON(&salon),
		"services": services,
		"staff":    team,
	})
}
