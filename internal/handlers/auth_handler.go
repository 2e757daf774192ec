package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  *audit.Dispatcher
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, audit *audit.Dispatcher) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, audit: audit}
}

// --------- Requests ---------

// RegisterRequest creates an owner together with a new salon, or a client
// account in an existing salon when AccountType is "client".
type RegisterRequest struct {
	AccountType string `json:"account_type"`

	SalonName     string `json:"salon_name"`
	SalonSlug     string `json:"salon_slug" binding:"required"`
	SalonPhone    string `json:"salon_phone"`
	SalonAddress  string `json:"salon_address"`
	SalonTimezone string `json:"salon_timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.SalonSlug))
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

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
	}

	var salon models.Salon

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		switch req.AccountType {
		case "", models.RoleOwner:
			if req.SalonName == "" {
				return httperr.Validation("invalid_request", "salon_name is required")
			}
			tz := req.SalonTimezone
			if tz == "" {
				tz = timezone.DefaultTimezone
			}
			if !timezone.IsValid(tz) {
				return httperr.Validation("invalid_timezone", "unknown IANA timezone")
			}

			var count int64
			if err := tx.Model(&models.Salon{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return httperr.Conflict("slug_already_exists", "salon slug is taken")
			}

			salon = models.Salon{
				Name:     req.SalonName,
				Slug:     slug,
				Phone:    req.SalonPhone,
				Address:  req.SalonAddress,
				Timezone: tz,
			}
			if err := tx.Create(&salon).Error; err != nil {
				return err
			}
			user.Role = models.RoleOwner

		case models.RoleClient:
			if err := tx.Where("slug = ?", slug).First(&salon).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return httperr.NotFoundErr("salon_not_found", "salon not found")
				}
				return err
			}
			user.Role = models.RoleClient

		default:
			return httperr.Validation("invalid_account_type", "account_type must be owner or client")
		}

		user.SalonID = salon.ID
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return httperr.Conflict("email_already_exists", "e-mail is already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		SalonID:  salon.ID,
		UserID:   &user.ID,
		Action:   "user_registered",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]any{"role": user.Role},
	})

	c.JSON(http.StatusCreated, gin.H{
		"user":  userJSON(&user),
		"salon": salonJSON(&salon),
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Salon").
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "invalid e-mail or password")
			return
		}
		httperr.Respond(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "invalid e-mail or password")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userJSON(&user),
		"salon": salonJSON(&user.Salon),
		"token": token,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"salonId": user.SalonID,
		"role":    user.Role,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"phone":    u.Phone,
		"role":     u.Role,
		"salon_id": u.SalonID,
	}
}

func salonJSON(s *models.Salon) gin.H {
	return gin.H{
		"id":       s.ID,
		"name":     s.Name,
		"slug":     s.Slug,
		"phone":    s.Phone,
		"address":  s.Address,
		"timezone": s.Timezone,
	}
}
