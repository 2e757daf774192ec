package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	ucAttendance "github.com/BruksfildServices01/salon-scheduler/internal/usecase/attendance"
	ucScheduling "github.com/BruksfildServices01/salon-scheduler/internal/usecase/scheduling"
)

// Deps are the process-wide singletons built in main.
type Deps struct {
	Audit       *audit.Dispatcher
	AuditLogger *audit.Logger
	Slots       scheduling.SlotCache
	Clock       clock.Clock
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {

	// ======================================================
	// INFRA
	// ======================================================
	schedulingRepo := infraRepo.NewSchedulingGormRepository(db)
	workRepo := infraRepo.NewWorkSessionGormRepository(db)

	clockLimiter := middleware.NewUserRateLimiter(cfg.ClockRateLimitPerMinute)

	// ======================================================
	// USE CASES — SCHEDULING
	// ======================================================
	getAvailabilityUC := ucScheduling.NewGetAvailability(schedulingRepo, deps.Slots, deps.Clock)
	createBookingUC := ucScheduling.NewCreateBooking(schedulingRepo, deps.Slots, deps.Audit, deps.Clock)
	updateBookingStatusUC := ucScheduling.NewUpdateBookingStatus(schedulingRepo, deps.Slots, deps.Audit, deps.Clock)
	listWindowsUC := ucScheduling.NewListWindows(schedulingRepo)
	replaceWindowsUC := ucScheduling.NewReplaceWindows(schedulingRepo, deps.Slots, deps.Audit)

	// ======================================================
	// USE CASES — ATTENDANCE
	// ======================================================
	clockInUC := ucAttendance.NewClockIn(workRepo, deps.Audit, deps.Clock)
	clockOutUC := ucAttendance.NewClockOut(workRepo, deps.Audit, deps.Clock, cfg.DefaultCommissionRate)
	breaksUC := ucAttendance.NewBreaks(workRepo, deps.Audit, deps.Clock)
	statusUC := ucAttendance.NewGetStatus(workRepo, deps.Clock)
	historyUC := ucAttendance.NewHistory(workRepo, deps.Clock)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, deps.Audit)
	meHandler := handlers.NewMeHandler(db)
	salonHandler := handlers.NewSalonHandler(db, deps.Audit)
	staffHandler := handlers.NewStaffHandler(db, cfg, deps.Audit)
	serviceHandler := handlers.NewServiceHandler(db, deps.Slots, deps.Audit)
	clientHandler := handlers.NewClientHandler(db)
	publicHandler := handlers.NewPublicHandler(db)

	availabilityHandler := handlers.NewAvailabilityHandler(getAvailabilityUC, listWindowsUC, replaceWindowsUC)
	bookingHandler := handlers.NewBookingHandler(db, createBookingUC, updateBookingStatusUC)
	workHandler := handlers.NewWorkHandler(clockInUC, clockOutUC, breaksUC, statusUC, historyUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.AuditLogger)

	// ======================================================
	// API
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/public/:slug", publicHandler.Catalog)
		api.GET("/services/:serviceId/availability/:date", availabilityHandler.Slots)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.POST("/bookings",
				middleware.RequireRole(models.RoleClient, models.RoleOwner),
				bookingHandler.Create,
			)

			owner := secured.Group("/me")
			owner.Use(middleware.RequireRole(models.RoleOwner))
			{
				owner.GET("/salon", salonHandler.GetMeSalon)
				owner.PATCH("/salon", salonHandler.UpdateMeSalon)

				owner.GET("/staff", staffHandler.List)
				owner.POST("/staff", staffHandler.Create)

				owner.GET("/clients", clientHandler.List)

				owner.GET("/services", serviceHandler.List)
				owner.POST("/services", serviceHandler.Create)
				owner.PATCH("/services/:id", serviceHandler.Update)
				owner.GET("/services/:serviceId/availability", availabilityHandler.ListWindows)
				owner.PUT("/services/:serviceId/availability", availabilityHandler.ReplaceWindows)

				owner.GET("/audit-logs", auditLogsHandler.List)
			}

			// Staff run the bookings they serve.
			team := secured.Group("/me/bookings")
			team.Use(middleware.RequireRole(models.RoleOwner, models.RoleStaff))
			{
				team.GET("", bookingHandler.ListByDate)
				team.PATCH("/:id/status", bookingHandler.UpdateStatus)
			}

			// ------------------------------
			// WORK SESSIONS
			// ------------------------------
			work := secured.Group("/staff/work")
			work.Use(middleware.RequireRole(models.RoleStaff, models.RoleOwner))
			{
				clocked := work.Group("")
				clocked.Use(clockLimiter.Middleware())
				{
					clocked.POST("/clock", workHandler.Clock)
					clocked.POST("/clock-in", workHandler.ClockIn)
					clocked.POST("/clock-out", workHandler.ClockOut)
					clocked.POST("/break/start", workHandler.StartBreak)
					clocked.POST("/break/end", workHandler.EndBreak)
				}

				work.GET("/status", workHandler.Status)
				work.GET("/history", workHandler.History)
			}
		}
	}
}
