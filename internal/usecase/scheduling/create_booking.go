package scheduling

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	SalonID  uint
	ClientID uint

	ServiceID uint
	StaffID   *uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	cache domain.SlotCache
	audit *audit.Dispatcher
	clock clock.Clock
}

func NewCreateBooking(
	repo domain.Repository,
	cache domain.SlotCache,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		cache: cache,
		audit: audit,
		clock: clk,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// Service
	// --------------------------------------------------
	svc, err := loadActiveService(ctx, uc.repo, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.SalonID != in.SalonID {
		return nil, httperr.NotFoundErr("service_not_found", "service not found")
	}

	salon, err := uc.repo.GetSalon(ctx, svc.SalonID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(salon.Timezone)

	// --------------------------------------------------
	// Date / time in the salon timezone
	// --------------------------------------------------
	date, err := timezone.ParseDate(in.Date, loc)
	if err != nil {
		return nil, httperr.Validation("invalid_date_or_time", "date must be YYYY-MM-DD")
	}
	start, err := timezone.At(date, in.Time, loc)
	if err != nil {
		return nil, httperr.Validation("invalid_date_or_time", "time must be HH:MM")
	}

	if !start.After(uc.clock.Now()) {
		return nil, httperr.Validation("booking_in_past", "booking must start in the future")
	}

	// --------------------------------------------------
	// Staff
	// --------------------------------------------------
	if svc.RequiresStaff && in.StaffID == nil {
		return nil, httperr.Validation("staff_required", "this service needs a staff member")
	}
	staffID, err := checkStaff(ctx, uc.repo, svc, in.StaffID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Availability rule
	// --------------------------------------------------
	windows, err := uc.repo.ListWindowsForDay(ctx, svc.ID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}

	window, ok := domain.FitWindow(windows, svc.DurationMin, start)
	if !ok {
		return nil, httperr.Validation("outside_availability", "requested time is not an available slot")
	}

	// --------------------------------------------------
	// Insert under the capacity lock
	// --------------------------------------------------
	b := &models.Booking{
		SalonID:     svc.SalonID,
		ServiceID:   svc.ID,
		StaffID:     staffID,
		ClientID:    in.ClientID,
		BookingDate: in.Date,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(svc.DurationMin) * time.Minute),
		DurationMin: svc.DurationMin,
		Status:      string(domain.InitialStatus()),
		TotalAmount: svc.Price,
		Notes:       in.Notes,
	}

	buffer := time.Duration(window.BufferTimeMinutes) * time.Minute
	if err := uc.repo.CreateBookingWithinCapacity(ctx, b, window.MaxBookingsPerSlot, buffer); err != nil {
		if httperr.IsBusiness(err, "slot_unavailable") {
			metrics.IncBookingCreated("conflict")
		}
		return nil, err
	}

	metrics.IncBookingCreated("created")
	invalidate(ctx, uc.cache, svc.ID)

	uc.audit.Dispatch(audit.Event{
		SalonID:  svc.SalonID,
		UserID:   &in.ClientID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{
			"serviceId": svc.ID,
			"date":      in.Date,
			"time":      in.Time,
		},
	})

	return b, nil
}
