package scheduling

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Repository interface {
	// -------- Salon / Service --------
	GetSalon(
		ctx context.Context,
		id uint,
	) (*models.Salon, error)

	GetService(
		ctx context.Context,
		serviceID uint,
	) (*models.Service, error)

	// -------- Availability rules --------
	ListWindowsForDay(
		ctx context.Context,
		serviceID uint,
		dayOfWeek int,
	) ([]models.AvailabilityWindow, error)

	ListWindows(
		ctx context.Context,
		serviceID uint,
	) ([]models.AvailabilityWindow, error)

	ReplaceWindows(
		ctx context.Context,
		serviceID uint,
		windows []models.AvailabilityWindow,
	) error

	// -------- Staff --------
	IsStaffSpecialized(
		ctx context.Context,
		staffID uint,
		serviceID uint,
	) (bool, error)

	// -------- Bookings --------
	ListBookingsForDate(
		ctx context.Context,
		serviceID uint,
		staffID *uint,
		date string,
	) ([]models.Booking, error)

	// CreateBookingWithinCapacity re-counts overlapping bookings and inserts
	// b inside one transaction. It fails with a conflict when capacity
	// bookings already overlap b.
	CreateBookingWithinCapacity(
		ctx context.Context,
		b *models.Booking,
		capacity int,
		buffer time.Duration,
	) error

	GetBookingForSalon(
		ctx context.Context,
		bookingID uint,
		salonID uint,
	) (*models.Booking, error)

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error
}

// SlotCache stores generated slots for dates after today. Get resolves the
// versioned key once; a miss is filled with Set under that same key, so an
// Invalidate in between leaves the write unreachable. An empty key means
// there is nothing to fill.
type SlotCache interface {
	Get(ctx context.Context, serviceID uint, date string, staffID *uint) (slots []Slot, key string, ok bool)
	Set(ctx context.Context, key string, slots []Slot)
	Invalidate(ctx context.Context, serviceID uint)
}
