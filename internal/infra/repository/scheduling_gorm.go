package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type SchedulingGormRepository struct {
	db *gorm.DB
}

func NewSchedulingGormRepository(db *gorm.DB) *SchedulingGormRepository {
	return &SchedulingGormRepository{db: db}
}

// --------------------------------------------------
// Salon / Service
// --------------------------------------------------

func (r *SchedulingGormRepository) GetSalon(
	ctx context.Context,
	id uint,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, id).Error; err != nil {
		return nil, err
	}
	return &salon, nil
}

func (r *SchedulingGormRepository) GetService(
	ctx context.Context,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, serviceID).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Availability windows
// --------------------------------------------------

func (r *SchedulingGormRepository) ListWindowsForDay(
	ctx context.Context,
	serviceID uint,
	dayOfWeek int,
) ([]models.AvailabilityWindow, error) {

	var windows []models.AvailabilityWindow
	if err := r.db.WithContext(ctx).
		Where("service_id = ? AND day_of_week = ?", serviceID, dayOfWeek).
		Order("start_time ASC").
		Find(&windows).Error; err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *SchedulingGormRepository) ListWindows(
	ctx context.Context,
	serviceID uint,
) ([]models.AvailabilityWindow, error) {

	var windows []models.AvailabilityWindow
	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error; err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *SchedulingGormRepository) ReplaceWindows(
	ctx context.Context,
	serviceID uint,
	windows []models.AvailabilityWindow,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("service_id = ?", serviceID).
			Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}

		if len(windows) == 0 {
			return nil
		}

		for i := range windows {
			windows[i].ID = 0
			windows[i].ServiceID = serviceID
		}
		return tx.Create(&windows).Error
	})
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *SchedulingGormRepository) IsStaffSpecialized(
	ctx context.Context,
	staffID uint,
	serviceID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Table("staff_services").
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func bookingsForDate(
	db *gorm.DB,
	serviceID uint,
	staffID *uint,
	date string,
) ([]models.Booking, error) {

	q := db.
		Where("service_id = ? AND booking_date = ?", serviceID, date).
		Where("status <> ?", string(scheduling.BookingCancelled))

	if staffID != nil {
		q = q.Where("staff_id = ?", *staffID)
	}

	var bookings []models.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *SchedulingGormRepository) ListBookingsForDate(
	ctx context.Context,
	serviceID uint,
	staffID *uint,
	date string,
) ([]models.Booking, error) {
	return bookingsForDate(r.db.WithContext(ctx), serviceID, staffID, date)
}

func (r *SchedulingGormRepository) CreateBookingWithinCapacity(
	ctx context.Context,
	b *models.Booking,
	capacity int,
	buffer time.Duration,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes booking creation per service.
		var svc models.Service
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&svc, b.ServiceID).Error; err != nil {
			return err
		}

		existing, err := bookingsForDate(tx, b.ServiceID, b.StaffID, b.BookingDate)
		if err != nil {
			return err
		}

		occupied := scheduling.CountOverlapping(
			scheduling.BookingInterval(*b),
			scheduling.OccupyingIntervals(existing),
			buffer,
		)
		if occupied >= max(capacity, 1) {
			return httperr.Conflict("slot_unavailable", "the selected slot is no longer available")
		}

		return tx.Create(b).Error
	})
}

func (r *SchedulingGormRepository) GetBookingForSalon(
	ctx context.Context,
	bookingID uint,
	salonID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", bookingID, salonID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *SchedulingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// Compile-time check
var _ scheduling.Repository = (*SchedulingGormRepository)(nil)
