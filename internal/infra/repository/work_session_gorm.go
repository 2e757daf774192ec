package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type WorkSessionGormRepository struct {
	db *gorm.DB
}

func NewWorkSessionGormRepository(db *gorm.DB) *WorkSessionGormRepository {
	return &WorkSessionGormRepository{db: db}
}

var activeStatus = string(attendance.SessionActive)

// --------------------------------------------------
// Staff / Salon
// --------------------------------------------------

func (r *WorkSessionGormRepository) GetStaffByUserID(
	ctx context.Context,
	userID uint,
	salonID uint,
) (*models.Staff, error) {

	var staff models.Staff
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND salon_id = ?", userID, salonID).
		First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *WorkSessionGormRepository) GetSalon(
	ctx context.Context,
	id uint,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, id).Error; err != nil {
		return nil, err
	}
	return &salon, nil
}

// --------------------------------------------------
// Sessions
// --------------------------------------------------

func (r *WorkSessionGormRepository) FindActiveSession(
	ctx context.Context,
	staffID uint,
	workDate string,
) (*models.WorkSession, error) {

	var s models.WorkSession
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND work_date = ? AND status = ?", staffID, workDate, activeStatus).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *WorkSessionGormRepository) CreateSession(
	ctx context.Context,
	s *models.WorkSession,
) error {

	err := r.db.WithContext(ctx).Create(s).Error
	if isUniqueViolation(err) {
		return httperr.Conflict("already_clocked_in", "staff member already has an active work session for this date")
	}
	return err
}

func (r *WorkSessionGormRepository) CloseSession(
	ctx context.Context,
	s *models.WorkSession,
	openBreak *models.WorkBreak,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.WorkSession{}).
			Where("id = ? AND status = ?", s.ID, activeStatus).
			Updates(map[string]any{
				"clock_out_time":      s.ClockOutTime,
				"actual_minutes":      s.ActualMinutes,
				"status":              s.Status,
				"clock_out_latitude":  s.ClockOutLatitude,
				"clock_out_longitude": s.ClockOutLongitude,
				"services_completed":  s.ServicesCompleted,
				"revenue_generated":   s.RevenueGenerated,
				"commission_earned":   s.CommissionEarned,
				"notes":               s.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.Conflict("session_not_active", "work session is already closed")
		}

		if openBreak == nil || openBreak.EndedAt == nil {
			return nil
		}

		res = tx.
			Model(&models.WorkBreak{}).
			Where("id = ? AND ended_at IS NULL", openBreak.ID).
			Update("ended_at", *openBreak.EndedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.Conflict("break_not_open", "break was already ended")
		}

		minutes := int(openBreak.EndedAt.Sub(openBreak.StartedAt).Minutes())
		if err := tx.
			Model(&models.WorkSession{}).
			Where("id = ?", s.ID).
			Update("break_minutes", gorm.Expr("break_minutes + ?", minutes)).Error; err != nil {
			return err
		}
		s.BreakMinutes += minutes
		return nil
	})
}

func (r *WorkSessionGormRepository) AddBreakMinutes(
	ctx context.Context,
	sessionID uint,
	minutes int,
) error {

	return r.db.WithContext(ctx).
		Model(&models.WorkSession{}).
		Where("id = ?", sessionID).
		Update("break_minutes", gorm.Expr("break_minutes + ?", minutes)).Error
}

func (r *WorkSessionGormRepository) ListSessionsForDate(
	ctx context.Context,
	staffID uint,
	workDate string,
) ([]models.WorkSession, error) {

	var sessions []models.WorkSession
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND work_date = ?", staffID, workDate).
		Order("clock_in_time ASC, id ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *WorkSessionGormRepository) ListSessionsInRange(
	ctx context.Context,
	staffID uint,
	fromDate string,
	toDate string,
	page int,
	pageSize int,
) ([]models.WorkSession, int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.WorkSession{}).
		Where("staff_id = ? AND work_date >= ? AND work_date <= ?", staffID, fromDate, toDate).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.WorkSession
	if err := q.
		Order("work_date DESC, clock_in_time DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *WorkSessionGormRepository) ListAllSessionsInRange(
	ctx context.Context,
	staffID uint,
	fromDate string,
	toDate string,
) ([]models.WorkSession, error) {

	var sessions []models.WorkSession
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND work_date >= ? AND work_date <= ?", staffID, fromDate, toDate).
		Order("work_date ASC, clock_in_time ASC, id ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func (r *WorkSessionGormRepository) ListStaffBookingsForDate(
	ctx context.Context,
	staffID uint,
	date string,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("staff_id = ? AND booking_date = ?", staffID, date).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// --------------------------------------------------
// Breaks
// --------------------------------------------------

func (r *WorkSessionGormRepository) FindOpenBreak(
	ctx context.Context,
	sessionID uint,
) (*models.WorkBreak, error) {

	var b models.WorkBreak
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND ended_at IS NULL", sessionID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *WorkSessionGormRepository) CreateBreak(
	ctx context.Context,
	b *models.WorkBreak,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *WorkSessionGormRepository) CloseBreak(
	ctx context.Context,
	b *models.WorkBreak,
	endedAt time.Time,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.WorkBreak{}).
		Where("id = ? AND ended_at IS NULL", b.ID).
		Update("ended_at", endedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.Conflict("break_not_open", "break was already ended")
	}

	b.EndedAt = &endedAt
	return nil
}

// Compile-time check
var _ attendance.Repository = (*WorkSessionGormRepository)(nil)
