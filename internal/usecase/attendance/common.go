package attendance

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// StaffRef identifies the caller; clock endpoints always act on the
// caller's own staff profile.
type StaffRef struct {
	UserID  uint
	SalonID uint
}

type staffContext struct {
	staff *models.Staff
	salon *models.Salon
	loc   *time.Location
	shift domain.Shift
}

func loadStaff(
	ctx context.Context,
	repo domain.Repository,
	ref StaffRef,
) (*staffContext, error) {

	staff, err := repo.GetStaffByUserID(ctx, ref.UserID, ref.SalonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("staff_profile_not_found", "no staff profile for this user")
	}
	if err != nil {
		return nil, err
	}

	salon, err := repo.GetSalon(ctx, staff.SalonID)
	if err != nil {
		return nil, err
	}

	shift, err := domain.ShiftOf(staff)
	if err != nil {
		return nil, err
	}

	return &staffContext{
		staff: staff,
		salon: salon,
		loc:   timezone.Location(salon.Timezone),
		shift: shift,
	}, nil
}

// workDate resolves an optional YYYY-MM-DD, defaulting to today in the
// salon timezone.
func (sc *staffContext) workDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return timezone.StartOfDay(now, sc.loc), nil
	}

	d, err := timezone.ParseDate(raw, sc.loc)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_date", "date must be YYYY-MM-DD")
	}
	return d, nil
}

// clockAt places an optional clockTime on the work date. HH:MM is read in
// the salon timezone; an RFC 3339 instant must fall on the work date.
// Without one the current time is used, which only lands on today.
func (sc *staffContext) clockAt(raw string, date, now time.Time) (time.Time, error) {
	if raw == "" {
		if !timezone.SameDay(now, date, sc.loc) {
			return time.Time{}, httperr.Validation("invalid_clock_time", "clockTime is required for a work date other than today")
		}
		return now, nil
	}

	if at, err := timezone.At(date, raw, sc.loc); err == nil {
		return at, nil
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, httperr.Validation("invalid_clock_time", "clockTime must be HH:MM or an RFC 3339 timestamp")
	}
	if !timezone.SameDay(at, date, sc.loc) {
		return time.Time{}, httperr.Validation("invalid_clock_time", "clockTime must fall on the work date")
	}
	return at, nil
}

// status derives the live status of one work date.
func status(
	ctx context.Context,
	repo domain.Repository,
	sc *staffContext,
	date time.Time,
	now time.Time,
) (*domain.WorkStatus, error) {

	day := timezone.FormatDate(date, sc.loc)

	sessions, err := repo.ListSessionsForDate(ctx, sc.staff.ID, day)
	if err != nil {
		return nil, err
	}

	bookings, err := repo.ListStaffBookingsForDate(ctx, sc.staff.ID, day)
	if err != nil {
		return nil, err
	}

	st := domain.DeriveStatus(domain.StatusInput{
		StaffID:  sc.staff.ID,
		WorkDate: date,
		Now:      now,
		Location: sc.loc,
		Shift:    sc.shift,
		Sessions: sessions,
		Assigned: bookings,
	})
	return &st, nil
}
