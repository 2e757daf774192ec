package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/attendance"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

var day = time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func seedService(t *testing.T, db *gorm.DB) *models.Service {
	t.Helper()

	salon := models.Salon{Name: "Studio", Slug: "studio", Timezone: "UTC"}
	require.NoError(t, db.Create(&salon).Error)

	svc := models.Service{SalonID: salon.ID, Name: "Cut", DurationMin: 60, Price: 80, Active: true}
	require.NoError(t, db.Create(&svc).Error)
	return &svc
}

func booking(svc *models.Service, start time.Time, status scheduling.BookingStatus) *models.Booking {
	return &models.Booking{
		SalonID:     svc.SalonID,
		ServiceID:   svc.ID,
		ClientID:    1,
		BookingDate: start.Format("2006-01-02"),
		StartTime:   start,
		EndTime:     start.Add(time.Duration(svc.DurationMin) * time.Minute),
		DurationMin: svc.DurationMin,
		Status:      string(status),
	}
}

// ==== SCHEDULING ====

func TestCreateBookingWithinCapacity(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSchedulingGormRepository(db)
	ctx := context.Background()
	svc := seedService(t, db)

	cancelled := booking(svc, at(10, 0), scheduling.BookingCancelled)
	require.NoError(t, db.Create(cancelled).Error)

	require.NoError(t, repo.CreateBookingWithinCapacity(ctx, booking(svc, at(10, 0), scheduling.BookingPending), 2, 0))
	require.NoError(t, repo.CreateBookingWithinCapacity(ctx, booking(svc, at(10, 30), scheduling.BookingPending), 2, 0))

	err := repo.CreateBookingWithinCapacity(ctx, booking(svc, at(10, 0), scheduling.BookingPending), 2, 0)
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	// Adjacent slot is free under half-open overlap.
	require.NoError(t, repo.CreateBookingWithinCapacity(ctx, booking(svc, at(11, 0), scheduling.BookingPending), 1, 0))

	// But not once a cleanup buffer follows the 10:30 booking.
	err = repo.CreateBookingWithinCapacity(ctx, booking(svc, at(12, 0), scheduling.BookingPending), 1, 15*time.Minute)
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	bookings, err := repo.ListBookingsForDate(ctx, svc.ID, nil, "2026-05-20")
	require.NoError(t, err)
	assert.Len(t, bookings, 3)
}

func TestCreateBookingCapacityIsPerStaff(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSchedulingGormRepository(db)
	ctx := context.Background()
	svc := seedService(t, db)

	ana, bia := uint(1), uint(2)

	first := booking(svc, at(9, 0), scheduling.BookingConfirmed)
	first.StaffID = &ana
	require.NoError(t, repo.CreateBookingWithinCapacity(ctx, first, 1, 0))

	second := booking(svc, at(9, 0), scheduling.BookingConfirmed)
	second.StaffID = &bia
	require.NoError(t, repo.CreateBookingWithinCapacity(ctx, second, 1, 0))

	third := booking(svc, at(9, 0), scheduling.BookingConfirmed)
	third.StaffID = &ana
	assert.Error(t, repo.CreateBookingWithinCapacity(ctx, third, 1, 0))

	mine, err := repo.ListBookingsForDate(ctx, svc.ID, &ana, "2026-05-20")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestReplaceWindows(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSchedulingGormRepository(db)
	ctx := context.Background()
	svc := seedService(t, db)

	first := []models.AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true, MaxBookingsPerSlot: 1, SlotDurationMinutes: 30},
		{DayOfWeek: 1, StartTime: "14:00", EndTime: "18:00", IsAvailable: true, MaxBookingsPerSlot: 1, SlotDurationMinutes: 30},
	}
	require.NoError(t, repo.ReplaceWindows(ctx, svc.ID, first))

	monday, err := repo.ListWindowsForDay(ctx, svc.ID, 1)
	require.NoError(t, err)
	require.Len(t, monday, 2)
	assert.Equal(t, "09:00", monday[0].StartTime)

	second := []models.AvailabilityWindow{
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "16:00", IsAvailable: true, MaxBookingsPerSlot: 2, SlotDurationMinutes: 60},
	}
	require.NoError(t, repo.ReplaceWindows(ctx, svc.ID, second))

	all, err := repo.ListWindows(ctx, svc.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].DayOfWeek)
	assert.Equal(t, svc.ID, all[0].ServiceID)
}

func TestIsStaffSpecialized(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSchedulingGormRepository(db)
	ctx := context.Background()
	svc := seedService(t, db)

	other := models.Service{SalonID: svc.SalonID, Name: "Color", DurationMin: 90, Active: true}
	require.NoError(t, db.Create(&other).Error)

	staff := models.Staff{
		SalonID:    svc.SalonID,
		UserID:     10,
		ShiftStart: "09:00",
		ShiftEnd:   "18:00",
		Active:     true,
		Services:   []models.Service{*svc},
	}
	require.NoError(t, db.Create(&staff).Error)

	ok, err := repo.IsStaffSpecialized(ctx, staff.ID, svc.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsStaffSpecialized(ctx, staff.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ==== WORK SESSIONS ====

func activeSession(staffID uint, clockIn time.Time) *models.WorkSession {
	return &models.WorkSession{
		StaffID:          staffID,
		WorkDate:         clockIn.Format("2006-01-02"),
		ClockInTime:      clockIn,
		ScheduledMinutes: 540,
		Status:           string(attendance.SessionActive),
	}
}

func TestActiveSessionIndexRejectsRawDuplicate(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.Create(activeSession(1, at(9, 0))).Error)

	err := db.Create(activeSession(1, at(9, 5))).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	// Other staff members and other dates are unaffected.
	require.NoError(t, db.Create(activeSession(2, at(9, 0))).Error)
	require.NoError(t, db.Create(activeSession(1, at(9, 0).AddDate(0, 0, 1))).Error)
}

func TestSessionLifecycle(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWorkSessionGormRepository(db)
	ctx := context.Background()

	s := activeSession(1, at(9, 0))
	require.NoError(t, repo.CreateSession(ctx, s))

	err := repo.CreateSession(ctx, activeSession(1, at(9, 10)))
	assert.True(t, httperr.IsBusiness(err, "already_clocked_in"))

	found, err := repo.FindActiveSession(ctx, 1, "2026-05-20")
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)

	require.NoError(t, attendance.Close(found, at(13, 30), nil, nil))
	require.NoError(t, repo.CloseSession(ctx, found, nil))

	// A second close of the same row loses the race.
	err = repo.CloseSession(ctx, found, nil)
	assert.True(t, httperr.IsBusiness(err, "session_not_active"))

	_, err = repo.FindActiveSession(ctx, 1, "2026-05-20")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Clocking in again the same day is allowed once the first cycle closed.
	require.NoError(t, repo.CreateSession(ctx, activeSession(1, at(14, 0))))

	sessions, err := repo.ListSessionsForDate(ctx, 1, "2026-05-20")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 270, sessions[0].ActualMinutes)
	assert.Equal(t, string(attendance.SessionCompleted), sessions[0].Status)
}

func TestBreaks(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWorkSessionGormRepository(db)
	ctx := context.Background()

	s := activeSession(1, at(9, 0))
	require.NoError(t, repo.CreateSession(ctx, s))

	_, err := repo.FindOpenBreak(ctx, s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	br := &models.WorkBreak{SessionID: s.ID, StartedAt: at(10, 0)}
	require.NoError(t, repo.CreateBreak(ctx, br))

	open, err := repo.FindOpenBreak(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, br.ID, open.ID)

	require.NoError(t, repo.CloseBreak(ctx, open, at(10, 15)))
	err = repo.CloseBreak(ctx, open, at(10, 20))
	assert.True(t, httperr.IsBusiness(err, "break_not_open"))

	require.NoError(t, repo.AddBreakMinutes(ctx, s.ID, 15))
	require.NoError(t, repo.AddBreakMinutes(ctx, s.ID, 5))

	sessions, err := repo.ListSessionsForDate(ctx, 1, "2026-05-20")
	require.NoError(t, err)
	assert.Equal(t, 20, sessions[0].BreakMinutes)
}

func TestCloseSessionEndsOpenBreak(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWorkSessionGormRepository(db)
	ctx := context.Background()

	s := activeSession(1, at(9, 0))
	require.NoError(t, repo.CreateSession(ctx, s))
	br := &models.WorkBreak{SessionID: s.ID, StartedAt: at(12, 0)}
	require.NoError(t, repo.CreateBreak(ctx, br))

	ended := at(12, 45)
	br.EndedAt = &ended
	require.NoError(t, attendance.Close(s, at(12, 45), nil, nil))
	require.NoError(t, repo.CloseSession(ctx, s, br))
	assert.Equal(t, 45, s.BreakMinutes)

	_, err := repo.FindOpenBreak(ctx, s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	sessions, err := repo.ListSessionsForDate(ctx, 1, "2026-05-20")
	require.NoError(t, err)
	assert.Equal(t, 45, sessions[0].BreakMinutes)
	assert.Equal(t, string(attendance.SessionCompleted), sessions[0].Status)
}

func TestCloseSessionRollsBackBreakWhenAlreadyClosed(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWorkSessionGormRepository(db)
	ctx := context.Background()

	s := activeSession(1, at(9, 0))
	require.NoError(t, repo.CreateSession(ctx, s))
	br := &models.WorkBreak{SessionID: s.ID, StartedAt: at(12, 0)}
	require.NoError(t, repo.CreateBreak(ctx, br))

	// Another request closed the session first.
	require.NoError(t, db.Model(&models.WorkSession{}).
		Where("id = ?", s.ID).
		Update("status", string(attendance.SessionCompleted)).Error)

	ended := at(12, 30)
	br.EndedAt = &ended
	require.NoError(t, attendance.Close(s, at(12, 30), nil, nil))
	err := repo.CloseSession(ctx, s, br)
	assert.True(t, httperr.IsBusiness(err, "session_not_active"))

	open, err := repo.FindOpenBreak(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, br.ID, open.ID)
	assert.Nil(t, open.EndedAt)

	sessions, err := repo.ListSessionsForDate(ctx, 1, "2026-05-20")
	require.NoError(t, err)
	assert.Equal(t, 0, sessions[0].BreakMinutes)
}

func TestListSessionsInRangePaging(t *testing.T) {
	db := dbtest.New(t)
	repo := NewWorkSessionGormRepository(db)
	ctx := context.Background()

	for i := range 5 {
		s := activeSession(1, at(9, 0).AddDate(0, 0, -i))
		s.Status = string(attendance.SessionCompleted)
		require.NoError(t, db.Create(s).Error)
	}
	require.NoError(t, db.Create(activeSession(2, at(9, 0))).Error)

	page, total, err := repo.ListSessionsInRange(ctx, 1, "2026-05-17", "2026-05-20", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 3)
	assert.Equal(t, "2026-05-20", page[0].WorkDate)

	rest, _, err := repo.ListSessionsInRange(ctx, 1, "2026-05-17", "2026-05-20", 2, 3)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "2026-05-17", rest[0].WorkDate)

	all, err := repo.ListAllSessionsInRange(ctx, 1, "2026-05-16", "2026-05-20")
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "2026-05-16", all[0].WorkDate)
}
