package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	"github.com/BruksfildServices01/salon-scheduler/internal/db/dbtest"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// 2026-05-20 is a Wednesday.
const bookingDay = "2026-05-20"

var now = clock.Fixed(time.Date(2026, 5, 13, 8, 0, 0, 0, time.UTC))

type fixture struct {
	db      *gorm.DB
	repo    *repository.SchedulingGormRepository
	salon   models.Salon
	service models.Service
}

func setup(t *testing.T, capacity int) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{db: db, repo: repository.NewSchedulingGormRepository(db)}

	f.salon = models.Salon{Name: "Studio", Slug: "studio", Timezone: "UTC"}
	require.NoError(t, db.Create(&f.salon).Error)

	f.service = models.Service{SalonID: f.salon.ID, Name: "Cut", DurationMin: 60, Price: 80, Active: true}
	require.NoError(t, db.Create(&f.service).Error)

	require.NoError(t, f.repo.ReplaceWindows(context.Background(), f.service.ID, []models.AvailabilityWindow{{
		DayOfWeek:           3,
		StartTime:           "09:00",
		EndTime:             "12:00",
		IsAvailable:         true,
		MaxBookingsPerSlot:  capacity,
		SlotDurationMinutes: 60,
	}}))

	return f
}

func starts(slots []domain.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime.Format("15:04"))
	}
	return out
}

func (f *fixture) availability(t *testing.T) []domain.Slot {
	t.Helper()
	slots, err := NewGetAvailability(f.repo, nil, now).Execute(context.Background(), GetAvailabilityInput{
		ServiceID: f.service.ID,
		Date:      bookingDay,
	})
	require.NoError(t, err)
	return slots
}

func (f *fixture) book(hm string) (*models.Booking, error) {
	return NewCreateBooking(f.repo, nil, nil, now).Execute(context.Background(), CreateBookingInput{
		SalonID:   f.salon.ID,
		ClientID:  42,
		ServiceID: f.service.ID,
		Date:      bookingDay,
		Time:      hm,
	})
}

// ==== AVAILABILITY ====

func TestAvailabilityReflectsBookings(t *testing.T) {
	f := setup(t, 1)

	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, starts(f.availability(t)))

	b, err := f.book("10:00")
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingPending), b.Status)
	assert.Equal(t, 80.0, b.TotalAmount)

	assert.Equal(t, []string{"09:00", "11:00"}, starts(f.availability(t)))
}

func TestAvailabilityErrors(t *testing.T) {
	f := setup(t, 1)
	uc := NewGetAvailability(f.repo, nil, now)
	ctx := context.Background()

	_, err := uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: "20-05-2026"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(ctx, GetAvailabilityInput{ServiceID: 999, Date: bookingDay})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))

	require.NoError(t, f.db.Model(&f.service).Update("active", false).Error)
	_, err = uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: bookingDay})
	kind, ok := httperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, httperr.KindNotFound, kind)
}

func TestAvailabilityNoWindowIsEmpty(t *testing.T) {
	f := setup(t, 1)

	slots, err := NewGetAvailability(f.repo, nil, now).Execute(context.Background(), GetAvailabilityInput{
		ServiceID: f.service.ID,
		Date:      "2026-05-21",
	})
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestAvailabilityStaffMustBeSpecialized(t *testing.T) {
	f := setup(t, 2)
	require.NoError(t, f.db.Model(&f.service).Update("requires_staff", true).Error)

	specialist := models.Staff{SalonID: f.salon.ID, UserID: 1, ShiftStart: "09:00", ShiftEnd: "18:00", Active: true, Services: []models.Service{f.service}}
	outsider := models.Staff{SalonID: f.salon.ID, UserID: 2, ShiftStart: "09:00", ShiftEnd: "18:00", Active: true}
	require.NoError(t, f.db.Create(&specialist).Error)
	require.NoError(t, f.db.Create(&outsider).Error)

	uc := NewGetAvailability(f.repo, nil, now)
	ctx := context.Background()

	_, err := uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: bookingDay, StaffID: &outsider.ID})
	assert.True(t, httperr.IsBusiness(err, "staff_not_specialized"))

	_, err = f.book("09:00")
	assert.True(t, httperr.IsBusiness(err, "staff_required"))

	_, err = NewCreateBooking(f.repo, nil, nil, now).Execute(ctx, CreateBookingInput{
		SalonID: f.salon.ID, ClientID: 42, ServiceID: f.service.ID,
		StaffID: &specialist.ID, Date: bookingDay, Time: "09:00",
	})
	require.NoError(t, err)

	// Only the specialist's own bookings count against their slots.
	slots, err := uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: bookingDay, StaffID: &specialist.ID})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00", slots[0].StartTime.Format("15:04"))
	assert.Equal(t, 1, slots[0].AvailableSpots)
}

// ==== BOOKING ====

func TestCreateBookingRespectsCapacity(t *testing.T) {
	f := setup(t, 2)

	_, err := f.book("09:00")
	require.NoError(t, err)
	_, err = f.book("09:00")
	require.NoError(t, err)

	_, err = f.book("09:00")
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	kind, _ := httperr.KindOf(err)
	assert.Equal(t, httperr.KindConflict, kind)
}

func TestCreateBookingValidation(t *testing.T) {
	f := setup(t, 1)

	_, err := f.book("09:30")
	assert.True(t, httperr.IsBusiness(err, "outside_availability"))

	_, err = f.book("11:30")
	assert.True(t, httperr.IsBusiness(err, "outside_availability"))

	_, err = f.book("9h")
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))

	_, err = NewCreateBooking(f.repo, nil, nil, now).Execute(context.Background(), CreateBookingInput{
		SalonID: f.salon.ID, ClientID: 42, ServiceID: f.service.ID, Date: "2026-05-06", Time: "09:00",
	})
	assert.True(t, httperr.IsBusiness(err, "booking_in_past"))

	_, err = NewCreateBooking(f.repo, nil, nil, now).Execute(context.Background(), CreateBookingInput{
		SalonID: f.salon.ID + 1, ClientID: 42, ServiceID: f.service.ID, Date: bookingDay, Time: "09:00",
	})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

func TestCancelFreesSlot(t *testing.T) {
	f := setup(t, 1)

	b, err := f.book("11:00")
	require.NoError(t, err)
	assert.NotContains(t, starts(f.availability(t)), "11:00")

	uc := NewUpdateBookingStatus(f.repo, nil, nil, now)
	ctx := context.Background()

	_, err = uc.Execute(ctx, UpdateBookingStatusInput{SalonID: f.salon.ID, BookingID: b.ID, Action: ActionComplete})
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	cancelled, err := uc.Execute(ctx, UpdateBookingStatusInput{SalonID: f.salon.ID, BookingID: b.ID, Action: ActionCancel})
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	assert.Contains(t, starts(f.availability(t)), "11:00")

	_, err = uc.Execute(ctx, UpdateBookingStatusInput{SalonID: f.salon.ID + 1, BookingID: b.ID, Action: ActionCancel})
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

// ==== CACHE ====

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, serviceID uint, date string, staffID *uint) ([]domain.Slot, string, bool) {
	args := m.Called(ctx, serviceID, date, staffID)
	slots, _ := args.Get(0).([]domain.Slot)
	return slots, args.String(1), args.Bool(2)
}

func (m *mockCache) Set(ctx context.Context, key string, slots []domain.Slot) {
	m.Called(ctx, key, slots)
}

func (m *mockCache) Invalidate(ctx context.Context, serviceID uint) {
	m.Called(ctx, serviceID)
}

func TestAvailabilityUsesCacheForFutureDates(t *testing.T) {
	f := setup(t, 1)
	cache := new(mockCache)
	ctx := context.Background()

	// The fill goes to the key returned by the miss.
	cache.On("Get", mock.Anything, f.service.ID, bookingDay, mock.Anything).Return(nil, "slots:v0", false).Once()
	cache.On("Set", mock.Anything, "slots:v0", mock.Anything).Once()

	uc := NewGetAvailability(f.repo, cache, now)
	slots, err := uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: bookingDay})
	require.NoError(t, err)
	assert.Len(t, slots, 3)

	cached := slots[:1]
	cache.On("Get", mock.Anything, f.service.ID, bookingDay, mock.Anything).Return(cached, "slots:v0", true).Once()

	slots, err = uc.Execute(ctx, GetAvailabilityInput{ServiceID: f.service.ID, Date: bookingDay})
	require.NoError(t, err)
	assert.Equal(t, cached, slots)

	cache.On("Invalidate", mock.Anything, f.service.ID).Once()
	_, err = NewCreateBooking(f.repo, cache, nil, now).Execute(ctx, CreateBookingInput{
		SalonID: f.salon.ID, ClientID: 42, ServiceID: f.service.ID, Date: bookingDay, Time: "10:00",
	})
	require.NoError(t, err)

	cache.AssertExpectations(t)
}

func TestAvailabilitySkipsCacheForToday(t *testing.T) {
	f := setup(t, 1)
	cache := new(mockCache)

	today := clock.Fixed(time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC))
	slots, err := NewGetAvailability(f.repo, cache, today).Execute(context.Background(), GetAvailabilityInput{
		ServiceID: f.service.ID,
		Date:      bookingDay,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"10:00", "11:00"}, starts(slots))
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ==== WINDOWS ====

func TestReplaceWindows(t *testing.T) {
	f := setup(t, 1)
	ctx := context.Background()
	uc := NewReplaceWindows(f.repo, nil, nil)

	closed := false
	windows, err := uc.Execute(ctx, ReplaceWindowsInput{
		SalonID:   f.salon.ID,
		ServiceID: f.service.ID,
		Windows: []WindowInput{
			{DayOfWeek: 3, StartTime: "13:00", EndTime: "17:00"},
			{DayOfWeek: 4, StartTime: "09:00", EndTime: "12:00", IsAvailable: &closed},
		},
	})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, 1, windows[0].MaxBookingsPerSlot)
	assert.Equal(t, 60, windows[0].SlotDurationMinutes)

	stored, err := NewListWindows(f.repo).Execute(ctx, f.salon.ID, f.service.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.False(t, stored[1].IsAvailable)

	assert.Equal(t, []string{"13:00", "14:00", "15:00", "16:00"}, starts(f.availability(t)))

	_, err = uc.Execute(ctx, ReplaceWindowsInput{
		SalonID:   f.salon.ID,
		ServiceID: f.service.ID,
		Windows: []WindowInput{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 1, StartTime: "11:00", EndTime: "14:00"},
		},
	})
	assert.True(t, httperr.IsBusiness(err, "overlapping_windows"))

	_, err = uc.Execute(ctx, ReplaceWindowsInput{
		SalonID:   f.salon.ID,
		ServiceID: f.service.ID,
		Windows:   []WindowInput{{DayOfWeek: 7, StartTime: "09:00", EndTime: "12:00"}},
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_day_of_week"))
}
