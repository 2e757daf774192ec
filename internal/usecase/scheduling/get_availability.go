package scheduling

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/clock"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type GetAvailabilityInput struct {
	ServiceID uint
	Date      string
	StaffID   *uint
}

type GetAvailability struct {
	repo  domain.Repository
	cache domain.SlotCache
	clock clock.Clock
}

func NewGetAvailability(
	repo domain.Repository,
	cache domain.SlotCache,
	clk clock.Clock,
) *GetAvailability {
	return &GetAvailability{
		repo:  repo,
		cache: cache,
		clock: clk,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in GetAvailabilityInput,
) ([]domain.Slot, error) {

	svc, err := loadActiveService(ctx, uc.repo, in.ServiceID)
	if err != nil {
		return nil, err
	}

	salon, err := uc.repo.GetSalon(ctx, svc.SalonID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(salon.Timezone)

	date, err := timezone.ParseDate(in.Date, loc)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "date must be YYYY-MM-DD")
	}

	staffID, err := checkStaff(ctx, uc.repo, svc, in.StaffID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	// Today's slots depend on the current time, so only later days are cached.
	// The key is pinned before bookings are read.
	var cacheKey string
	if uc.cache != nil && timezone.DaysBetween(now, date, loc) > 0 {
		slots, key, ok := uc.cache.Get(ctx, svc.ID, in.Date, staffID)
		if ok {
			metrics.IncSlotQuery("hit")
			return slots, nil
		}
		cacheKey = key
	}
	metrics.IncSlotQuery("miss")

	started := time.Now()

	windows, err := uc.repo.ListWindowsForDay(ctx, svc.ID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}

	bookings, err := uc.repo.ListBookingsForDate(ctx, svc.ID, staffID, in.Date)
	if err != nil {
		return nil, err
	}

	slots, err := domain.GenerateDaySlots(
		windows,
		svc.DurationMin,
		domain.OccupyingIntervals(bookings),
		date,
		now,
	)
	if err != nil {
		return nil, err
	}

	metrics.ObserveSlotGeneration(time.Since(started).Seconds())

	if cacheKey != "" {
		uc.cache.Set(ctx, cacheKey, slots)
	}

	return slots, nil
}
