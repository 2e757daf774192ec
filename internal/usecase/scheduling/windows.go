package scheduling

import (
	"context"
	"slices"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type WindowInput struct {
	DayOfWeek           int    `json:"dayOfWeek"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	IsAvailable         *bool  `json:"isAvailable"`
	MaxBookingsPerSlot  int    `json:"maxBookingsPerSlot"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
	BufferTimeMinutes   int    `json:"bufferTimeMinutes"`
}

type ReplaceWindowsInput struct {
	SalonID   uint
	UserID    uint
	ServiceID uint
	Windows   []WindowInput
}

// ==== LIST ====

type ListWindows struct {
	repo domain.Repository
}

func NewListWindows(repo domain.Repository) *ListWindows {
	return &ListWindows{repo: repo}
}

func (uc *ListWindows) Execute(
	ctx context.Context,
	salonID uint,
	serviceID uint,
) ([]models.AvailabilityWindow, error) {

	if _, err := ownedService(ctx, uc.repo, salonID, serviceID); err != nil {
		return nil, err
	}
	return uc.repo.ListWindows(ctx, serviceID)
}

// ==== REPLACE ====

type ReplaceWindows struct {
	repo  domain.Repository
	cache domain.SlotCache
	audit *audit.Dispatcher
}

func NewReplaceWindows(
	repo domain.Repository,
	cache domain.SlotCache,
	audit *audit.Dispatcher,
) *ReplaceWindows {
	return &ReplaceWindows{
		repo:  repo,
		cache: cache,
		audit: audit,
	}
}

func (uc *ReplaceWindows) Execute(
	ctx context.Context,
	in ReplaceWindowsInput,
) ([]models.AvailabilityWindow, error) {

	svc, err := ownedService(ctx, uc.repo, in.SalonID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	windows, err := buildWindows(svc, in.Windows)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.ReplaceWindows(ctx, svc.ID, windows); err != nil {
		return nil, err
	}

	invalidate(ctx, uc.cache, svc.ID)

	uc.audit.Dispatch(audit.Event{
		SalonID:  in.SalonID,
		UserID:   &in.UserID,
		Action:   "availability_replaced",
		Entity:   "service",
		EntityID: &svc.ID,
		Metadata: map[string]any{"windows": len(windows)},
	})

	return windows, nil
}

func ownedService(
	ctx context.Context,
	repo domain.Repository,
	salonID uint,
	serviceID uint,
) (*models.Service, error) {

	svc, err := loadActiveService(ctx, repo, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.SalonID != salonID {
		return nil, httperr.NotFoundErr("service_not_found", "service not found")
	}
	return svc, nil
}

// buildWindows validates every rule and rejects overlapping windows on the
// same weekday.
func buildWindows(svc *models.Service, in []WindowInput) ([]models.AvailabilityWindow, error) {
	type span struct{ day, start, end int }

	out := make([]models.AvailabilityWindow, 0, len(in))
	spans := make([]span, 0, len(in))

	for _, w := range in {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return nil, httperr.Validation("invalid_day_of_week", "dayOfWeek must be between 0 and 6")
		}

		start, err := timezone.ParseClock(w.StartTime)
		if err != nil {
			return nil, httperr.Validation("invalid_availability_window", err.Error())
		}
		end, err := timezone.ParseClock(w.EndTime)
		if err != nil {
			return nil, httperr.Validation("invalid_availability_window", err.Error())
		}
		if start >= end {
			return nil, httperr.Validation("invalid_availability_window", "window start must precede its end")
		}

		if w.MaxBookingsPerSlot == 0 {
			w.MaxBookingsPerSlot = 1
		}
		if w.SlotDurationMinutes == 0 {
			w.SlotDurationMinutes = svc.DurationMin
		}
		if w.MaxBookingsPerSlot < 1 || w.SlotDurationMinutes < 1 || w.BufferTimeMinutes < 0 {
			return nil, httperr.Validation("invalid_availability_window", "capacity and slot duration must be positive, buffer must not be negative")
		}

		spans = append(spans, span{w.DayOfWeek, start, end})

		available := true
		if w.IsAvailable != nil {
			available = *w.IsAvailable
		}

		out = append(out, models.AvailabilityWindow{
			ServiceID:           svc.ID,
			DayOfWeek:           w.DayOfWeek,
			StartTime:           w.StartTime,
			EndTime:             w.EndTime,
			IsAvailable:         available,
			MaxBookingsPerSlot:  w.MaxBookingsPerSlot,
			SlotDurationMinutes: w.SlotDurationMinutes,
			BufferTimeMinutes:   w.BufferTimeMinutes,
		})
	}

	slices.SortFunc(spans, func(a, b span) int {
		if a.day != b.day {
			return a.day - b.day
		}
		return a.start - b.start
	})
	for i := 1; i < len(spans); i++ {
		if spans[i].day == spans[i-1].day && spans[i].start < spans[i-1].end {
			return nil, httperr.Validation("overlapping_windows", "availability windows of the same day must not overlap")
		}
	}

	return out, nil
}
