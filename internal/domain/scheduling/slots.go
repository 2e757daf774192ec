package scheduling

import (
	"iter"
	"slices"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type Slot struct {
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	AvailableSpots int       `json:"availableSpots"`
}

// SlotInput holds everything slot generation depends on. Date carries the
// salon location; any instant on the requested day works.
type SlotInput struct {
	Window                 models.AvailabilityWindow
	ServiceDurationMinutes int
	MaxConcurrentBookings  int
	Bookings               []Interval
	Date                   time.Time
	Now                    time.Time
}

// grid is a parsed window ready to be walked.
type grid struct {
	open     time.Time
	close    time.Time
	first    time.Time
	step     time.Duration
	duration time.Duration
	buffer   time.Duration
	capacity int
}

func newGrid(in SlotInput) (grid, bool, error) {
	w := in.Window

	if in.ServiceDurationMinutes <= 0 {
		return grid{}, false, httperr.Validation("invalid_service_duration", "service duration must be positive")
	}
	if !w.IsAvailable {
		return grid{}, false, nil
	}

	loc := in.Date.Location()

	open, err := timezone.At(in.Date, w.StartTime, loc)
	if err != nil {
		return grid{}, false, httperr.Validation("invalid_availability_window", err.Error())
	}
	closeAt, err := timezone.At(in.Date, w.EndTime, loc)
	if err != nil {
		return grid{}, false, httperr.Validation("invalid_availability_window", err.Error())
	}
	if !open.Before(closeAt) {
		return grid{}, false, httperr.Validation("invalid_availability_window", "window start must precede its end")
	}

	// Nothing is bookable on a day that is already over.
	if timezone.DaysBetween(in.Now, in.Date, loc) < 0 {
		return grid{}, false, nil
	}

	stepMin := w.SlotDurationMinutes
	if stepMin <= 0 {
		stepMin = in.ServiceDurationMinutes
	}

	capacity := in.MaxConcurrentBookings
	if capacity < 1 {
		capacity = 1
	}

	g := grid{
		open:     open,
		close:    closeAt,
		first:    open,
		step:     time.Duration(stepMin) * time.Minute,
		duration: time.Duration(in.ServiceDurationMinutes) * time.Minute,
		buffer:   time.Duration(max(w.BufferTimeMinutes, 0)) * time.Minute,
		capacity: capacity,
	}

	// Today: move to the first grid boundary strictly after now.
	if timezone.SameDay(in.Date, in.Now, loc) && g.first.Before(in.Now) {
		elapsed := in.Now.Sub(g.open)
		g.first = g.open.Add((elapsed/g.step + 1) * g.step)
	}

	return g, true, nil
}

// Slots returns a finite, restartable sequence of bookable slots in
// chronological order. Each range over the sequence walks the grid again.
func Slots(in SlotInput) (iter.Seq[Slot], error) {
	g, ok, err := newGrid(in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return func(func(Slot) bool) {}, nil
	}

	busy := slices.Clone(in.Bookings)

	return func(yield func(Slot) bool) {
		for start := g.first; !start.Add(g.duration).After(g.close); start = start.Add(g.step) {
			candidate := Interval{Start: start, End: start.Add(g.duration)}

			spots := g.capacity - CountOverlapping(candidate, busy, g.buffer)
			if spots <= 0 {
				continue
			}

			if !yield(Slot{StartTime: candidate.Start, EndTime: candidate.End, AvailableSpots: spots}) {
				return
			}
		}
	}, nil
}

// GenerateSlots collects Slots for a single window.
func GenerateSlots(
	window models.AvailabilityWindow,
	serviceDurationMinutes int,
	maxConcurrentBookings int,
	existingBookings []Interval,
	date time.Time,
	now time.Time,
) ([]Slot, error) {
	seq, err := Slots(SlotInput{
		Window:                 window,
		ServiceDurationMinutes: serviceDurationMinutes,
		MaxConcurrentBookings:  maxConcurrentBookings,
		Bookings:               existingBookings,
		Date:                   date,
		Now:                    now,
	})
	if err != nil {
		return nil, err
	}

	out := slices.Collect(seq)
	if out == nil {
		out = []Slot{}
	}
	return out, nil
}

// GenerateDaySlots runs every window of the day and merges the results in
// chronological order.
func GenerateDaySlots(
	windows []models.AvailabilityWindow,
	serviceDurationMinutes int,
	existingBookings []Interval,
	date time.Time,
	now time.Time,
) ([]Slot, error) {
	out := []Slot{}

	for _, w := range windows {
		slots, err := GenerateSlots(w, serviceDurationMinutes, w.MaxBookingsPerSlot, existingBookings, date, now)
		if err != nil {
			return nil, err
		}
		out = append(out, slots...)
	}

	slices.SortStableFunc(out, func(a, b Slot) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out, nil
}

// FitWindow finds the window in which a booking of the given duration
// starting at start sits on the slot grid. It returns false when the start
// is off-grid or the booking would overrun every window.
func FitWindow(
	windows []models.AvailabilityWindow,
	serviceDurationMinutes int,
	start time.Time,
) (models.AvailabilityWindow, bool) {
	loc := start.Location()
	end := start.Add(time.Duration(serviceDurationMinutes) * time.Minute)

	for _, w := range windows {
		if !w.IsAvailable {
			continue
		}

		open, err := timezone.At(start, w.StartTime, loc)
		if err != nil {
			continue
		}
		closeAt, err := timezone.At(start, w.EndTime, loc)
		if err != nil {
			continue
		}
		if start.Before(open) || end.After(closeAt) {
			continue
		}

		stepMin := w.SlotDurationMinutes
		if stepMin <= 0 {
			stepMin = serviceDurationMinutes
		}
		if start.Sub(open)%(time.Duration(stepMin)*time.Minute) != 0 {
			continue
		}

		return w, true
	}

	return models.AvailabilityWindow{}, false
}
