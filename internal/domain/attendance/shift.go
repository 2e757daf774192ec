package attendance

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Shift is a staff shift template in minutes since midnight.
type Shift struct {
	Start      int
	End        int
	LunchStart int
	LunchEnd   int
	HasLunch   bool
}

// ParseShift validates the template:
// start <= lunchStart < lunchEnd <= end, start < end.
func ParseShift(shiftStart, shiftEnd, lunchStart, lunchEnd string) (Shift, error) {
	var s Shift
	var err error

	if s.Start, err = timezone.ParseClock(shiftStart); err != nil {
		return Shift{}, httperr.Validation("invalid_shift", err.Error())
	}
	if s.End, err = timezone.ParseClock(shiftEnd); err != nil {
		return Shift{}, httperr.Validation("invalid_shift", err.Error())
	}
	if s.Start >= s.End {
		return Shift{}, httperr.Validation("invalid_shift", "shift start must precede shift end")
	}

	if lunchStart == "" && lunchEnd == "" {
		return s, nil
	}
	if lunchStart == "" || lunchEnd == "" {
		return Shift{}, httperr.Validation("invalid_lunch_break", "lunch break needs both start and end")
	}

	if s.LunchStart, err = timezone.ParseClock(lunchStart); err != nil {
		return Shift{}, httperr.Validation("invalid_lunch_break", err.Error())
	}
	if s.LunchEnd, err = timezone.ParseClock(lunchEnd); err != nil {
		return Shift{}, httperr.Validation("invalid_lunch_break", err.Error())
	}
	if s.LunchStart >= s.LunchEnd {
		return Shift{}, httperr.Validation("invalid_lunch_break", "lunch break start must precede its end")
	}
	if s.LunchStart < s.Start || s.LunchEnd > s.End {
		return Shift{}, httperr.Validation("invalid_lunch_break", "lunch break must fall inside the shift")
	}

	s.HasLunch = true
	return s, nil
}

func ShiftOf(staff *models.Staff) (Shift, error) {
	return ParseShift(staff.ShiftStart, staff.ShiftEnd, staff.LunchBreakStart, staff.LunchBreakEnd)
}

func (s Shift) ScheduledMinutes() int {
	return s.End - s.Start
}

// Lunch returns the lunch window on date's calendar day in loc.
func (s Shift) Lunch(date time.Time, loc *time.Location) (start, end time.Time, ok bool) {
	if !s.HasLunch {
		return time.Time{}, time.Time{}, false
	}
	day := timezone.StartOfDay(date, loc)
	return day.Add(time.Duration(s.LunchStart) * time.Minute), day.Add(time.Duration(s.LunchEnd) * time.Minute), true
}
