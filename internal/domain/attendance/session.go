package attendance

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbsent    SessionStatus = "absent"
)

// Clock actions are accepted for work dates in [today-30d, today+1d].
const (
	maxPastDays   = 30
	maxFutureDays = 1
)

func ValidateWorkDate(workDate, now time.Time, loc *time.Location) error {
	d := timezone.DaysBetween(now, workDate, loc)
	if d < -maxPastDays || d > maxFutureDays {
		return httperr.Validation("work_date_out_of_range", "work date must be within the last 30 days or tomorrow")
	}
	return nil
}

func IsOpen(s *models.WorkSession) bool {
	return SessionStatus(s.Status) == SessionActive && s.ClockOutTime == nil
}

type ClockIn struct {
	StaffID   uint
	WorkDate  string
	At        time.Time
	Shift     Shift
	Latitude  *float64
	Longitude *float64
	Notes     string
}

// NewSession builds the active session for a clock-in. When both the
// salon and the caller supplied coordinates, the distance classification
// is recorded on the session.
func NewSession(in ClockIn, salon *models.Salon) *models.WorkSession {
	s := &models.WorkSession{
		StaffID:          in.StaffID,
		WorkDate:         in.WorkDate,
		ClockInTime:      in.At,
		ScheduledMinutes: in.Shift.ScheduledMinutes(),
		Status:           string(SessionActive),
		ClockInLatitude:  in.Latitude,
		ClockInLongitude: in.Longitude,
		Notes:            in.Notes,
	}

	if salon != nil && salon.HasCoordinates() && in.Latitude != nil && in.Longitude != nil {
		km := HaversineKm(*salon.Latitude, *salon.Longitude, *in.Latitude, *in.Longitude)
		s.ClockInLocation = ClassifyLocation(km)
	}

	return s
}

// Close moves an active session to completed.
func Close(s *models.WorkSession, at time.Time, lat, lon *float64) error {
	if !IsOpen(s) {
		return httperr.Conflict("session_not_active", "work session is already closed")
	}
	if at.Before(s.ClockInTime) {
		return httperr.Validation("clock_out_before_clock_in", "clock-out time can not precede clock-in time")
	}

	s.ClockOutTime = &at
	s.ActualMinutes = int(at.Sub(s.ClockInTime).Minutes())
	s.Status = string(SessionCompleted)
	s.ClockOutLatitude = lat
	s.ClockOutLongitude = lon
	return nil
}

// WorkedMinutes sums completed sessions and, for today only, the running
// time of the open session. An open session on a past date is stale and
// contributes nothing.
func WorkedMinutes(sessions []models.WorkSession, today bool, now time.Time) int {
	total := 0
	for i := range sessions {
		s := &sessions[i]
		switch {
		case SessionStatus(s.Status) == SessionCompleted:
			total += s.ActualMinutes
		case today && IsOpen(s) && now.After(s.ClockInTime):
			total += int(now.Sub(s.ClockInTime).Minutes())
		}
	}
	return total
}

func OpenSession(sessions []models.WorkSession) *models.WorkSession {
	for i := len(sessions) - 1; i >= 0; i-- {
		if IsOpen(&sessions[i]) {
			return &sessions[i]
		}
	}
	return nil
}
