package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type CurrentStatus string

const (
	StatusOffShift  CurrentStatus = "OffShift"
	StatusOnBreak   CurrentStatus = "OnBreak"
	StatusInService CurrentStatus = "InService"
	StatusAvailable CurrentStatus = "Available"
)

// A staff member counts as serving a client from the booking start until
// this long after it, regardless of the service duration.
const inServiceWindow = 90 * time.Minute

type WorkStatus struct {
	StaffID               uint          `json:"staffId"`
	CurrentStatus         CurrentStatus `json:"currentStatus"`
	IsClockedIn           bool          `json:"isClockedIn"`
	WorkDate              string        `json:"workDate"`
	ClockInTime           *time.Time    `json:"clockInTime"`
	ClockOutTime          *time.Time    `json:"clockOutTime"`
	ScheduledMinutes      int           `json:"scheduledMinutes"`
	WorkedMinutes         int           `json:"workedMinutes"`
	BreakMinutes          int           `json:"breakMinutes"`
	UtilizationPercentage float64       `json:"utilizationPercentage"`
	StatusMessage         string        `json:"statusMessage"`
	NextBreakTime         *time.Time    `json:"nextBreakTime"`
	IsOnBreak             bool          `json:"isOnBreak"`
}

type StatusInput struct {
	StaffID  uint
	WorkDate time.Time
	Now      time.Time
	Location *time.Location
	Shift    Shift
	// Sessions of the work date ordered by clock-in time.
	Sessions []models.WorkSession
	// Bookings assigned to the staff member on the work date.
	Assigned []models.Booking
}

// DeriveStatus computes the live status. Only today has a live state;
// any other date reports OffShift with its historical minutes.
//
// Precedence: no open session, lunch window, booking in progress, available.
// The lunch check uses the shift template only; recorded breaks do not
// change the derived status.
func DeriveStatus(in StatusInput) WorkStatus {
	loc := in.Location
	today := timezone.SameDay(in.WorkDate, in.Now, loc)
	open := OpenSession(in.Sessions)

	st := WorkStatus{
		StaffID:          in.StaffID,
		WorkDate:         timezone.FormatDate(in.WorkDate, loc),
		ScheduledMinutes: in.Shift.ScheduledMinutes(),
		WorkedMinutes:    WorkedMinutes(in.Sessions, today, in.Now),
	}

	for _, s := range in.Sessions {
		st.BreakMinutes += s.BreakMinutes
	}

	if n := len(in.Sessions); n > 0 {
		latest := in.Sessions[n-1]
		st.ClockInTime = &latest.ClockInTime
		st.ClockOutTime = latest.ClockOutTime
	}

	if st.ScheduledMinutes > 0 {
		pct := float64(st.WorkedMinutes) / float64(st.ScheduledMinutes) * 100
		st.UtilizationPercentage = math.Round(pct*100) / 100
	}

	lunchStart, lunchEnd, hasLunch := in.Shift.Lunch(in.WorkDate, loc)
	if today && hasLunch && in.Now.Before(lunchStart) {
		st.NextBreakTime = &lunchStart
	}

	switch {
	case !today:
		st.CurrentStatus = StatusOffShift
		st.StatusMessage = fmt.Sprintf("Off shift. %s worked on %s", formatMinutes(st.WorkedMinutes), st.WorkDate)
	case open == nil:
		st.CurrentStatus = StatusOffShift
		if len(in.Sessions) > 0 {
			st.StatusMessage = "Clocked out"
		} else {
			st.StatusMessage = "Not clocked in"
		}
	case hasLunch && within(in.Now, lunchStart, lunchEnd):
		st.CurrentStatus = StatusOnBreak
		st.StatusMessage = "On lunch break until " + lunchEnd.Format(timezone.ClockLayout)
	case serving(in.Assigned, in.Now):
		st.CurrentStatus = StatusInService
		st.StatusMessage = "Serving a client"
	default:
		st.CurrentStatus = StatusAvailable
		st.StatusMessage = "Available for clients"
	}

	if today && open != nil {
		st.IsClockedIn = true
		st.ClockInTime = &open.ClockInTime
		st.ClockOutTime = nil
	}
	st.IsOnBreak = st.CurrentStatus == StatusOnBreak

	return st
}

func serving(bookings []models.Booking, now time.Time) bool {
	for _, b := range bookings {
		switch scheduling.BookingStatus(b.Status) {
		case scheduling.BookingConfirmed, scheduling.BookingInProgress:
			if within(now, b.StartTime, b.StartTime.Add(inServiceWindow)) {
				return true
			}
		}
	}
	return false
}

// within is inclusive on both ends.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
