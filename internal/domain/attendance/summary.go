package attendance

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

const (
	excellentAttendancePct = 95
	highUtilizationPct     = 90
	highServiceVolume      = 50
)

type Summary struct {
	FromDate              string   `json:"fromDate"`
	ToDate                string   `json:"toDate"`
	TotalDays             int      `json:"totalDays"`
	DaysWorked            int      `json:"daysWorked"`
	SessionsCount         int      `json:"sessionsCount"`
	AttendancePct         float64  `json:"attendancePct"`
	TotalScheduledMinutes int      `json:"totalScheduledMinutes"`
	TotalWorkedMinutes    int      `json:"totalWorkedMinutes"`
	AverageWorkDayMinutes float64  `json:"averageWorkDayMinutes"`
	TotalRevenue          float64  `json:"totalRevenue"`
	TotalCommission       float64  `json:"totalCommission"`
	TotalServices         int      `json:"totalServices"`
	AverageUtilizationPct float64  `json:"averageUtilizationPct"`
	Highlights            []string `json:"highlights"`
}

// Summarize rolls up the sessions of [from, to] (inclusive calendar days).
// A day counts as worked once however many clock cycles it has, and its
// scheduled minutes are counted once as well. Utilization is not capped.
func Summarize(sessions []models.WorkSession, from, to time.Time, loc *time.Location) Summary {
	sum := Summary{
		FromDate:   timezone.FormatDate(from, loc),
		ToDate:     timezone.FormatDate(to, loc),
		TotalDays:  timezone.DaysBetween(from, to, loc) + 1,
		Highlights: []string{},
	}
	if sum.TotalDays < 0 {
		sum.TotalDays = 0
	}

	scheduledByDate := make(map[string]int)

	for _, s := range sessions {
		if s.WorkDate < sum.FromDate || s.WorkDate > sum.ToDate {
			continue
		}

		sum.SessionsCount++
		scheduledByDate[s.WorkDate] = max(scheduledByDate[s.WorkDate], s.ScheduledMinutes)

		if SessionStatus(s.Status) == SessionCompleted {
			sum.TotalWorkedMinutes += s.ActualMinutes
		}
		sum.TotalServices += s.ServicesCompleted
		sum.TotalRevenue += s.RevenueGenerated
		sum.TotalCommission += s.CommissionEarned
	}

	sum.DaysWorked = len(scheduledByDate)
	for _, m := range scheduledByDate {
		sum.TotalScheduledMinutes += m
	}

	sum.TotalRevenue = round2(sum.TotalRevenue)
	sum.TotalCommission = round2(sum.TotalCommission)

	if sum.TotalDays > 0 {
		sum.AttendancePct = round2(float64(sum.DaysWorked) / float64(sum.TotalDays) * 100)
	}
	if sum.DaysWorked > 0 {
		sum.AverageWorkDayMinutes = round2(float64(sum.TotalWorkedMinutes) / float64(sum.DaysWorked))
	}
	if sum.TotalScheduledMinutes > 0 {
		sum.AverageUtilizationPct = round2(float64(sum.TotalWorkedMinutes) / float64(sum.TotalScheduledMinutes) * 100)
	}

	sum.Highlights = highlights(sum)
	return sum
}

func highlights(s Summary) []string {
	out := []string{}

	if s.TotalDays > 0 && s.AttendancePct >= excellentAttendancePct {
		out = append(out, "Excellent attendance")
	}
	if s.TotalScheduledMinutes > 0 && s.AverageUtilizationPct >= highUtilizationPct {
		out = append(out, "High utilization")
	}
	if s.AverageUtilizationPct > 100 {
		out = append(out, "Overtime logged")
	}
	if s.TotalServices >= highServiceVolume {
		out = append(out, "High service volume")
	}

	return out
}
