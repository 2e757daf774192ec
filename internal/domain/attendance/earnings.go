package attendance

import (
	"math"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/scheduling"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Earnings struct {
	Services   int
	Revenue    float64
	Commission float64
}

// ResolveCommissionRate picks the percentage used for a staff member:
// their own rate, then the salon default, then fallback.
func ResolveCommissionRate(staff *models.Staff, salon *models.Salon, fallback float64) float64 {
	if staff != nil && staff.CommissionRate > 0 {
		return staff.CommissionRate
	}
	if salon != nil && salon.DefaultCommissionRate > 0 {
		return salon.DefaultCommissionRate
	}
	return fallback
}

// DayEarnings totals the completed bookings of one day.
func DayEarnings(bookings []models.Booking, ratePct float64) Earnings {
	var e Earnings
	for _, b := range bookings {
		if scheduling.BookingStatus(b.Status) != scheduling.BookingCompleted {
			continue
		}
		e.Services++
		e.Revenue += b.TotalAmount
	}
	e.Revenue = round2(e.Revenue)
	e.Commission = round2(e.Revenue * ratePct / 100)
	return e
}

// Attribute removes from the day totals what earlier completed sessions
// of the same day already recorded, so that a day with several clock
// cycles is never counted twice.
func Attribute(day Earnings, earlier []models.WorkSession, ratePct float64) Earnings {
	e := day
	for _, s := range earlier {
		if SessionStatus(s.Status) != SessionCompleted {
			continue
		}
		e.Services -= s.ServicesCompleted
		e.Revenue -= s.RevenueGenerated
	}

	e.Services = max(e.Services, 0)
	e.Revenue = round2(math.Max(e.Revenue, 0))
	e.Commission = round2(e.Revenue * ratePct / 100)
	return e
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
