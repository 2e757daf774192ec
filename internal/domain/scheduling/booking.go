package scheduling

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

func InitialStatus() BookingStatus {
	return BookingPending
}

// CountsAgainstCapacity reports whether a booking in this status still
// occupies its slot.
func (s BookingStatus) CountsAgainstCapacity() bool {
	return s != BookingCancelled
}

func BookingInterval(b models.Booking) Interval {
	end := b.EndTime
	if end.IsZero() || !end.After(b.StartTime) {
		end = b.StartTime.Add(time.Duration(b.DurationMin) * time.Minute)
	}
	return Interval{Start: b.StartTime, End: end}
}

// OccupyingIntervals keeps the bookings that count against capacity.
func OccupyingIntervals(bookings []models.Booking) []Interval {
	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if BookingStatus(b.Status).CountsAgainstCapacity() {
			out = append(out, BookingInterval(b))
		}
	}
	return out
}

func Confirm(b *models.Booking) error {
	if BookingStatus(b.Status) != BookingPending {
		return httperr.Validation("invalid_state", "only pending bookings can be confirmed")
	}

	b.Status = string(BookingConfirmed)
	return nil
}

func Start(b *models.Booking) error {
	if BookingStatus(b.Status) != BookingConfirmed {
		return httperr.Validation("invalid_state", "only confirmed bookings can be started")
	}

	b.Status = string(BookingInProgress)
	return nil
}

func Cancel(b *models.Booking, now time.Time) error {
	switch BookingStatus(b.Status) {
	case BookingPending, BookingConfirmed:
	default:
		return httperr.Validation("invalid_state", "booking can no longer be cancelled")
	}

	b.Status = string(BookingCancelled)
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	switch BookingStatus(b.Status) {
	case BookingConfirmed, BookingInProgress:
	default:
		return httperr.Validation("invalid_state", "booking can not be completed")
	}

	b.Status = string(BookingCompleted)
	b.CompletedAt = &now
	return nil
}

func MarkNoShow(b *models.Booking) error {
	if BookingStatus(b.Status) != BookingConfirmed {
		return httperr.Validation("invalid_state", "only confirmed bookings can be marked as no-show")
	}

	b.Status = string(BookingNoShow)
	return nil
}
