package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SalonID   uint  `gorm:"index" json:"salon_id"`
	ServiceID uint  `gorm:"index:idx_booking_service_date" json:"service_id"`
	StaffID   *uint `gorm:"index:idx_booking_staff_date" json:"staff_id"`
	ClientID  uint  `json:"client_id"`

	// Salon-local calendar date, YYYY-MM-DD.
	BookingDate string    `gorm:"size:10;index:idx_booking_service_date;index:idx_booking_staff_date" json:"booking_date"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`

	Status      string  `gorm:"size:20;default:'pending'" json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Notes       string  `gorm:"size:255" json:"notes"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
