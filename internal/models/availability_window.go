package models

import "time"

// AvailabilityWindow is the weekly open/close rule of a service for one
// day of the week (0 = Sunday).
type AvailabilityWindow struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ServiceID uint `gorm:"index:idx_window_service_day;not null" json:"service_id"`
	DayOfWeek int  `gorm:"index:idx_window_service_day;not null" json:"day_of_week"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	IsAvailable         bool `gorm:"not null" json:"is_available"`
	MaxBookingsPerSlot  int  `gorm:"default:1" json:"max_bookings_per_slot"`
	SlotDurationMinutes int  `gorm:"default:30" json:"slot_duration_minutes"`
	BufferTimeMinutes   int  `gorm:"default:0" json:"buffer_time_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
