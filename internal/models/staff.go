package models

import "time"

// Staff is the employment profile of a user: shift template, lunch break
// and commission rate.
type Staff struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"index;not null" json:"salon_id"`
	UserID  uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User    User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ShiftStart      string `gorm:"size:5;not null" json:"shift_start"`
	ShiftEnd        string `gorm:"size:5;not null" json:"shift_end"`
	LunchBreakStart string `gorm:"size:5" json:"lunch_break_start"`
	LunchBreakEnd   string `gorm:"size:5" json:"lunch_break_end"`

	CommissionRate float64 `gorm:"default:0" json:"commission_rate"`
	Active         bool    `gorm:"default:true" json:"active"`

	Services []Service `gorm:"many2many:staff_services;" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
