package models

import "time"

// WorkSession is one clock-in to clock-out cycle. A staff member may have
// several per work date, but at most one active (see db.Migrate).
type WorkSession struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	StaffID uint `gorm:"index:idx_work_session_staff_date;not null" json:"staff_id"`

	// Salon-local calendar date, YYYY-MM-DD.
	WorkDate string `gorm:"size:10;index:idx_work_session_staff_date;not null" json:"work_date"`

	ClockInTime  time.Time  `json:"clock_in_time"`
	ClockOutTime *time.Time `json:"clock_out_time"`

	ScheduledMinutes int `json:"scheduled_minutes"`
	ActualMinutes    int `json:"actual_minutes"`
	BreakMinutes     int `json:"break_minutes"`

	Status string `gorm:"size:20;not null;default:'active'" json:"status"`

	ClockInLatitude   *float64 `json:"clock_in_latitude"`
	ClockInLongitude  *float64 `json:"clock_in_longitude"`
	ClockOutLatitude  *float64 `json:"clock_out_latitude"`
	ClockOutLongitude *float64 `json:"clock_out_longitude"`
	ClockInLocation   string   `gorm:"size:100" json:"clock_in_location"`
	Notes             string   `gorm:"size:255" json:"notes"`

	ServicesCompleted int     `json:"services_completed"`
	RevenueGenerated  float64 `json:"revenue_generated"`
	CommissionEarned  float64 `json:"commission_earned"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
