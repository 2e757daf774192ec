package models

import "time"

type WorkBreak struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SessionID uint       `gorm:"index;not null" json:"session_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	CreatedAt time.Time  `json:"created_at"`
}
