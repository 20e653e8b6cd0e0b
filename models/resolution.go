package models

import (
	"time"
)

// BatchSize is the number of resolutions produced per generation request.
const BatchSize = 3

type Resolution struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      string    `gorm:"type:varchar(36);not null;index" json:"roomId"`
	Batch       int       `gorm:"not null" json:"batch"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Confidence  int       `gorm:"not null" json:"confidence"`
	Recommended bool      `gorm:"not null;default:false" json:"recommended"`
	CreatedAt   time.Time `json:"createdAt"`
}
