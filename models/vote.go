package models

import (
	"time"
)

type Vote struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RoomID       string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_vote_room_user" json:"roomId"`
	UserID       uint        `gorm:"not null;uniqueIndex:idx_vote_room_user" json:"userId"`
	ResolutionID uint        `gorm:"not null;index" json:"resolutionId"`
	Resolution   *Resolution `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
}
