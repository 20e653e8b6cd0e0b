package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomActive   RoomStatus = "active"
	RoomResolved RoomStatus = "resolved"
	RoomArchived RoomStatus = "archived"
)

// ErrRoomFull is returned when both participant slots hold other identities.
var ErrRoomFull = errors.New("room already has two participants")

type Room struct {
	ID           string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code         string       `gorm:"size:6;not null;uniqueIndex" json:"code"`
	Title        string       `gorm:"size:255" json:"title"`
	CreatedBy    uint         `gorm:"not null;index" json:"createdBy"`
	Participant1 *uint        `gorm:"index" json:"participant1,omitempty"`
	Participant2 *uint        `gorm:"index" json:"participant2,omitempty"`
	Status       RoomStatus   `gorm:"size:20;not null;default:'active'" json:"status"`
	ResolvedAt   *time.Time   `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Messages     []Message    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Resolutions  []Resolution `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Votes        []Vote       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a UUID when the room has none yet and opens it as
// active by default
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RoomActive
	}
	return nil
}

// IsMember reports whether userID is the creator or holds either slot.
func (r *Room) IsMember(userID uint) bool {
	if r.CreatedBy == userID {
		return true
	}
	return r.occupies(userID)
}

func (r *Room) occupies(userID uint) bool {
	return (r.Participant1 != nil && *r.Participant1 == userID) ||
		(r.Participant2 != nil && *r.Participant2 == userID)
}

// AssignParticipant puts userID into the first empty slot. It returns false
// without changes when userID already holds a slot, and ErrRoomFull when
// both slots belong to other users.
func (r *Room) AssignParticipant(userID uint) (bool, error) {
	if r.occupies(userID) {
		return false, nil
	}
	id := userID
	switch {
	case r.Participant1 == nil:
		r.Participant1 = &id
	case r.Participant2 == nil:
		r.Participant2 = &id
	default:
		return false, ErrRoomFull
	}
	return true, nil
}

// Participants returns the ids currently bound to the two slots.
func (r *Room) Participants() []uint {
	ids := make([]uint, 0, 2)
	if r.Participant1 != nil {
		ids = append(ids, *r.Participant1)
	}
	if r.Participant2 != nil {
		ids = append(ids, *r.Participant2)
	}
	return ids
}

// Resolve moves the room into its terminal state. ResolvedAt is only set once.
func (r *Room) Resolve(at time.Time) {
	r.Status = RoomResolved
	if r.ResolvedAt == nil {
		r.ResolvedAt = &at
	}
}
