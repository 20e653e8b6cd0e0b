// Package store defines the persistence collaborator used by the services:
// narrow repositories over users, rooms, messages, resolutions and votes.
package store

import (
	"context"
	"errors"

	"github.com/CUknot/fairmind/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate entry")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id string) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, room *models.Room) error
	// ListForUser returns rooms the user created or participates in, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.Room, error)
	// Delete removes the room together with its messages, resolutions and votes.
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListByRoom returns messages in insertion order.
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	CountBySender(ctx context.Context, userID uint) (int64, error)
}

type ResolutionRepository interface {
	// CreateBatch stores the resolutions as one batch numbered after the
	// room's latest batch.
	CreateBatch(ctx context.Context, roomID string, resolutions []models.Resolution) error
	FindByID(ctx context.Context, id uint) (*models.Resolution, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Resolution, error)
}

type VoteRepository interface {
	// Create returns ErrDuplicate if the user already voted in the room.
	Create(ctx context.Context, vote *models.Vote) error
	FindByRoomAndUser(ctx context.Context, roomID string, userID uint) (*models.Vote, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Vote, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// Store groups the repositories handed to the services.
type Store struct {
	Users       UserRepository
	Rooms       RoomRepository
	Messages    MessageRepository
	Resolutions ResolutionRepository
	Votes       VoteRepository
}
