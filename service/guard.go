package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/store"
)

// Guard decides whether an identity may act within a room. A member is the
// room's creator or either participant.
type Guard struct {
	rooms store.RoomRepository
}

func NewGuard(rooms store.RoomRepository) *Guard {
	if rooms == nil {
		panic("RoomRepository cannot be nil for Guard")
	}
	return &Guard{rooms: rooms}
}

// Authorize loads the room and checks userID against it.
func (g *Guard) Authorize(ctx context.Context, roomID string, userID uint) (*models.Room, error) {
	room, err := g.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !room.IsMember(userID) {
		return nil, ErrAccessDenied
	}
	return room, nil
}

// IsMember reports membership and denies when the room does not exist.
func (g *Guard) IsMember(ctx context.Context, roomID string, userID uint) (bool, error) {
	_, err := g.Authorize(ctx, roomID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrAccessDenied):
		return false, nil
	default:
		return false, err
	}
}
