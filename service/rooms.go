package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/store"
	"github.com/sirupsen/logrus"
)

const (
	codeAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength     = 6
	maxCodeAttempt = 10
)

// CreateRoom opens a room with creatorID in the first participant slot.
func (s *Service) CreateRoom(ctx context.Context, creatorID uint, title string) (*models.Room, error) {
	logCtx := logrus.WithField("creator_id", creatorID)

	for attempt := 0; attempt < maxCodeAttempt; attempt++ {
		code, err := s.newCode(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate room code")
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		room := &models.Room{
			Code:      code,
			Title:     strings.TrimSpace(title),
			CreatedBy: creatorID,
			Status:    models.RoomActive,
		}
		if _, err := room.AssignParticipant(creatorID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		err = s.store.Rooms.Create(ctx, room)
		if errors.Is(err, store.ErrDuplicate) {
			logCtx.WithField("code", code).Warn("Room code collided, retrying")
			continue
		}
		if err != nil {
			logCtx.WithError(err).Error("Failed to save new room")
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		logCtx.WithFields(logrus.Fields{"room_id": room.ID, "code": room.Code}).Info("Room created")
		return room, nil
	}
	return nil, fmt.Errorf("%w: no unique room code after %d attempts", ErrInternal, maxCodeAttempt)
}

// JoinRoom binds userID to the room with the given code. Joining a room the
// user already belongs to returns it unchanged.
func (s *Service) JoinRoom(ctx context.Context, userID uint, code string) (*models.Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	found, err := s.store.Rooms.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	unlock := s.locks.lock(found.ID)
	defer unlock()

	room, err := s.store.Rooms.FindByID(ctx, found.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if room.IsMember(userID) {
		return room, nil
	}
	if room.Status == models.RoomArchived {
		return nil, ErrRoomNotActive
	}

	if _, err := room.AssignParticipant(userID); err != nil {
		logCtx.Warn("Join rejected, room is full")
		return nil, err
	}
	if err := s.store.Rooms.Update(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to save participant")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	logCtx.WithField("room_id", room.ID).Info("User joined room")
	return room, nil
}

// GetRoom returns the room if userID is a member.
func (s *Service) GetRoom(ctx context.Context, roomID string, userID uint) (*models.Room, error) {
	return s.guard.Authorize(ctx, roomID, userID)
}

// ListRooms returns the rooms userID belongs to, newest first.
func (s *Service) ListRooms(ctx context.Context, userID uint) ([]models.Room, error) {
	rooms, err := s.store.Rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return rooms, nil
}

// DeleteRoom removes the room and everything in it. Only the creator may.
func (s *Service) DeleteRoom(ctx context.Context, roomID string, userID uint) error {
	room, err := s.guard.Authorize(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if room.CreatedBy != userID {
		return ErrAccessDenied
	}

	unlock := s.locks.lock(roomID)
	defer unlock()
	if err := s.store.Rooms.Delete(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Info("Room deleted")
	return nil
}

// generateUniqueCode draws random codes until one is unused.
func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempt; attempt++ {
		code, err := randomCode(rand.Reader)
		if err != nil {
			return "", err
		}

		exists, err := s.store.Rooms.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check room code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxCodeAttempt)
}

// randomCode reads bytes from r and keeps only those below the largest
// multiple of the alphabet size, so every symbol is equally likely.
func randomCode(r io.Reader) (string, error) {
	const limit = 256 - 256%len(codeAlphabet)

	code := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength*2)
	for len(code) < codeLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == codeLength {
				break
			}
		}
	}
	return string(code), nil
}
