package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/websocket"
	"github.com/sirupsen/logrus"
)

// CastVote records userID's single vote in the room and resolves the room
// once both participants have picked the same resolution.
func (s *Service) CastVote(ctx context.Context, roomID string, userID, resolutionID uint) (*models.Vote, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "component": "votes"})

	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.guard.Authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Votes.FindByRoomAndUser(ctx, roomID, userID); err == nil {
		return nil, ErrAlreadyVoted
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	resolution, err := s.store.Resolutions.FindByID(ctx, resolutionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrResolutionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if resolution.RoomID != roomID {
		return nil, ErrResolutionNotFound
	}
	if room.Status == models.RoomArchived {
		return nil, ErrRoomNotActive
	}

	vote := &models.Vote{
		RoomID:       roomID,
		UserID:       userID,
		ResolutionID: resolutionID,
		CreatedAt:    s.now(),
	}
	if err := s.store.Votes.Create(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyVoted
		}
		logCtx.WithError(err).Error("Failed to save vote")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.broadcaster.BroadcastAll(roomID, websocket.VoteCast{UserID: userID, ResolutionID: resolutionID})
	logCtx.WithField("resolution_id", resolutionID).Info("Vote cast")

	// The vote is already stored and announced, so it stands even when the
	// convergence check fails.
	if err := s.converge(ctx, room, logCtx); err != nil {
		logCtx.WithError(err).Error("Failed to evaluate convergence")
	}
	return vote, nil
}

// converge resolves the room when exactly two votes name the same
// resolution. The room lock must be held.
func (s *Service) converge(ctx context.Context, room *models.Room, logCtx *logrus.Entry) error {
	if room.Status != models.RoomActive {
		return nil
	}
	votes, err := s.store.Votes.ListByRoom(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if len(votes) != 2 || votes[0].ResolutionID != votes[1].ResolutionID {
		return nil
	}

	agreed, err := s.store.Resolutions.FindByID(ctx, votes[0].ResolutionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	room.Resolve(s.now())
	if err := s.store.Rooms.Update(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to mark room resolved")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.broadcaster.BroadcastAll(room.ID, websocket.RoomResolved{Resolution: *agreed})
	logCtx.WithField("resolution_id", agreed.ID).Info("Room resolved")
	return nil
}

// ListVotes returns the votes cast in the room.
func (s *Service) ListVotes(ctx context.Context, roomID string, userID uint) ([]models.Vote, error) {
	if _, err := s.guard.Authorize(ctx, roomID, userID); err != nil {
		return nil, err
	}
	votes, err := s.store.Votes.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return votes, nil
}
