package service

import (
	"context"
	"fmt"

	"github.com/CUknot/fairmind/models"
)

// Stats summarises a user's activity.
type Stats struct {
	RoomsTotal           int   `json:"roomsTotal"`
	RoomsActive          int   `json:"roomsActive"`
	RoomsResolved        int   `json:"roomsResolved"`
	MessagesSent         int64 `json:"messagesSent"`
	VotesCast            int64 `json:"votesCast"`
	ResolutionsRemaining int   `json:"resolutionsRemaining"`
	DailyLimit           int   `json:"dailyLimit"`
}

func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	rooms, err := s.store.Rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	stats := &Stats{RoomsTotal: len(rooms), DailyLimit: s.quota.Limit()}
	for i := range rooms {
		switch rooms[i].Status {
		case models.RoomActive:
			stats.RoomsActive++
		case models.RoomResolved:
			stats.RoomsResolved++
		}
	}

	if stats.MessagesSent, err = s.store.Messages.CountBySender(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if stats.VotesCast, err = s.store.Votes.CountByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if stats.ResolutionsRemaining, err = s.quota.Remaining(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return stats, nil
}
