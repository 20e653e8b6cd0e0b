package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/CUknot/fairmind/ai"
	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/quota"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// MinContextMessages is the number of utterances needed before a
	// generation request is accepted.
	MinContextMessages = 4

	firstTemperature = 0.7
	retryTemperature = 0.3
)

// RequestResolutions asks the generator for a batch of resolutions for the
// room, persists it and broadcasts it to the room. Generator failures fall
// back to a fixed batch so a request that passes its preconditions always
// produces resolutions. The batch is saved under the room lock only if the
// room is still active once generation returns; otherwise the unit of quota
// is refunded and ErrRoomNotActive is returned.
func (s *Service) RequestResolutions(ctx context.Context, roomID string, userID uint) (batch []models.Resolution, err error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "component": "resolutions"})

	room, err := s.guard.Authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomActive {
		return nil, ErrRoomNotActive
	}

	if !s.inflight.begin(roomID) {
		return nil, ErrGenerationInProgress
	}
	defer s.inflight.end(roomID)

	if _, err := s.quota.Acquire(ctx, userID); err != nil {
		if errors.Is(err, quota.ErrExceeded) {
			logCtx.Info("Resolution quota exhausted")
			return nil, ErrQuotaExceeded
		}
		logCtx.WithError(err).Error("Failed to acquire quota")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	defer func() {
		if err == nil {
			return
		}
		// The caller's context may already be done.
		if refundErr := s.quota.Refund(context.WithoutCancel(ctx), userID); refundErr != nil {
			logCtx.WithError(refundErr).Error("Failed to refund quota")
		}
	}()

	messages, err := s.store.Messages.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	utterances := make([]string, 0, len(messages))
	for i := range messages {
		if text := messages[i].Text(); text != "" {
			utterances = append(utterances, text)
		}
	}
	if len(utterances) < MinContextMessages {
		return nil, ErrInsufficientContext
	}

	candidates := s.generate(ctx, logCtx, utterances)

	unlock := s.locks.lock(roomID)
	defer unlock()
	// Votes may have resolved the room while the model was running.
	current, err := s.store.Rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if current.Status != models.RoomActive {
		logCtx.Info("Room left the active state during generation, discarding batch")
		return nil, ErrRoomNotActive
	}

	batch = make([]models.Resolution, len(candidates))
	for i, c := range candidates {
		batch[i] = models.Resolution{
			Title:       c.Title,
			Description: c.Description,
			Confidence:  c.Confidence,
			Recommended: c.Recommended,
		}
	}
	if err := s.store.Resolutions.CreateBatch(ctx, roomID, batch); err != nil {
		logCtx.WithError(err).Error("Failed to save resolutions")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	delivered := s.broadcaster.BroadcastAll(roomID, websocket.ResolutionsGenerated{Resolutions: batch})
	logCtx.WithFields(logrus.Fields{"batch": batch[0].Batch, "delivered": delivered}).Info("Resolutions generated")
	return batch, nil
}

// generate tries the model twice and then settles on the fallback batch.
func (s *Service) generate(ctx context.Context, logCtx *logrus.Entry, utterances []string) []ai.Candidate {
	for _, temperature := range []float64{firstTemperature, retryTemperature} {
		candidates, err := s.attempt(ctx, utterances, temperature)
		if err == nil {
			return candidates
		}
		logCtx.WithError(err).WithField("temperature", temperature).Warn("Resolution generation attempt failed")
	}
	logCtx.Warn("Using fallback resolutions")
	return ai.Fallback()
}

func (s *Service) attempt(ctx context.Context, utterances []string, temperature float64) ([]ai.Candidate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	candidates, err := s.generator.Generate(callCtx, utterances, temperature)
	if err != nil {
		return nil, err
	}
	if err := ai.Validate(candidates); err != nil {
		return nil, err
	}
	return ai.Normalize(candidates), nil
}

// ListResolutions returns every batch generated for the room.
func (s *Service) ListResolutions(ctx context.Context, roomID string, userID uint) ([]models.Resolution, error) {
	if _, err := s.guard.Authorize(ctx, roomID, userID); err != nil {
		return nil, err
	}
	resolutions, err := s.store.Resolutions.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return resolutions, nil
}
