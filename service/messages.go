package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/websocket"
	"github.com/sirupsen/logrus"
)

// MaxMessageLength caps the characters of content and transcript.
const MaxMessageLength = 4000

// MessageInput is a message as submitted by a participant.
type MessageInput struct {
	Content    string
	IsVoice    bool
	Transcript string
	AudioURL   string
}

func (in MessageInput) validate() error {
	content := strings.TrimSpace(in.Content)
	transcript := strings.TrimSpace(in.Transcript)
	if content == "" && transcript == "" {
		return fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	if !in.IsVoice && (transcript != "" || in.AudioURL != "") {
		return fmt.Errorf("%w: only voice messages carry a transcript or audio", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength || utf8.RuneCountInString(transcript) > MaxMessageLength {
		return fmt.Errorf("%w: message is longer than %d characters", ErrInvalidInput, MaxMessageLength)
	}
	return nil
}

// PostMessage stores a message from userID and sends it to every live
// connection in the room, the sender included.
func (s *Service) PostMessage(ctx context.Context, roomID string, userID uint, in MessageInput) (*models.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.guard.Authorize(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomArchived {
		return nil, ErrRoomNotActive
	}

	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	message := &models.Message{
		RoomID:     roomID,
		UserID:     userID,
		UserName:   user.Name,
		Content:    strings.TrimSpace(in.Content),
		IsVoice:    in.IsVoice,
		Transcript: strings.TrimSpace(in.Transcript),
		AudioURL:   in.AudioURL,
		CreatedAt:  s.now(),
	}
	if err := s.store.Messages.Create(ctx, message); err != nil {
		logCtx.WithError(err).Error("Failed to save message")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	delivered := s.broadcaster.BroadcastAll(roomID, websocket.NewMessage{Message: *message})
	logCtx.WithFields(logrus.Fields{"message_id": message.ID, "delivered": delivered}).Debug("Message posted")
	return message, nil
}

// ListMessages returns the room's messages in conversation order.
func (s *Service) ListMessages(ctx context.Context, roomID string, userID uint) ([]models.Message, error) {
	if _, err := s.guard.Authorize(ctx, roomID, userID); err != nil {
		return nil, err
	}
	messages, err := s.store.Messages.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return messages, nil
}

// Transcribe converts a recorded audio blob for a member of the room.
func (s *Service) Transcribe(ctx context.Context, roomID string, userID uint, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio is empty", ErrInvalidInput)
	}
	if _, err := s.guard.Authorize(ctx, roomID, userID); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	text, err := s.transcriber.Transcribe(callCtx, filename, audio)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).WithError(err).Warn("Transcription failed")
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	return strings.TrimSpace(text), nil
}
