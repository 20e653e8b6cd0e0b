package service

import (
	"errors"

	"github.com/CUknot/fairmind/models"
)

var (
	ErrAccessDenied         = errors.New("access denied")
	ErrRoomNotFound         = errors.New("room not found")
	ErrResolutionNotFound   = errors.New("resolution not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyVoted         = errors.New("user has already voted in this room")
	ErrQuotaExceeded        = errors.New("daily resolution quota exceeded")
	ErrInsufficientContext  = errors.New("at least 4 messages are needed before generating resolutions")
	ErrRoomFull             = models.ErrRoomFull
	ErrRoomNotActive        = errors.New("room is not active")
	ErrGenerationInProgress = errors.New("resolutions are already being generated for this room")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrInternal             = errors.New("internal server error")
)
