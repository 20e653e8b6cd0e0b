// Package ai talks to the external model endpoints: resolution generation
// over the chat completions API and audio transcription.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when the model output cannot be turned
// into a valid batch of candidates.
var ErrMalformedResponse = errors.New("malformed model response")

// Candidate is one proposed resolution before it is persisted.
type Candidate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Confidence  int    `json:"confidence"`
	Recommended bool   `json:"recommended"`
}

// Generator proposes resolutions for a conversation.
type Generator interface {
	// Generate returns exactly BatchSize candidates built from utterances,
	// which are in conversation order.
	Generate(ctx context.Context, utterances []string, temperature float64) ([]Candidate, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// ProviderError is a non-200 response from the model endpoint.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("ai: provider returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("ai: provider returned %d: %s", e.StatusCode, e.Message)
}
