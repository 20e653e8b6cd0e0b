package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/CUknot/fairmind/models"
)

// Fallback is the fixed batch used when the model cannot produce a usable one.
func Fallback() []Candidate {
	return []Candidate{
		{
			Title:       "Meet in the middle",
			Description: "Each side gives up part of what they asked for so both needs are partly met. Agree on the specific concessions and write them down.",
			Confidence:  70,
			Recommended: true,
		},
		{
			Title:       "Try it for two weeks",
			Description: "Pick one approach and run it as a trial for a fixed period, then check in together and keep, adjust or drop it.",
			Confidence:  60,
		},
		{
			Title:       "Swap perspectives",
			Description: "Each person restates the other's position until the other agrees it is accurate, then look for an option neither had proposed.",
			Confidence:  55,
		},
	}
}

// ParseCandidates extracts a batch from raw model output. The output may be
// a bare JSON array, an object with a "resolutions" array, or either wrapped
// in a markdown code fence.
func ParseCandidates(raw string) ([]Candidate, error) {
	body := stripFence(raw)

	var candidates []Candidate
	if err := json.Unmarshal([]byte(body), &candidates); err != nil {
		var wrapped struct {
			Resolutions []Candidate `json:"resolutions"`
		}
		if err2 := json.Unmarshal([]byte(body), &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		candidates = wrapped.Resolutions
	}
	if err := Validate(candidates); err != nil {
		return nil, err
	}
	return Normalize(candidates), nil
}

// Validate checks the batch size, required text and confidence range.
func Validate(candidates []Candidate) error {
	if len(candidates) != models.BatchSize {
		return fmt.Errorf("%w: expected %d candidates, got %d", ErrMalformedResponse, models.BatchSize, len(candidates))
	}
	for i, c := range candidates {
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Description) == "" {
			return fmt.Errorf("%w: candidate %d is missing title or description", ErrMalformedResponse, i+1)
		}
		if c.Confidence < 0 || c.Confidence > 100 {
			return fmt.Errorf("%w: candidate %d confidence %d out of range", ErrMalformedResponse, i+1, c.Confidence)
		}
	}
	return nil
}

// Normalize trims text and leaves the recommended flag on the single
// highest-confidence candidate, the earliest one on ties.
func Normalize(candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	best := 0
	for i, c := range candidates {
		c.Title = strings.TrimSpace(c.Title)
		c.Description = strings.TrimSpace(c.Description)
		c.Recommended = false
		out[i] = c
		if c.Confidence > out[best].Confidence {
			best = i
		}
	}
	if len(out) > 0 {
		out[best].Recommended = true
	}
	return out
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
