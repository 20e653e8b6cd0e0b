// Package quota enforces the daily per-user cap on resolution generation.
package quota

import (
	"context"
	"errors"
	"time"
)

// ErrExceeded is returned by Acquire when the user has no units left today.
var ErrExceeded = errors.New("daily quota exceeded")

// Limiter hands out daily units. Acquire is a single atomic
// check-and-increment; Refund gives back a unit taken by Acquire.
type Limiter interface {
	// Acquire takes one unit for userID and returns how many remain.
	Acquire(ctx context.Context, userID uint) (remaining int, err error)
	Refund(ctx context.Context, userID uint) error
	Remaining(ctx context.Context, userID uint) (int, error)
	Limit() int
}

// dayKey identifies the UTC day that t falls in.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// nextReset is the UTC midnight following t.
func nextReset(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
