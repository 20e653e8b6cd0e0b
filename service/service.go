// Package service implements the room session core: room membership,
// messages, resolution generation and vote convergence.
package service

import (
	"context"
	"time"

	"github.com/CUknot/fairmind/ai"
	"github.com/CUknot/fairmind/quota"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/websocket"
)

// Broadcaster fans events out to a room's live connections.
type Broadcaster interface {
	BroadcastAll(roomID string, ev websocket.Event) int
	BroadcastExcept(roomID string, ev websocket.Event, userID uint) int
}

// Config carries the collaborators of a Service.
type Config struct {
	Store       *store.Store
	Guard       *Guard
	Quota       quota.Limiter
	Generator   ai.Generator
	Transcriber ai.Transcriber
	Broadcaster Broadcaster
	// AITimeout bounds each call to the generator or transcriber.
	AITimeout time.Duration
	// NewCode overrides join code generation.
	NewCode func(ctx context.Context) (string, error)
	Now     func() time.Time
}

type Service struct {
	store       *store.Store
	guard       *Guard
	quota       quota.Limiter
	generator   ai.Generator
	transcriber ai.Transcriber
	broadcaster Broadcaster
	aiTimeout   time.Duration
	newCode     func(ctx context.Context) (string, error)
	now         func() time.Time

	locks    *roomLocks
	inflight *inflight
}

func New(cfg Config) *Service {
	if cfg.Store == nil {
		panic("Store cannot be nil for Service")
	}
	if cfg.Quota == nil || cfg.Generator == nil || cfg.Transcriber == nil || cfg.Broadcaster == nil {
		panic("Service requires quota, generator, transcriber and broadcaster")
	}
	s := &Service{
		store:       cfg.Store,
		guard:       cfg.Guard,
		quota:       cfg.Quota,
		generator:   cfg.Generator,
		transcriber: cfg.Transcriber,
		broadcaster: cfg.Broadcaster,
		aiTimeout:   cfg.AITimeout,
		newCode:     cfg.NewCode,
		now:         cfg.Now,
		locks:       newRoomLocks(),
		inflight:    newInflight(),
	}
	if s.guard == nil {
		s.guard = NewGuard(cfg.Store.Rooms)
	}
	if s.aiTimeout <= 0 {
		s.aiTimeout = 60 * time.Second
	}
	if s.newCode == nil {
		s.newCode = s.generateUniqueCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Guard exposes the authorization guard used by the service.
func (s *Service) Guard() *Guard { return s.guard }
