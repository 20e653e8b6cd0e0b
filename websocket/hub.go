package websocket

import (
	"context"

	"github.com/sirupsen/logrus"
)

// MembershipChecker answers whether a user may join a room's channel.
type MembershipChecker interface {
	IsMember(ctx context.Context, roomID string, userID uint) (bool, error)
}

// Hub owns the connection registry and fans events out to rooms.
type Hub struct {
	registry *Registry
	members  MembershipChecker
	log      *logrus.Entry
}

// NewHub creates a hub around registry. members is consulted on every join.
func NewHub(registry *Registry, members MembershipChecker) *Hub {
	if registry == nil {
		panic("registry cannot be nil for Hub")
	}
	if members == nil {
		panic("membership checker cannot be nil for Hub")
	}
	return &Hub{
		registry: registry,
		members:  members,
		log:      logrus.WithField("component", "hub"),
	}
}

// BroadcastAll sends ev to every connection registered for roomID and
// returns how many accepted it.
func (h *Hub) BroadcastAll(roomID string, ev Event) int {
	return h.deliver(roomID, ev, h.registry.List(roomID))
}

// BroadcastExcept sends ev to every connection of roomID except userID's.
func (h *Hub) BroadcastExcept(roomID string, ev Event, userID uint) int {
	return h.deliver(roomID, ev, h.registry.ListOthers(roomID, userID))
}

// deliver encodes once and attempts a non-blocking send per handle.
// Connections that are not writable are skipped.
func (h *Hub) deliver(roomID string, ev Event, handles []Handle) int {
	if len(handles) == 0 {
		return 0
	}
	frame, err := Encode(ev)
	if err != nil {
		h.log.WithError(err).WithField("room_id", roomID).Error("Failed to encode event")
		return 0
	}

	delivered := 0
	for _, handle := range handles {
		if handle.Send(frame) {
			delivered++
		}
	}
	logCtx := h.log.WithFields(logrus.Fields{
		"room_id":    roomID,
		"event":      ev.Kind(),
		"recipients": len(handles),
		"delivered":  delivered,
	})
	if delivered < len(handles) {
		logCtx.Warn("Skipped connections that were not writable")
	} else {
		logCtx.Debug("Event broadcast")
	}
	return delivered
}

// Members lists users currently connected to roomID.
func (h *Hub) Members(roomID string) []Member {
	return h.registry.Members(roomID)
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	h.log.WithField("rooms", h.registry.RoomCount()).Info("Closing live connections")
	h.registry.Close()
}
