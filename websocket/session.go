package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const joinCheckTimeout = 5 * time.Second

var (
	// ErrIdentityMismatch is returned when join_room names a user other than
	// the connection's authenticated one.
	ErrIdentityMismatch = errors.New("join identity does not match authenticated user")
	// ErrNotMember is returned when the user does not belong to the room.
	ErrNotMember = errors.New("user is not a member of this room")
)

// handleIncoming processes one frame read from a client connection.
func (h *Hub) handleIncoming(c *Client, data []byte) {
	logCtx := h.log.WithField("user_id", c.userID)

	ev, err := Decode(data)
	if err != nil {
		logCtx.WithError(err).Warn("Rejected malformed frame")
		c.sendEvent(Error{Message: err.Error()})
		return
	}

	switch e := ev.(type) {
	case JoinRoom:
		if err := h.join(c, e); err != nil {
			logCtx.WithError(err).WithField("room_id", e.RoomID).Warn("Join rejected, closing connection")
			c.sendEvent(Error{Message: err.Error()})
			c.Close()
		}
	case LeaveRoom:
		if e.UserID != c.userID {
			c.sendEvent(Error{Message: ErrIdentityMismatch.Error()})
			return
		}
		if roomID := c.currentRoom(); roomID == e.RoomID {
			h.leave(c)
		}
	default:
		logCtx.WithField("event", ev.Kind()).Warn("Rejected server-only event from client")
		c.sendEvent(Error{Message: fmt.Sprintf("event %q cannot be sent by clients", ev.Kind())})
	}
}

// join validates the request against the authenticated identity and room
// membership, registers the connection and announces it to the room.
func (h *Hub) join(c *Client, req JoinRoom) error {
	if req.UserID != c.userID {
		return ErrIdentityMismatch
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinCheckTimeout)
	defer cancel()
	ok, err := h.members.IsMember(ctx, req.RoomID, req.UserID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrNotMember
	}

	if c.currentRoom() == req.RoomID && h.registry.Holds(req.RoomID, req.UserID, c) {
		// already joined on this connection
		return nil
	}
	if current := c.currentRoom(); current != "" && current != req.RoomID {
		h.leave(c)
	}
	c.setRoom(req.RoomID)

	if previous := h.registry.Register(req.RoomID, req.UserID, req.UserName, c); previous != nil {
		h.log.WithFields(logrus.Fields{"room_id": req.RoomID, "user_id": req.UserID}).Info("Superseding previous connection")
		previous.Close()
	}
	h.BroadcastExcept(req.RoomID, UserJoined{UserID: req.UserID, UserName: req.UserName}, req.UserID)
	h.log.WithFields(logrus.Fields{"room_id": req.RoomID, "user_id": req.UserID}).Info("User joined room channel")
	return nil
}

// leave detaches c from its room. Calling it again, or after c was
// superseded, has no further effect.
func (h *Hub) leave(c *Client) {
	roomID := c.setRoom("")
	if roomID == "" {
		return
	}
	if !h.registry.UnregisterHandle(roomID, c.userID, c) {
		return
	}
	h.BroadcastAll(roomID, UserLeft{UserID: c.userID})
	h.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": c.userID}).Info("User left room channel")
}
