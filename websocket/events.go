package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CUknot/fairmind/models"
)

// Kind names one case of the real-time event union.
type Kind string

const (
	KindJoinRoom             Kind = "join_room"
	KindLeaveRoom            Kind = "leave_room"
	KindNewMessage           Kind = "new_message"
	KindUserJoined           Kind = "user_joined"
	KindUserLeft             Kind = "user_left"
	KindResolutionsGenerated Kind = "resolutions_generated"
	KindVoteCast             Kind = "vote_cast"
	KindRoomResolved         Kind = "room_resolved"
	KindError                Kind = "error"
)

// ErrUnknownEvent is returned by Decode for a type tag outside the union.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is implemented only by the payload types in this file, so the set of
// kinds is closed.
type Event interface {
	Kind() Kind
	event()
}

// JoinRoom is sent by a client to attach its connection to a room.
type JoinRoom struct {
	RoomID   string `json:"roomId"`
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
}

// LeaveRoom is sent by a client to detach from a room.
type LeaveRoom struct {
	RoomID string `json:"roomId"`
	UserID uint   `json:"userId"`
}

type NewMessage struct {
	Message models.Message `json:"message"`
}

type UserJoined struct {
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
}

type UserLeft struct {
	UserID uint `json:"userId"`
}

type ResolutionsGenerated struct {
	Resolutions []models.Resolution `json:"resolutions"`
}

type VoteCast struct {
	UserID       uint `json:"userId"`
	ResolutionID uint `json:"resolutionId"`
}

// RoomResolved is the terminal event of a room and carries the agreed option.
type RoomResolved struct {
	Resolution models.Resolution `json:"resolution"`
}

// Error reports a rejected client request on the channel.
type Error struct {
	Message string `json:"message"`
}

func (JoinRoom) Kind() Kind             { return KindJoinRoom }
func (LeaveRoom) Kind() Kind            { return KindLeaveRoom }
func (NewMessage) Kind() Kind           { return KindNewMessage }
func (UserJoined) Kind() Kind           { return KindUserJoined }
func (UserLeft) Kind() Kind             { return KindUserLeft }
func (ResolutionsGenerated) Kind() Kind { return KindResolutionsGenerated }
func (VoteCast) Kind() Kind             { return KindVoteCast }
func (RoomResolved) Kind() Kind         { return KindRoomResolved }
func (Error) Kind() Kind                { return KindError }

func (JoinRoom) event()             {}
func (LeaveRoom) event()            {}
func (NewMessage) event()           {}
func (UserJoined) event()           {}
func (UserLeft) event()             {}
func (ResolutionsGenerated) event() {}
func (VoteCast) event()             {}
func (RoomResolved) event()         {}
func (Error) event()                {}

type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps ev in the {"type", "payload"} envelope.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ev.Kind(), err)
	}
	return json.Marshal(envelope{Type: ev.Kind(), Payload: payload})
}

// Decode parses an envelope into its concrete event type.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var ev Event
	switch env.Type {
	case KindJoinRoom:
		ev = &JoinRoom{}
	case KindLeaveRoom:
		ev = &LeaveRoom{}
	case KindNewMessage:
		ev = &NewMessage{}
	case KindUserJoined:
		ev = &UserJoined{}
	case KindUserLeft:
		ev = &UserLeft{}
	case KindResolutionsGenerated:
		ev = &ResolutionsGenerated{}
	case KindVoteCast:
		ev = &VoteCast{}
	case KindRoomResolved:
		ev = &RoomResolved{}
	case KindError:
		ev = &Error{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return deref(ev), nil
}

// deref returns the value form so callers can type-switch on plain structs.
func deref(ev Event) Event {
	switch e := ev.(type) {
	case *JoinRoom:
		return *e
	case *LeaveRoom:
		return *e
	case *NewMessage:
		return *e
	case *UserJoined:
		return *e
	case *UserLeft:
		return *e
	case *ResolutionsGenerated:
		return *e
	case *VoteCast:
		return *e
	case *RoomResolved:
		return *e
	case *Error:
		return *e
	}
	return ev
}
