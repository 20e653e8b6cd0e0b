package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CUknot/fairmind/ai"
	"github.com/CUknot/fairmind/models"
	"github.com/CUknot/fairmind/quota"
	"github.com/CUknot/fairmind/store"
	"github.com/CUknot/fairmind/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sent struct {
	roomID string
	event  websocket.Event
	except uint
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastAll(roomID string, ev websocket.Event) int {
	return m.Called(roomID, ev).Int(0)
}

func (m *mockBroadcaster) BroadcastExcept(roomID string, ev websocket.Event, userID uint) int {
	return m.Called(roomID, ev, userID).Int(0)
}

// sent lists the broadcasts in call order.
func (m *mockBroadcaster) sent() []sent {
	out := make([]sent, 0, len(m.Calls))
	for _, c := range m.Calls {
		s := sent{roomID: c.Arguments.String(0), event: c.Arguments.Get(1).(websocket.Event)}
		if c.Method == "BroadcastExcept" {
			s.except = c.Arguments.Get(2).(uint)
		}
		out = append(out, s)
	}
	return out
}

func (m *mockBroadcaster) kinds() []websocket.Kind {
	kinds := make([]websocket.Kind, 0, len(m.Calls))
	for _, s := range m.sent() {
		kinds = append(kinds, s.event.Kind())
	}
	return kinds
}

func (m *mockBroadcaster) count(kind websocket.Kind) int {
	n := 0
	for _, k := range m.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, utterances []string, temperature float64) ([]ai.Candidate, error) {
	args := m.Called(ctx, utterances, temperature)
	candidates, _ := args.Get(0).([]ai.Candidate)
	return candidates, args.Error(1)
}

type mockTranscriber struct {
	mock.Mock
}

func (m *mockTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	args := m.Called(ctx, filename, audio)
	return args.String(0), args.Error(1)
}

func goodBatch() []ai.Candidate {
	return []ai.Candidate{
		{Title: "Split the chores", Description: "Alternate weeks.", Confidence: 50},
		{Title: "Shared calendar", Description: "Plan together on Sundays.", Confidence: 80, Recommended: true},
		{Title: "Hire help", Description: "Split the cost of a cleaner.", Confidence: 60},
	}
}

type fixture struct {
	svc    *Service
	store  *store.Store
	quota  *quota.Memory
	gen    *mockGenerator
	events *mockBroadcaster

	// generates is the catch-all generator expectation; tests that script
	// the generator unset it first.
	generates *mock.Call

	alice, bob, carol uint
}

func newFixture(t *testing.T, dailyLimit int) *fixture {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	f := &fixture{
		store:  st,
		quota:  quota.NewMemory(dailyLimit),
		gen:    new(mockGenerator),
		events: new(mockBroadcaster),
	}
	f.generates = f.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(goodBatch(), nil).Maybe()
	f.events.On("BroadcastAll", mock.Anything, mock.Anything).Return(2).Maybe()
	f.events.On("BroadcastExcept", mock.Anything, mock.Anything, mock.Anything).Return(1).Maybe()

	transcriber := new(mockTranscriber)
	transcriber.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).Return("  hello there ", nil).Maybe()

	codes := []string{"AB12CD", "ZX98YW", "QQ11PP"}
	next := 0
	f.svc = New(Config{
		Store:       f.store,
		Quota:       f.quota,
		Generator:   f.gen,
		Transcriber: transcriber,
		Broadcaster: f.events,
		AITimeout:   time.Second,
		NewCode: func(context.Context) (string, error) {
			code := codes[next%len(codes)]
			next++
			return code, nil
		},
	})

	ctx := context.Background()
	for _, u := range []struct {
		name string
		dst  *uint
	}{{"Alice", &f.alice}, {"Bob", &f.bob}, {"Carol", &f.carol}} {
		user := &models.User{Name: u.name, Email: u.name + "@example.com"}
		require.NoError(t, f.store.Users.Create(ctx, user))
		*u.dst = user.ID
	}
	return f
}

// script drops the catch-all generator answer so the test's own
// expectations apply.
func (f *fixture) script() {
	f.generates.Unset()
}

// pairedRoom returns a room with alice and bob as participants.
func (f *fixture) pairedRoom(t *testing.T) *models.Room {
	t.Helper()
	ctx := context.Background()
	room, err := f.svc.CreateRoom(ctx, f.alice, "Chores")
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, f.bob, room.Code)
	require.NoError(t, err)
	return room
}

func (f *fixture) post(t *testing.T, roomID string, userID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.svc.PostMessage(context.Background(), roomID, userID, MessageInput{Content: fmt.Sprintf("point %d from %d", i, userID)})
		require.NoError(t, err)
	}
}

func (f *fixture) remaining(t *testing.T, userID uint) int {
	t.Helper()
	n, err := f.quota.Remaining(context.Background(), userID)
	require.NoError(t, err)
	return n
}

func TestEndToEnd_TwoPartiesConverge(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	room, err := f.svc.CreateRoom(ctx, f.alice, "Chores")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", room.Code)
	assert.Equal(t, models.RoomActive, room.Status)

	joined, err := f.svc.JoinRoom(ctx, f.bob, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, []uint{f.alice, f.bob}, joined.Participants())

	f.post(t, room.ID, f.alice, 2)
	f.post(t, room.ID, f.bob, 2)

	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	require.Len(t, batch, models.BatchSize)
	stored, err := f.svc.ListResolutions(ctx, room.ID, f.bob)
	require.NoError(t, err)
	assert.Len(t, stored, models.BatchSize)
	assert.Equal(t, 1, f.events.count(websocket.KindResolutionsGenerated))

	second := batch[1].ID
	_, err = f.svc.CastVote(ctx, room.ID, f.alice, second)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, second)
	require.NoError(t, err)

	resolved, err := f.svc.GetRoom(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.RoomResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	assert.Equal(t, []websocket.Kind{
		websocket.KindNewMessage, websocket.KindNewMessage, websocket.KindNewMessage, websocket.KindNewMessage,
		websocket.KindResolutionsGenerated,
		websocket.KindVoteCast, websocket.KindVoteCast,
		websocket.KindRoomResolved,
	}, f.events.kinds())
	last := f.events.sent()[len(f.events.sent())-1].event.(websocket.RoomResolved)
	assert.Equal(t, second, last.Resolution.ID)

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[2].ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, 1, f.events.count(websocket.KindRoomResolved))
}

func TestJoinRoom(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room, err := f.svc.CreateRoom(ctx, f.alice, "")
	require.NoError(t, err)

	t.Run("code is case insensitive", func(t *testing.T) {
		joined, err := f.svc.JoinRoom(ctx, f.bob, " ab12cd ")
		require.NoError(t, err)
		assert.True(t, joined.IsMember(f.bob))
	})

	t.Run("rejoin is a no-op", func(t *testing.T) {
		joined, err := f.svc.JoinRoom(ctx, f.bob, room.Code)
		require.NoError(t, err)
		assert.Equal(t, []uint{f.alice, f.bob}, joined.Participants())
	})

	t.Run("third identity is rejected", func(t *testing.T) {
		_, err := f.svc.JoinRoom(ctx, f.carol, room.Code)
		assert.ErrorIs(t, err, ErrRoomFull)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.svc.JoinRoom(ctx, f.carol, "NOPE00")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestCreateRoom_RetriesCollidingCodes(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	first, err := f.svc.CreateRoom(ctx, f.alice, "one")
	require.NoError(t, err)

	codes := []string{first.Code, first.Code, "FRESH1"}
	calls := 0
	f.svc.newCode = func(context.Context) (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}
	second, err := f.svc.CreateRoom(ctx, f.bob, "two")
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", second.Code)
	assert.Equal(t, 3, calls)
}

func TestGenerateUniqueCode(t *testing.T) {
	f := newFixture(t, 5)
	svc := New(Config{
		Store:       f.store,
		Quota:       f.quota,
		Generator:   f.gen,
		Transcriber: new(mockTranscriber),
		Broadcaster: f.events,
	})

	room, err := svc.CreateRoom(context.Background(), f.alice, "")
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, room.Code)
}

func TestGuard(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	guard := f.svc.Guard()

	for _, id := range []uint{f.alice, f.bob} {
		ok, err := guard.IsMember(ctx, room.ID, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := guard.IsMember(ctx, room.ID, f.carol)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = guard.IsMember(ctx, "missing", f.alice)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = guard.Authorize(ctx, room.ID, f.carol)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = guard.Authorize(ctx, "missing", f.alice)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestThirdIdentityIsDeniedEverywhere(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	before := len(f.events.kinds())

	_, err = f.svc.PostMessage(ctx, room.ID, f.carol, MessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.ListMessages(ctx, room.ID, f.carol)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.RequestResolutions(ctx, room.ID, f.carol)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.CastVote(ctx, room.ID, f.carol, batch[0].ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.ListVotes(ctx, room.ID, f.carol)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.Transcribe(ctx, room.ID, f.carol, "a.webm", []byte("audio"))
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Len(t, f.events.kinds(), before)
	assert.Equal(t, 5, f.remaining(t, f.carol))
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)

	msg, err := f.svc.PostMessage(ctx, room.ID, f.bob, MessageInput{Content: "  it was my turn  "})
	require.NoError(t, err)
	assert.Equal(t, "it was my turn", msg.Content)
	assert.Equal(t, "Bob", msg.UserName)

	require.Len(t, f.events.sent(), 1)
	ev := f.events.sent()[0]
	assert.Equal(t, room.ID, ev.roomID)
	assert.Zero(t, ev.except)
	assert.Equal(t, msg.ID, ev.event.(websocket.NewMessage).Message.ID)

	voice, err := f.svc.PostMessage(ctx, room.ID, f.alice, MessageInput{IsVoice: true, Transcript: "spoken words", AudioURL: "blob:1"})
	require.NoError(t, err)
	assert.Equal(t, "spoken words", voice.Text())

	listed, err := f.svc.ListMessages(ctx, room.ID, f.alice)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, msg.ID, listed[0].ID)
}

func TestPostMessage_Invalid(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)

	for name, in := range map[string]MessageInput{
		"empty":              {Content: "   "},
		"text with audio":    {Content: "hi", AudioURL: "blob:1"},
		"too long":           {Content: strings.Repeat("a", MaxMessageLength+1)},
		"voice without text": {IsVoice: true, AudioURL: "blob:1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.PostMessage(ctx, room.ID, f.alice, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.events.Calls)
}

func TestPostMessage_ArchivedRoom(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	archive(t, f, room.ID)

	_, err := f.svc.PostMessage(ctx, room.ID, f.alice, MessageInput{Content: "hello"})
	assert.ErrorIs(t, err, ErrRoomNotActive)
}

func archive(t *testing.T, f *fixture, roomID string) {
	t.Helper()
	ctx := context.Background()
	room, err := f.store.Rooms.FindByID(ctx, roomID)
	require.NoError(t, err)
	room.Status = models.RoomArchived
	require.NoError(t, f.store.Rooms.Update(ctx, room))
}

func TestRequestResolutions_NeedsFourMessages(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 2)
	f.post(t, room.ID, f.bob, 1)

	_, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	assert.ErrorIs(t, err, ErrInsufficientContext)
	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 5, f.remaining(t, f.alice), "quota unit is refunded")

	f.post(t, room.ID, f.bob, 1)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Len(t, batch, 3)
	assert.Equal(t, 4, f.remaining(t, f.alice))
	f.gen.AssertCalled(t, "Generate", mock.Anything, mock.MatchedBy(func(u []string) bool { return len(u) == 4 }), firstTemperature)
}

func TestRequestResolutions_QuotaCheckedBeforeContext(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)

	_, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	_, err = f.svc.RequestResolutions(ctx, room.ID, f.alice)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	other, err := f.svc.CreateRoom(ctx, f.alice, "empty")
	require.NoError(t, err)
	_, err = f.svc.RequestResolutions(ctx, other.ID, f.alice)
	assert.ErrorIs(t, err, ErrQuotaExceeded, "quota is checked before message count")

	// bob has his own allowance
	_, err = f.svc.RequestResolutions(ctx, room.ID, f.bob)
	assert.NoError(t, err)
	f.gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRequestResolutions_RetryThenSucceed(t *testing.T) {
	f := newFixture(t, 5)
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	f.script()
	f.gen.On("Generate", mock.Anything, mock.Anything, 0.7).Return(goodBatch()[:2], nil).Once()
	f.gen.On("Generate", mock.Anything, mock.Anything, 0.3).Return(goodBatch(), nil).Once()

	batch, err := f.svc.RequestResolutions(context.Background(), room.ID, f.alice)
	require.NoError(t, err)
	f.gen.AssertExpectations(t)
	assert.Equal(t, "Split the chores", batch[0].Title)
	assert.True(t, batch[1].Recommended)
}

func TestRequestResolutions_FallsBack(t *testing.T) {
	f := newFixture(t, 5)
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	f.script()
	f.gen.On("Generate", mock.Anything, mock.Anything, 0.7).Return(nil, errors.New("connection refused")).Once()
	f.gen.On("Generate", mock.Anything, mock.Anything, 0.3).Return(nil, errors.New("connection refused")).Once()

	batch, err := f.svc.RequestResolutions(context.Background(), room.ID, f.alice)
	require.NoError(t, err)
	f.gen.AssertExpectations(t)

	fallback := ai.Fallback()
	require.Len(t, batch, len(fallback))
	recommended := 0
	for i, res := range batch {
		assert.Equal(t, fallback[i].Title, res.Title)
		assert.Equal(t, 1, res.Batch)
		if res.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
	assert.Equal(t, 4, f.remaining(t, f.alice), "fallback keeps the quota unit")
}

func TestRequestResolutions_NormalizesRecommended(t *testing.T) {
	f := newFixture(t, 5)
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	all := goodBatch()
	for i := range all {
		all[i].Recommended = true
	}
	f.script()
	f.gen.On("Generate", mock.Anything, mock.Anything, firstTemperature).Return(all, nil).Once()

	batch, err := f.svc.RequestResolutions(context.Background(), room.ID, f.alice)
	require.NoError(t, err)
	assert.False(t, batch[0].Recommended)
	assert.True(t, batch[1].Recommended)
	assert.False(t, batch[2].Recommended)
}

func TestRequestResolutions_BatchesAccumulate(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)

	_, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	second, err := f.svc.RequestResolutions(ctx, room.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, 2, second[0].Batch)

	all, err := f.svc.ListResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestRequestResolutions_OneGenerationPerRoom(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)

	started := make(chan struct{})
	release := make(chan struct{})
	f.script()
	f.gen.On("Generate", mock.Anything, mock.Anything, firstTemperature).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(goodBatch(), nil).
		Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
		done <- err
	}()
	<-started

	_, err := f.svc.RequestResolutions(ctx, room.ID, f.bob)
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Equal(t, 5, f.remaining(t, f.bob))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.events.count(websocket.KindResolutionsGenerated))
}

func TestRequestResolutions_ResolvedRoom(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[0].ID)
	require.NoError(t, err)

	_, err = f.svc.RequestResolutions(ctx, room.ID, f.alice)
	assert.ErrorIs(t, err, ErrRoomNotActive)
	assert.Equal(t, 4, f.remaining(t, f.alice))
}

func TestRequestResolutions_RoomResolvedDuringGeneration(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)

	started := make(chan struct{})
	release := make(chan struct{})
	f.script()
	f.gen.On("Generate", mock.Anything, mock.Anything, firstTemperature).Return(goodBatch(), nil).Once()
	f.gen.On("Generate", mock.Anything, mock.Anything, firstTemperature).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(goodBatch(), nil).
		Once()

	first, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.RequestResolutions(ctx, room.ID, f.bob)
		done <- err
	}()
	<-started

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, first[1].ID)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, first[1].ID)
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, ErrRoomNotActive)
	assert.Equal(t, 5, f.remaining(t, f.bob), "discarded batch is refunded")

	stored, err := f.svc.ListResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Len(t, stored, models.BatchSize)
	assert.Equal(t, 1, f.events.count(websocket.KindResolutionsGenerated))
	kinds := f.events.kinds()
	assert.Equal(t, websocket.KindRoomResolved, kinds[len(kinds)-1])
	f.gen.AssertExpectations(t)
}

type failingRoomUpdates struct {
	store.RoomRepository
}

func (failingRoomUpdates) Update(context.Context, *models.Room) error {
	return errors.New("disk full")
}

func TestCastVote_ConvergenceFailureKeepsVote(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	f.store.Rooms = failingRoomUpdates{RoomRepository: f.store.Rooms}

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	require.NoError(t, err)
	vote, err := f.svc.CastVote(ctx, room.ID, f.bob, batch[0].ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, batch[0].ID, vote.ResolutionID)

	votes, err := f.svc.ListVotes(ctx, room.ID, f.bob)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
	got, err := f.svc.GetRoom(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.RoomActive, got.Status)
	assert.Zero(t, f.events.count(websocket.KindRoomResolved))
	assert.Equal(t, 2, f.events.count(websocket.KindVoteCast))

	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[1].ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestRandomCode_RejectsBiasedBytes(t *testing.T) {
	// 252..255 would wrap onto the first four symbols.
	src := bytes.NewReader([]byte{252, 253, 254, 255, 0, 1, 35, 36, 71, 251, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9})
	code, err := randomCode(src)
	require.NoError(t, err)
	assert.Equal(t, "01Z0ZZ", code)

	_, err = randomCode(bytes.NewReader([]byte{255, 255, 255}))
	assert.Error(t, err)

	for i := 0; i < 200; i++ {
		code, err := randomCode(rand.Reader)
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
	}
}

func TestCastVote_DifferentChoicesStayActive(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[2].ID)
	require.NoError(t, err)

	got, err := f.svc.GetRoom(ctx, room.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, models.RoomActive, got.Status)
	assert.Nil(t, got.ResolvedAt)
	assert.Zero(t, f.events.count(websocket.KindRoomResolved))
	assert.Equal(t, 2, f.events.count(websocket.KindVoteCast))

	votes, err := f.svc.ListVotes(ctx, room.ID, f.bob)
	require.NoError(t, err)
	assert.Len(t, votes, 2)
}

func TestCastVote_Preconditions(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	other, err := f.svc.CreateRoom(ctx, f.alice, "other")
	require.NoError(t, err)
	f.post(t, other.ID, f.alice, 4)
	foreign, err := f.svc.RequestResolutions(ctx, other.ID, f.alice)
	require.NoError(t, err)

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, foreign[0].ID)
	assert.ErrorIs(t, err, ErrResolutionNotFound)
	_, err = f.svc.CastVote(ctx, room.ID, f.alice, 9999)
	assert.ErrorIs(t, err, ErrResolutionNotFound)

	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[1].ID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	archive(t, f, room.ID)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[0].ID)
	assert.ErrorIs(t, err, ErrRoomNotActive)
}

func TestCastVote_ConcurrentMatchingVotesResolveOnce(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.alice, 4)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []uint{f.alice, f.bob} {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.svc.CastVote(ctx, room.ID, userID, batch[1].ID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, f.events.count(websocket.KindRoomResolved))
	kinds := f.events.kinds()
	assert.Equal(t, websocket.KindRoomResolved, kinds[len(kinds)-1])
}

func TestDeleteRoom(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)
	f.post(t, room.ID, f.bob, 1)

	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, room.ID, f.bob), ErrAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, room.ID, f.carol), ErrAccessDenied)
	require.NoError(t, f.svc.DeleteRoom(ctx, room.ID, f.alice))

	_, err := f.svc.GetRoom(ctx, room.ID, f.alice)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, f.svc.DeleteRoom(ctx, room.ID, f.alice), ErrRoomNotFound)
}

func TestTranscribe(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	room := f.pairedRoom(t)

	text, err := f.svc.Transcribe(ctx, room.ID, f.bob, "clip.webm", []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	_, err = f.svc.Transcribe(ctx, room.ID, f.bob, "clip.webm", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	failing := new(mockTranscriber)
	failing.On("Transcribe", mock.Anything, "clip.webm", []byte("audio")).
		Return("", &ai.ProviderError{StatusCode: 500, Message: "boom"}).
		Once()
	f.svc.transcriber = failing
	_, err = f.svc.Transcribe(ctx, room.ID, f.bob, "clip.webm", []byte("audio"))
	assert.ErrorIs(t, err, ErrTranscriptionFailed)
	failing.AssertExpectations(t)
}

func TestStats(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	room := f.pairedRoom(t)
	_, err := f.svc.CreateRoom(ctx, f.alice, "second")
	require.NoError(t, err)
	f.post(t, room.ID, f.alice, 3)
	f.post(t, room.ID, f.bob, 1)
	batch, err := f.svc.RequestResolutions(ctx, room.ID, f.alice)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.alice, batch[0].ID)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, room.ID, f.bob, batch[0].ID)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, f.alice)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		RoomsTotal:           2,
		RoomsActive:          1,
		RoomsResolved:        1,
		MessagesSent:         3,
		VotesCast:            1,
		ResolutionsRemaining: 2,
		DailyLimit:           3,
	}, stats)
}
