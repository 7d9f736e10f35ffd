package relay_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anonchat/relay-service/internal/domain"
	"github.com/anonchat/relay-service/internal/memstore"
	"github.com/anonchat/relay-service/internal/relay"
)

// fakeTransport записывает доставки; отдельные получатели могут «падать».
type fakeTransport struct {
	mu   sync.Mutex
	sent map[string][]*domain.Message
	fail map[string]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent: make(map[string][]*domain.Message),
		fail: make(map[string]bool),
	}
}

func (t *fakeTransport) Send(connID string, msg *domain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fail[connID] {
		return domain.ErrDeliveryFailed
	}
	t.sent[connID] = append(t.sent[connID], msg)
	return nil
}

func (t *fakeTransport) received(connID string) []*domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sent[connID]
}

type fixture struct {
	conns     *relay.ConnectionRegistry
	rooms     *relay.RoomRegistry
	session   *relay.SessionController
	transport *fakeTransport
	ingress   *relay.Ingress
	store     *memstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conns := relay.NewConnectionRegistry()
	rooms := relay.NewRoomRegistry()
	store := memstore.New()
	transport := newFakeTransport()
	bcast := relay.NewBroadcaster(rooms, transport)
	return &fixture{
		conns:     conns,
		rooms:     rooms,
		session:   relay.NewSessionController(conns, rooms),
		transport: transport,
		ingress:   relay.NewIngress(store, bcast),
		store:     store,
	}
}

func (f *fixture) chat(t *testing.T) string {
	t.Helper()

	chat := &domain.Chat{UserID: "creator", Theme: "Общение"}
	require.NoError(t, f.store.CreateChat(context.Background(), chat))
	return domain.RoomID(chat.ID)
}

func TestConnectionRegistry_DuplicateRegister(t *testing.T) {
	reg := relay.NewConnectionRegistry()

	_, err := reg.Register("c1")
	require.NoError(t, err)

	_, err = reg.Register("c1")
	require.ErrorIs(t, err, domain.ErrDuplicateConnection)

	// Прежнее соединение не перезаписано.
	c, ok := reg.Lookup("c1")
	require.True(t, ok)
	require.Equal(t, "c1", c.ID)
}

func TestConnectionRegistry_UnregisterUnknown(t *testing.T) {
	reg := relay.NewConnectionRegistry()

	_, _, err := reg.Unregister("ghost")
	require.ErrorIs(t, err, domain.ErrUnknownConnection)
}

func TestRoomRegistry_JoinIdempotent(t *testing.T) {
	rooms := relay.NewRoomRegistry()
	conns := relay.NewConnectionRegistry()
	c, err := conns.Register("c1")
	require.NoError(t, err)

	rooms.Join("chat_1", c)
	rooms.Join("chat_1", c)
	rooms.Join("chat_1", c)

	members := rooms.MembersOf("chat_1")
	require.Len(t, members, 1)
	require.Same(t, c, members[0])
}

func TestRoomRegistry_LeaveNotMemberIsNoop(t *testing.T) {
	rooms := relay.NewRoomRegistry()
	conns := relay.NewConnectionRegistry()
	a, _ := conns.Register("a")
	b, _ := conns.Register("b")

	rooms.Join("chat_1", a)
	rooms.Leave("chat_1", b)
	rooms.Leave("chat_2", b)

	require.Len(t, rooms.MembersOf("chat_1"), 1)
	require.Empty(t, rooms.MembersOf("chat_2"))
}

func TestRoomRegistry_EmptyRoomPruned(t *testing.T) {
	rooms := relay.NewRoomRegistry()
	conns := relay.NewConnectionRegistry()
	c, _ := conns.Register("c1")

	rooms.Join("chat_1", c)
	require.Equal(t, 1, rooms.Len())

	rooms.Leave("chat_1", c)
	require.Equal(t, 0, rooms.Len())
	require.Empty(t, rooms.MembersOf("chat_1"))

	// Комната пересоздаётся на следующем join.
	rooms.Join("chat_1", c)
	require.Len(t, rooms.MembersOf("chat_1"), 1)
}

func TestSession_DisconnectRemovesFromAllRooms(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.OnConnect("c1")
	require.NoError(t, err)
	f.session.OnJoin("c1", "chat_7", "u1")
	f.session.OnJoin("c1", "chat_9", "u1")

	f.session.OnDisconnect("c1")

	require.Empty(t, f.rooms.MembersOf("chat_7"))
	require.Empty(t, f.rooms.MembersOf("chat_9"))
	_, ok := f.conns.Lookup("c1")
	require.False(t, ok)
}

func TestSession_EventsAfterDisconnectDropped(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.OnConnect("c1")
	require.NoError(t, err)
	f.session.OnDisconnect("c1")

	// join/leave/повторный disconnect для умершего соединения — no-op.
	f.session.OnJoin("c1", "chat_7", "u1")
	f.session.OnLeave("c1", "chat_7", "u1")
	f.session.OnDisconnect("c1")

	require.Empty(t, f.rooms.MembersOf("chat_7"))
	require.Equal(t, 0, f.conns.Len())
}

func TestSession_LeaveKeepsOtherRooms(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.OnConnect("c1")
	require.NoError(t, err)
	f.session.OnJoin("c1", "chat_7", "u1")
	f.session.OnJoin("c1", "chat_9", "u1")
	f.session.OnLeave("c1", "chat_7", "u1")

	require.Empty(t, f.rooms.MembersOf("chat_7"))
	require.Len(t, f.rooms.MembersOf("chat_9"), 1)

	c, ok := f.conns.Lookup("c1")
	require.True(t, ok)
	require.Equal(t, []string{"chat_9"}, c.Rooms())
}

func TestIngress_FanOutToRoomMembersOnly(t *testing.T) {
	f := newFixture(t)
	roomID := f.chat(t)

	for _, id := range []string{"a", "b", "c", "outsider"} {
		_, err := f.session.OnConnect(id)
		require.NoError(t, err)
	}
	f.session.OnJoin("a", roomID, "u1")
	f.session.OnJoin("b", roomID, "u2")
	f.session.OnJoin("c", roomID, "u3")
	f.session.OnJoin("outsider", "chat_999", "u4")

	msg, err := f.ingress.Submit(context.Background(), roomID, "u1", "Alice", "hi")
	require.NoError(t, err)
	require.NotZero(t, msg.ID)
	require.False(t, msg.CreatedAt.IsZero())

	for _, id := range []string{"a", "b", "c"} {
		got := f.transport.received(id)
		require.Len(t, got, 1, "conn %s", id)
		require.Equal(t, msg.ID, got[0].ID)
		require.Equal(t, "hi", got[0].Text)
	}
	require.Empty(t, f.transport.received("outsider"))
}

func TestIngress_DeliveryFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	roomID := f.chat(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := f.session.OnConnect(id)
		require.NoError(t, err)
		f.session.OnJoin(id, roomID, "u-"+id)
	}
	f.transport.fail["b"] = true

	msg, err := f.ingress.Submit(context.Background(), roomID, "u1", "Alice", "hi")
	require.NoError(t, err, "сбой доставки не должен ронять отправку")
	require.NotZero(t, msg.ID)

	require.Len(t, f.transport.received("a"), 1)
	require.Len(t, f.transport.received("c"), 1)
	require.Empty(t, f.transport.received("b"))

	// Сбой доставки не выгоняет соединение из комнаты: чистка — дело disconnect.
	require.Len(t, f.rooms.MembersOf(roomID), 3)
}

func TestIngress_RejectsInvalidSubmissions(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name               string
		room, sender, text string
	}{
		{"empty room", "", "u1", "hi"},
		{"empty sender", "chat_1", "", "hi"},
		{"empty body", "chat_1", "u1", "   "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ingress.Submit(context.Background(), tc.room, tc.sender, "Alice", tc.text)
			require.ErrorIs(t, err, domain.ErrInvalidMessage)
		})
	}
}

type unavailableStore struct{}

func (unavailableStore) Append(context.Context, string, string, string, string) (*domain.Message, error) {
	return nil, domain.ErrStoreUnavailable
}

func (unavailableStore) ListByRoom(context.Context, string) ([]domain.Message, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestIngress_NoBroadcastWithoutPersist(t *testing.T) {
	conns := relay.NewConnectionRegistry()
	rooms := relay.NewRoomRegistry()
	session := relay.NewSessionController(conns, rooms)
	transport := newFakeTransport()
	ingress := relay.NewIngress(unavailableStore{}, relay.NewBroadcaster(rooms, transport))

	_, err := session.OnConnect("c1")
	require.NoError(t, err)
	session.OnJoin("c1", "chat_1", "u1")

	_, err = ingress.Submit(context.Background(), "chat_1", "u1", "Alice", "hi")
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// Несохранённое сообщение никому не доставляется.
	require.Empty(t, transport.received("c1"))
}

func TestScenario_TwoClientsLiveChat(t *testing.T) {
	f := newFixture(t)
	roomID := f.chat(t)

	_, err := f.session.OnConnect("c1")
	require.NoError(t, err)
	_, err = f.session.OnConnect("c2")
	require.NoError(t, err)
	f.session.OnJoin("c1", roomID, "u1")
	f.session.OnJoin("c2", roomID, "u2")

	_, err = f.ingress.Submit(context.Background(), roomID, "u1", "Alice", "hi")
	require.NoError(t, err)

	for _, id := range []string{"c1", "c2"} {
		got := f.transport.received(id)
		require.Len(t, got, 1)
		require.Equal(t, "hi", got[0].Text)
		require.Equal(t, "u1", got[0].UserID)
		require.Equal(t, "Alice", got[0].UserName)
		require.NotZero(t, got[0].ID)
		require.False(t, got[0].CreatedAt.IsZero())
	}

	f.session.OnDisconnect("c2")

	_, err = f.ingress.Submit(context.Background(), roomID, "u1", "Alice", "bye")
	require.NoError(t, err)

	require.Len(t, f.transport.received("c1"), 2)
	require.Len(t, f.transport.received("c2"), 1)

	// История содержит оба сообщения в порядке записи.
	history, err := f.store.ListByRoom(context.Background(), roomID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hi", history[0].Text)
	require.Equal(t, "bye", history[1].Text)
}

func TestSession_ConcurrentJoinLeaveDisconnect(t *testing.T) {
	f := newFixture(t)

	const conns = 32
	var wg sync.WaitGroup
	for i := 0; i < conns; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "c" + string(rune('A'+n%26)) + string(rune('a'+n/26))
			if _, err := f.session.OnConnect(id); err != nil {
				return
			}
			f.session.OnJoin(id, "chat_7", "u")
			f.session.OnJoin(id, "chat_9", "u")
			f.session.OnLeave(id, "chat_7", "u")
			f.session.OnDisconnect(id)
			f.session.OnDisconnect(id) // двойной disconnect переживается молча
		}(i)
	}
	wg.Wait()

	require.Empty(t, f.rooms.MembersOf("chat_7"))
	require.Empty(t, f.rooms.MembersOf("chat_9"))
	require.Equal(t, 0, f.conns.Len())
	require.Equal(t, 0, f.rooms.Len())
}
