package relay

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/anonchat/relay-service/internal/domain"
)

// SessionController — машина состояний соединения: Connected -> Disconnected.
// Все переходы сериализованы одним мьютексом, поэтому после каждого события
// оба реестра взаимно согласованы: соединение числится в комнате тогда и
// только тогда, когда комната числится за соединением. Под мьютексом нет
// никакого I/O — только операции над картами.
type SessionController struct {
	mu    sync.Mutex
	conns *ConnectionRegistry
	rooms *RoomRegistry
}

func NewSessionController(conns *ConnectionRegistry, rooms *RoomRegistry) *SessionController {
	return &SessionController{conns: conns, rooms: rooms}
}

// OnConnect регистрирует новое соединение.
func (s *SessionController) OnConnect(connID string) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.conns.Register(connID)
	if err != nil {
		slog.Warn("relay: connect dropped", "conn", connID, "err", err)
		return nil, err
	}
	slog.Debug("relay: connected", "conn", connID)
	return c, nil
}

// OnJoin вводит соединение в комнату. Событие для уже отключённого
// соединения логируется и отбрасывается.
func (s *SessionController) OnJoin(connID, roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns.Lookup(connID)
	if !ok {
		slog.Warn("relay: join after disconnect", "conn", connID, "room", roomID, "user", userID)
		return
	}
	s.rooms.Join(roomID, c)
	c.addRoom(roomID)
	slog.Debug("relay: joined", "conn", connID, "room", roomID, "user", userID)
}

// OnLeave симметричен OnJoin; выход из не-своей комнаты — no-op.
func (s *SessionController) OnLeave(connID, roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns.Lookup(connID)
	if !ok {
		slog.Warn("relay: leave after disconnect", "conn", connID, "room", roomID, "user", userID)
		return
	}
	s.rooms.Leave(roomID, c)
	c.removeRoom(roomID)
	slog.Debug("relay: left", "conn", connID, "room", roomID, "user", userID)
}

// OnDisconnect выписывает соединение из всех его комнат и удаляет его из
// реестра. Повторный disconnect — no-op. После возврата ни одна комната не
// хранит ссылку на отключённое соединение.
func (s *SessionController) OnDisconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, rooms, err := s.conns.Unregister(connID)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownConnection) {
			slog.Warn("relay: disconnect failed", "conn", connID, "err", err)
		}
		return
	}
	for _, roomID := range rooms {
		s.rooms.Leave(roomID, c)
	}
	slog.Debug("relay: disconnected", "conn", connID, "rooms", len(rooms))
}
