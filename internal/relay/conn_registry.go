package relay

import (
	"sync"

	"github.com/anonchat/relay-service/internal/domain"
)

// Connection — одно живое клиентское соединение и множество его комнат.
// Создаётся при подключении транспорта, уничтожается при отключении,
// повторно не используется.
type Connection struct {
	ID string

	mu    sync.Mutex
	rooms map[string]struct{}
}

func newConnection(id string) *Connection {
	return &Connection{
		ID:    id,
		rooms: make(map[string]struct{}),
	}
}

func (c *Connection) addRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

func (c *Connection) removeRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

// Rooms возвращает копию множества комнат соединения.
func (c *Connection) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	return out
}

// takeRooms атомарно забирает и очищает множество комнат; используется
// при отключении, чтобы никакой параллельный join не оставил хвост.
func (c *Connection) takeRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	c.rooms = make(map[string]struct{})
	return out
}

// ConnectionRegistry отслеживает живые соединения по их id.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]*Connection)}
}

// Register заводит соединение. Повторная регистрация того же id — ошибка,
// молча перезаписывать нельзя: потерялись бы комнаты прежнего соединения.
func (r *ConnectionRegistry) Register(connID string) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return nil, domain.ErrDuplicateConnection
	}
	c := newConnection(connID)
	r.conns[connID] = c
	return c, nil
}

// Unregister удаляет соединение и возвращает комнаты, в которых оно состояло,
// чтобы вызывающий выписал его из каждой.
func (r *ConnectionRegistry) Unregister(connID string) (*Connection, []string, error) {
	r.mu.Lock()
	c, ok := r.conns[connID]
	if ok {
		delete(r.conns, connID)
	}
	r.mu.Unlock()

	if !ok {
		return nil, nil, domain.ErrUnknownConnection
	}
	return c, c.takeRooms(), nil
}

func (r *ConnectionRegistry) Lookup(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	return c, ok
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
