package relay

import "sync"

// RoomRegistry — комнаты и их участники. Комната без участников не хранится:
// пустой ключ удаляется и пересоздаётся при следующем join.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Connection]struct{}
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[*Connection]struct{})}
}

// Join идемпотентен: повторный вход в ту же комнату — no-op.
func (r *RoomRegistry) Join(roomID string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Connection]struct{})
		r.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

// Leave идемпотентен: выход из комнаты, где соединения нет, — no-op.
func (r *RoomRegistry) Leave(roomID string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// MembersOf возвращает снапшот участников комнаты. Всегда копия:
// рассылка работает по снапшоту и не держит блокировку реестра.
func (r *RoomRegistry) MembersOf(roomID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	out := make([]*Connection, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
