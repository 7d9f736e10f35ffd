package ws

import (
	"fmt"
	"sync"

	"github.com/anonchat/relay-service/internal/domain"
)

// ConnTable — транспортная таблица connID -> живой сокет. Реализует
// relay.Transport: Broadcaster адресует доставку по id соединения и не
// знает про websocket.
type ConnTable struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
}

func NewConnTable() *ConnTable {
	return &ConnTable{conns: make(map[string]*wsConn)}
}

func (t *ConnTable) add(c *wsConn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.id] = c
}

func (t *ConnTable) remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, connID)
}

// Send кладёт событие в буфер сокета, не блокируясь. Исчезнувшее между
// снапшотом и отправкой соединение или переполненный буфер — ошибка
// доставки; чисткой занимается путь disconnect, не вызывающий.
func (t *ConnTable) Send(connID string, msg *domain.Message) error {
	t.mu.RLock()
	c, ok := t.conns[connID]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: connection %s gone", domain.ErrDeliveryFailed, connID)
	}
	return c.enqueue(Event{
		Type: TypeNewMessage,
		Payload: MessagePayload{
			ID:        msg.ID,
			ChatID:    msg.ChatID,
			UserID:    msg.UserID,
			UserName:  msg.UserName,
			Message:   msg.Text,
			CreatedAt: msg.CreatedAt,
		},
	})
}
