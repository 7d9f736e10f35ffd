package relay

import (
	"log/slog"

	"github.com/anonchat/relay-service/internal/domain"
)

// Transport доставляет полезную нагрузку конкретному соединению.
// Реализуется ws-сервером; Send не должен блокироваться на медленном
// получателе — переполнение буфера считается ошибкой доставки.
type Transport interface {
	Send(connID string, msg *domain.Message) error
}

// Broadcaster рассылает сохранённое сообщение участникам комнаты.
type Broadcaster struct {
	rooms     *RoomRegistry
	transport Transport
}

func NewBroadcaster(rooms *RoomRegistry, transport Transport) *Broadcaster {
	return &Broadcaster{rooms: rooms, transport: transport}
}

// Deliver снимает снапшот участников и шлёт каждому независимо.
// Ошибка доставки одному получателю логируется и не трогает остальных;
// чистка мёртвого соединения остаётся за обычным путём disconnect,
// реестры отсюда не мутируются.
func (b *Broadcaster) Deliver(msg *domain.Message) {
	roomID := msg.RoomID()
	for _, c := range b.rooms.MembersOf(roomID) {
		if err := b.transport.Send(c.ID, msg); err != nil {
			slog.Warn("relay: delivery failed",
				"conn", c.ID, "room", roomID, "msg_id", msg.ID, "err", err)
		}
	}
}
