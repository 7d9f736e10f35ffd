package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonchat/relay-service/internal/domain"
)

const maxMessageLen = 4000

// MessageStore — внешнее долговременное хранилище сообщений. Append обязан
// назначить id и created_at до возврата; до этого сообщение не существует.
type MessageStore interface {
	Append(ctx context.Context, roomID, senderID, senderName, body string) (*domain.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error)
}

// Ingress принимает отправку сообщения: валидация, ровно одна попытка записи,
// затем рассылка. Рассылка после возврата из Append — сообщение никогда не
// уходит получателям раньше, чем хранилище назначило ему id.
type Ingress struct {
	store MessageStore
	bcast *Broadcaster
}

func NewIngress(store MessageStore, bcast *Broadcaster) *Ingress {
	return &Ingress{store: store, bcast: bcast}
}

// Submit возвращает сохранённое сообщение. Исход рассылки на результат не
// влияет: клиент получает успех, как только запись состоялась.
func (i *Ingress) Submit(ctx context.Context, roomID, senderID, senderName, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	switch {
	case strings.TrimSpace(roomID) == "":
		return nil, fmt.Errorf("%w: empty room id", domain.ErrInvalidMessage)
	case strings.TrimSpace(senderID) == "":
		return nil, fmt.Errorf("%w: empty sender id", domain.ErrInvalidMessage)
	case body == "":
		return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidMessage)
	case len(body) > maxMessageLen:
		return nil, fmt.Errorf("%w: body too long", domain.ErrInvalidMessage)
	}

	msg, err := i.store.Append(ctx, roomID, senderID, senderName, body)
	if err != nil {
		return nil, err
	}

	i.bcast.Deliver(msg)
	return msg, nil
}
