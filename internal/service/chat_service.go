package service

import (
	"context"
	"fmt"

	"github.com/anonchat/relay-service/internal/domain"
	"github.com/anonchat/relay-service/internal/relay"
)

// ChatStore — хранилище чатов; реализуется postgres.ChatRepository и memstore.
type ChatStore interface {
	CreateChat(ctx context.Context, chat *domain.Chat) error
	GetChat(ctx context.Context, id int64) (*domain.Chat, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
}

type ChatService struct {
	chats    ChatStore
	messages relay.MessageStore
}

func NewChatService(chats ChatStore, messages relay.MessageStore) *ChatService {
	return &ChatService{chats: chats, messages: messages}
}

// CreateChat создаёт чат с критериями подбора; возрастная вилка нормализуется.
func (s *ChatService) CreateChat(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if chat.MinAge <= 0 {
		chat.MinAge = 18
	}
	if chat.MaxAge <= 0 || chat.MaxAge > 120 {
		chat.MaxAge = 99
	}
	if chat.MaxAge < chat.MinAge {
		chat.MinAge, chat.MaxAge = chat.MaxAge, chat.MinAge
	}

	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("chats.CreateChat: %w", err)
	}
	return chat, nil
}

// ListChats возвращает все чаты от новых к старым.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	return s.chats.ListChats(ctx)
}

// ChatPager — опциональная возможность хранилища отдавать чаты страницами.
type ChatPager interface {
	ListChatsPage(ctx context.Context, limit int, cursor string) ([]domain.Chat, string, error)
}

// ListChatsPage — страница чатов с курсором. Хранилище без пагинации
// (память) отдаёт весь список одной страницей.
func (s *ChatService) ListChatsPage(ctx context.Context, limit int, cursor string) ([]domain.Chat, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	if p, ok := s.chats.(ChatPager); ok {
		return p.ListChatsPage(ctx, limit, cursor)
	}
	chats, err := s.chats.ListChats(ctx)
	return chats, "", err
}

// GetChat возвращает чат по id.
func (s *ChatService) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	return s.chats.GetChat(ctx, id)
}

// History — сообщения чата по возрастанию created_at.
func (s *ChatService) History(ctx context.Context, chatID int64) ([]domain.Message, error) {
	return s.messages.ListByRoom(ctx, domain.RoomID(chatID))
}
