// Package memstore — хранилище в памяти, аналог sqlite :memory: из первой
// версии сервиса. Используется в dev-режиме (пустой postgres.dsn) и в тестах.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anonchat/relay-service/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	nextChat int64
	nextMsg  int64
	chats    map[int64]domain.Chat
	messages map[int64][]domain.Message // chatID -> сообщения по возрастанию created_at
}

func New() *Store {
	return &Store{
		chats:    make(map[int64]domain.Chat),
		messages: make(map[int64][]domain.Message),
	}
}

// --- чаты ---

func (s *Store) CreateChat(_ context.Context, chat *domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChat++
	chat.ID = s.nextChat
	chat.CreatedAt = time.Now().UTC()
	s.chats[chat.ID] = *chat
	return nil
}

func (s *Store) GetChat(_ context.Context, id int64) (*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	return &chat, nil
}

// ListChats возвращает чаты от новых к старым с числом уникальных
// отправителей в каждом.
func (s *Store) ListChats(_ context.Context) ([]domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		senders := make(map[string]struct{})
		for _, m := range s.messages[chat.ID] {
			senders[m.UserID] = struct{}{}
		}
		chat.MembersCount = len(senders)
		out = append(out, chat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// --- сообщения (relay.MessageStore) ---

func (s *Store) Append(_ context.Context, roomID, senderID, senderName, body string) (*domain.Message, error) {
	chatID, ok := domain.ChatID(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: bad room id %q", domain.ErrInvalidMessage, roomID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMsg++
	msg := domain.Message{
		ID:        s.nextMsg,
		ChatID:    chatID,
		UserID:    senderID,
		UserName:  senderName,
		Text:      body,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[chatID] = append(s.messages[chatID], msg)
	return &msg, nil
}

func (s *Store) ListByRoom(_ context.Context, roomID string) ([]domain.Message, error) {
	chatID, ok := domain.ChatID(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: bad room id %q", domain.ErrInvalidMessage, roomID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Message, len(s.messages[chatID]))
	copy(out, s.messages[chatID])
	return out, nil
}
