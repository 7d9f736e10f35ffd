package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonchat/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository реализует relay.MessageStore поверх Postgres:
// id и created_at назначаются строкой INSERT .. RETURNING, поэтому
// сообщение получает идентификатор строго до рассылки.
type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, roomID, senderID, senderName, body string) (*domain.Message, error) {
	chatID, ok := domain.ChatID(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: bad room id %q", domain.ErrInvalidMessage, roomID)
	}

	var m domain.Message
	query := `
		INSERT INTO messages (chat_id, user_id, user_name, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, user_id, user_name, message, created_at`
	err := r.db.QueryRow(ctx, query, chatID, senderID, senderName, body).Scan(
		&m.ID, &m.ChatID, &m.UserID, &m.UserName, &m.Text, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return &m, nil
}

func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	chatID, ok := domain.ChatID(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: bad room id %q", domain.ErrInvalidMessage, roomID)
	}

	query := `
		SELECT id, chat_id, user_id, user_name, message, created_at
		FROM messages
		WHERE chat_id=$1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.UserName, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
