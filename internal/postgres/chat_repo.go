package postgres

import (
	"context"
	"errors"

	"github.com/anonchat/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateChat(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (user_id, user_gender, user_age, partner_gender, min_age, max_age, theme)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		chat.UserID, chat.UserGender, chat.UserAge,
		chat.PartnerGender, chat.MinAge, chat.MaxAge, chat.Theme,
	).Scan(&chat.ID, &chat.CreatedAt)
}

func (r *ChatRepository) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	var c domain.Chat
	query := `
		SELECT id, user_id, user_gender, user_age, partner_gender, min_age, max_age, theme, created_at
		FROM chats WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.UserGender, &c.UserAge,
		&c.PartnerGender, &c.MinAge, &c.MaxAge, &c.Theme, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListChats возвращает чаты от новых к старым вместе с числом уникальных
// отправителей в каждом.
func (r *ChatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	query := `
		SELECT c.id, c.user_id, c.user_gender, c.user_age,
		       c.partner_gender, c.min_age, c.max_age, c.theme, c.created_at,
		       COUNT(DISTINCT m.user_id) AS members_count
		FROM chats c
		LEFT JOIN messages m ON c.id = m.chat_id
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.UserGender, &c.UserAge,
			&c.PartnerGender, &c.MinAge, &c.MaxAge, &c.Theme, &c.CreatedAt,
			&c.MembersCount,
		); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ListChatsPage — та же выборка с курсорной пагинацией (created_at, id DESC)
// для клиентов, которым не нужен полный список.
func (r *ChatRepository) ListChatsPage(ctx context.Context, limit int, cursorStr string) ([]domain.Chat, string, error) {
	cur, err := DecodeCursor(cursorStr)
	if err != nil {
		return nil, "", err
	}

	query := `
		SELECT c.id, c.user_id, c.user_gender, c.user_age,
		       c.partner_gender, c.min_age, c.max_age, c.theme, c.created_at,
		       COUNT(DISTINCT m.user_id) AS members_count
		FROM chats c
		LEFT JOIN messages m ON c.id = m.chat_id
		WHERE ($1::timestamptz IS NULL OR c.created_at < $1
		       OR (c.created_at = $1 AND c.id < $2))
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $3`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, query, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.UserGender, &c.UserAge,
			&c.PartnerGender, &c.MinAge, &c.MaxAge, &c.Theme, &c.CreatedAt,
			&c.MembersCount,
		); err != nil {
			return nil, "", err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(chats) == limit {
		last := chats[len(chats)-1]
		nextCursor, _ = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return chats, nextCursor, nil
}
