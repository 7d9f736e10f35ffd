package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate создаёт схему, если её ещё нет. Отдельного инструмента миграций
// здесь нет: две таблицы, как в исходном сервисе.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chats (
			id             BIGSERIAL PRIMARY KEY,
			user_id        TEXT NOT NULL,
			user_gender    TEXT NOT NULL DEFAULT '',
			user_age       INT  NOT NULL DEFAULT 0,
			partner_gender TEXT NOT NULL DEFAULT '',
			min_age        INT  NOT NULL DEFAULT 0,
			max_age        INT  NOT NULL DEFAULT 0,
			theme          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id         BIGSERIAL PRIMARY KEY,
			chat_id    BIGINT NOT NULL REFERENCES chats(id),
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL DEFAULT '',
			message    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created
			ON messages (chat_id, created_at)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
