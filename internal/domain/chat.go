package domain

import (
	"strconv"
	"time"
)

// Chat — анонимный чат с критериями подбора собеседника.
type Chat struct {
	ID            int64     `db:"id"`
	UserID        string    `db:"user_id"`
	UserGender    string    `db:"user_gender"`
	UserAge       int       `db:"user_age"`
	PartnerGender string    `db:"partner_gender"`
	MinAge        int       `db:"min_age"`
	MaxAge        int       `db:"max_age"`
	Theme         string    `db:"theme"`
	CreatedAt     time.Time `db:"created_at"`

	// Сколько уникальных отправителей писали в чат; заполняется только при листинге.
	MembersCount int `db:"members_count"`
}

// RoomID — стабильный идентификатор комнаты, производный от id чата.
func RoomID(chatID int64) string {
	return "chat_" + strconv.FormatInt(chatID, 10)
}

// ChatID разбирает идентификатор комнаты обратно в id чата.
func ChatID(roomID string) (int64, bool) {
	s := roomID
	if len(s) > 5 && s[:5] == "chat_" {
		s = s[5:]
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
