package domain

import "time"

// Message создаётся только после успешной записи в хранилище:
// id и created_at назначает хранилище, до этого сообщение не рассылается.
type Message struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    string    `db:"user_id"`
	UserName  string    `db:"user_name"`
	Text      string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// RoomID — комната, в которую рассылается сообщение.
func (m *Message) RoomID() string {
	return RoomID(m.ChatID)
}
