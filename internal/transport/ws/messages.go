package ws

import "time"

// Типы событий в обоих направлениях.
const (
	TypeJoinChat    = "join_chat"    // клиент входит в комнату чата
	TypeLeaveChat   = "leave_chat"   // клиент покидает комнату
	TypeSendMessage = "send_message" // клиент отправляет сообщение
	TypeNewMessage  = "new_message"  // сервер рассылает сохранённое сообщение
	TypeError       = "error"        // отказ по последней отправке (только отправителю)
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RoomEventPayload — join_chat / leave_chat.
type RoomEventPayload struct {
	ChatID int64  `json:"chatId"`
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	ChatID   int64  `json:"chat_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Message  string `json:"message"`
}

// MessagePayload — new_message; форма совпадает со строкой истории из REST.
type MessagePayload struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
