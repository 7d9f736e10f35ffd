package http

import "time"

type CreateChatRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	UserGender    string `json:"user_gender"`
	UserAge       int    `json:"user_age" validate:"omitempty,gte=14,lte=120"`
	PartnerGender string `json:"partner_gender"`
	MinAge        int    `json:"min_age" validate:"omitempty,gte=0,lte=120"`
	MaxAge        int    `json:"max_age" validate:"omitempty,gte=0,lte=120"`
	Theme         string `json:"theme"`
}

type ChatItem struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	UserGender    string    `json:"user_gender"`
	UserAge       int       `json:"user_age"`
	PartnerGender string    `json:"partner_gender"`
	MinAge        int       `json:"min_age"`
	MaxAge        int       `json:"max_age"`
	Theme         string    `json:"theme"`
	CreatedAt     time.Time `json:"created_at"`
	MembersCount  int       `json:"members_count"`
}

type ChatsPageResponse struct {
	Items      []ChatItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type PostMessageRequest struct {
	ChatID   int64  `json:"chat_id" validate:"required,gt=0"`
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name"`
	Message  string `json:"message" validate:"required"`
}

type MessageItem struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
