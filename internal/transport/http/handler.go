package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anonchat/relay-service/internal/domain"
	"github.com/anonchat/relay-service/internal/postgres"
	"github.com/anonchat/relay-service/internal/relay"
	"github.com/anonchat/relay-service/internal/service"
	"github.com/anonchat/relay-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	chatSvc  *service.ChatService
	ingress  *relay.Ingress
	validate *validator.Validate
}

func NewHandler(chatSvc *service.ChatService, ingress *relay.Ingress) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		ingress:  ingress,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GET /api/chats[?limit=&cursor=]
// Без limit отдаётся полный список — его ждут существующие клиенты;
// с limit — страница с курсором.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		h.listChatsPage(w, r, limit)
		return
	}

	chats, err := h.chatSvc.ListChats(r.Context())
	if err != nil {
		slog.Error("handler.ListChats:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list chats")
		return
	}

	items := make([]ChatItem, 0, len(chats))
	for _, c := range chats {
		items = append(items, chatItem(c))
	}
	httputil.JSON(w, http.StatusOK, items)
}

func (h *Handler) listChatsPage(w http.ResponseWriter, r *http.Request, limit int) {
	chats, next, err := h.chatSvc.ListChatsPage(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			httputil.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		slog.Error("handler.ListChats:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list chats")
		return
	}

	resp := ChatsPageResponse{Items: make([]ChatItem, 0, len(chats)), NextCursor: next}
	for _, c := range chats {
		resp.Items = append(resp.Items, chatItem(c))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GET /api/chats/{id}
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	chat, err := h.chatSvc.GetChat(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			httputil.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		slog.Error("handler.GetChat:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get chat")
		return
	}

	httputil.JSON(w, http.StatusOK, chatItem(*chat))
}

// POST /api/chats
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid chat: "+err.Error())
		return
	}

	chat, err := h.chatSvc.CreateChat(r.Context(), &domain.Chat{
		UserID:        req.UserID,
		UserGender:    req.UserGender,
		UserAge:       req.UserAge,
		PartnerGender: req.PartnerGender,
		MinAge:        req.MinAge,
		MaxAge:        req.MaxAge,
		Theme:         req.Theme,
	})
	if err != nil {
		slog.Error("handler.CreateChat:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	httputil.JSON(w, http.StatusOK, CreatedResponse{ID: chat.ID})
}

// GET /api/messages?chat_id=
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	if err != nil || chatID <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid chat_id")
		return
	}

	msgs, err := h.chatSvc.History(r.Context(), chatID)
	if err != nil {
		slog.Error("handler.ListMessages:", slog.Any("err", err))
		httputil.Error(w, storeStatus(err), "failed to list messages")
		return
	}

	items := make([]MessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, messageItem(m))
	}
	httputil.JSON(w, http.StatusOK, items)
}

// POST /api/messages — запись в хранилище, затем рассылка в комнату чата.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid message: "+err.Error())
		return
	}

	msg, err := h.ingress.Submit(r.Context(),
		domain.RoomID(req.ChatID), req.UserID, req.UserName, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidMessage):
			httputil.Error(w, http.StatusBadRequest, "invalid message")
		case errors.Is(err, domain.ErrStoreUnavailable):
			slog.Error("handler.PostMessage:", slog.Any("err", err))
			httputil.Error(w, http.StatusServiceUnavailable, "store unavailable")
		default:
			slog.Error("handler.PostMessage:", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "failed to post message")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, CreatedResponse{ID: msg.ID})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
	})
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func chatItem(c domain.Chat) ChatItem {
	return ChatItem{
		ID:            c.ID,
		UserID:        c.UserID,
		UserGender:    c.UserGender,
		UserAge:       c.UserAge,
		PartnerGender: c.PartnerGender,
		MinAge:        c.MinAge,
		MaxAge:        c.MaxAge,
		Theme:         c.Theme,
		CreatedAt:     c.CreatedAt,
		MembersCount:  c.MembersCount,
	}
}

func messageItem(m domain.Message) MessageItem {
	return MessageItem{
		ID:        m.ID,
		ChatID:    m.ChatID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Message:   m.Text,
		CreatedAt: m.CreatedAt,
	}
}
