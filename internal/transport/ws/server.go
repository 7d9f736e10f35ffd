package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/anonchat/relay-service/internal/domain"
	"github.com/anonchat/relay-service/internal/relay"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Config struct {
	PingInterval   time.Duration
	SendBuffer     int
	MaxMessageSize int64
	// Разрешённые Origin; пустой список — принимать всех (dev).
	AllowedOrigins []string
}

func (c *Config) defaults() {
	if c.PingInterval <= 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 1 << 16
	}
}

type Server struct {
	upgrader websocket.Upgrader
	table    *ConnTable
	session  *relay.SessionController
	ingress  *relay.Ingress
	cfg      Config
}

func NewServer(table *ConnTable, session *relay.SessionController, ingress *relay.Ingress, cfg Config) *Server {
	cfg.defaults()
	return &Server{
		table:   table,
		session: session,
		ingress: ingress,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	connID := uuid.NewString()
	if _, err := s.session.OnConnect(connID); err != nil {
		_ = conn.Close()
		return
	}

	c := newWsConn(connID, conn, s.cfg.SendBuffer)
	s.table.add(c)

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)

	// Порядок важен: сперва транспортная таблица, затем реестры — рассылка
	// после этого уже не найдёт соединение ни там, ни там.
	s.table.remove(connID)
	s.session.OnDisconnect(connID)
	_ = c.Close()
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		s.handleEvent(ctx, c, evt)
	}
}

func (s *Server) handleEvent(ctx context.Context, c *wsConn, evt Event) {
	switch evt.Type {
	case TypeJoinChat:
		var p RoomEventPayload
		if decode(evt.Payload, &p) != nil || p.ChatID <= 0 {
			return
		}
		s.session.OnJoin(c.id, domain.RoomID(p.ChatID), p.UserID)

	case TypeLeaveChat:
		var p RoomEventPayload
		if decode(evt.Payload, &p) != nil || p.ChatID <= 0 {
			return
		}
		s.session.OnLeave(c.id, domain.RoomID(p.ChatID), p.UserID)

	case TypeSendMessage:
		var p SendMessagePayload
		if decode(evt.Payload, &p) != nil {
			return
		}
		_, err := s.ingress.Submit(ctx, domain.RoomID(p.ChatID), p.UserID, p.UserName, p.Message)
		if err != nil {
			// Отказ видит только отправитель; остальных это не касается.
			_ = c.enqueue(Event{Type: TypeError, Payload: ErrorPayload{Error: submitErrText(err)}})
		}

	default:
		// неизвестные типы игнорируются
	}
}

func submitErrText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidMessage):
		return "invalid message"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store unavailable"
	default:
		return "internal error"
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteJSON(evt); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

type wsConn struct {
	id   string
	conn *websocket.Conn

	out       chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(id string, conn *websocket.Conn, sendBuffer int) *wsConn {
	return &wsConn{
		id:     id,
		conn:   conn,
		out:    make(chan Event, sendBuffer),
		closed: make(chan struct{}),
	}
}

// enqueue не блокируется: забитый буфер медленного клиента — ошибка
// доставки, остальные получатели не ждут.
func (c *wsConn) enqueue(evt Event) error {
	select {
	case <-c.closed:
		return fmt.Errorf("%w: connection %s closed", domain.ErrDeliveryFailed, c.id)
	default:
	}

	select {
	case c.out <- evt:
		return nil
	default:
		return fmt.Errorf("%w: send buffer full for %s", domain.ErrDeliveryFailed, c.id)
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}
