package http

import (
	"net/http"
	"time"

	"github.com/anonchat/relay-service/internal/transport/ws"
	"github.com/anonchat/relay-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, wsServer *ws.Server, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(httputil.MiddlewareRequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(httputil.MiddlewareLogging)

	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	// WS endpoint — вне таймаут-группы: соединение живёт долго.
	r.Get("/ws", wsServer.HandleWS)

	r.Group(func(api chi.Router) {
		api.Use(middlewareChi.Timeout(30 * time.Second))

		api.Route("/api", func(api chi.Router) {
			api.Get("/chats", h.ListChats)
			api.Post("/chats", h.CreateChat)
			api.Get("/chats/{id}", h.GetChat)
			api.Get("/messages", h.ListMessages)
			api.Post("/messages", h.PostMessage)
		})
	})

	r.Get("/health", h.Health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, http.StatusNotFound, "route not found")
	})

	return r
}
