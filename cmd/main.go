package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonchat/relay-service/config"
	"github.com/anonchat/relay-service/internal/memstore"
	"github.com/anonchat/relay-service/internal/postgres"
	"github.com/anonchat/relay-service/internal/relay"
	"github.com/anonchat/relay-service/internal/service"
	httpx "github.com/anonchat/relay-service/internal/transport/http"
	"github.com/anonchat/relay-service/internal/transport/ws"
	"github.com/anonchat/relay-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting relay-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- хранилище: postgres либо память (dev) ---
	ctx := context.Background()
	var (
		chatStore service.ChatStore
		msgStore  relay.MessageStore
	)
	if cfg.Postgres.DSN != "" {
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			MinConns:        cfg.Postgres.MinConns,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		chatStore = postgres.NewChatRepository(pool)
		msgStore = postgres.NewMessageRepository(pool)
	} else {
		slog.Warn("postgres.dsn is empty, using in-memory store")
		mem := memstore.New()
		chatStore = mem
		msgStore = mem
	}

	// --- ядро ретрансляции ---
	conns := relay.NewConnectionRegistry()
	rooms := relay.NewRoomRegistry()
	session := relay.NewSessionController(conns, rooms)

	table := ws.NewConnTable()
	bcast := relay.NewBroadcaster(rooms, table)
	ingress := relay.NewIngress(msgStore, bcast)

	wsServer := ws.NewServer(table, session, ingress, ws.Config{
		PingInterval:   cfg.PingInterval(),
		SendBuffer:     cfg.WS.SendBuffer,
		MaxMessageSize: cfg.WS.MaxMessageBytes,
		AllowedOrigins: cfg.HTTP.CORSOrigins,
	})

	// --- HTTP ---
	chatSvc := service.NewChatService(chatStore, msgStore)
	handler := httpx.NewHandler(chatSvc, ingress)
	router := httpx.NewRouter(handler, wsServer, cfg.HTTP.CORSOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
