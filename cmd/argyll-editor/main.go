package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/kode4food/argyll/editor"
	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/internal/server"
	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/pkg/log"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

type editor struct {
	cfg        *config.Config
	store      store.Store
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var ErrOpenStore = errors.New("failed to open store")

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &editor{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *editor) run() error {
	st, err := store.Open(context.Background(), s.cfg.Store)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	s.store = st
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *editor) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)
	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Argyll Editor starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("store_kind", s.cfg.Store.Kind),
		slog.String("redis_addr", s.cfg.Store.Redis.Addr),
		slog.Int("redis_db", s.cfg.Store.Redis.DB),
		slog.String("blob_url", s.cfg.Store.Blob.URL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *editor) startServer() {
	s.apiServer = server.NewServer(s.store)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *editor) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.Close()

	if err := s.store.Close(); err != nil {
		slog.Error("Store close failed", log.Error(err))
	}

	slog.Info("Server exited")
}
