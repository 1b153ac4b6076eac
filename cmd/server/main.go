package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ytakahashi/todo-sync/internal/app"
	"github.com/ytakahashi/todo-sync/internal/config"
	"github.com/ytakahashi/todo-sync/internal/handlers"
	"github.com/ytakahashi/todo-sync/internal/logger"
	"github.com/ytakahashi/todo-sync/internal/todolist"
)

func main() {
	log := logger.Default()

	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("failed to read env")
	}

	appLog, err := logger.New(cfg.Env, os.Stdout)
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("failed to init logger")
	}
	log = appLog
	log.Info().
		Str("env", cfg.Env).
		Str("backend", cfg.Store.Backend).
		Msg("read env")

	ctx := context.Background()

	store, err := app.OpenStore(ctx, log, cfg.Store)
	if err != nil {
		log.Fatal().
			Err(err).
			Msg("failed to open store")
	}
	defer store.Close()

	auth := app.NewAuthService(log, store, cfg.Auth)
	flow := todolist.NewAuthFlow(log, auth, store, cfg.UI.RedirectDelay)
	apiHandler := handlers.NewAPIHandler(log, store, auth, flow)

	e := handlers.NewServer(log, apiHandler)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Msg("server starting")
		err := e.Start(net.JoinHostPort("", cfg.Port))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().
				Err(err).
				Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().
			Err(err).
			Msg("failed to shut down server")
		return
	}
	log.Info().Msg("server stopped")
}
