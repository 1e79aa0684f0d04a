// Package app wires the clipmarket client together and dispatches the
// terminal commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clipmarket/client/internal/config"
	"github.com/clipmarket/client/internal/httpserver"
	"github.com/clipmarket/client/internal/stubapi"
)

// Run bootstraps the clipmarket terminal client.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: login, logout, me, feed, watch, purchase, gift, balance, or stub")
	}

	// A .env in the working directory is a convenience for local
	// development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if args[0] == "stub" {
		return serveStub(ctx, cfg, logger)
	}

	c := buildClient(cfg, logger)

	switch args[0] {
	case "login":
		return c.login(ctx)
	case "logout":
		return c.logout()
	case "me":
		return c.me(ctx)
	case "feed":
		return c.feed(ctx)
	case "watch":
		if len(args) < 2 {
			return errors.New("usage: clipmarket watch <video-id>")
		}
		return c.watch(ctx, args[1])
	case "purchase":
		if len(args) < 2 {
			return errors.New("usage: clipmarket purchase <video-id>")
		}
		return c.purchase(ctx, args[1])
	case "gift":
		if len(args) < 4 {
			return errors.New("usage: clipmarket gift <creator-id> <video-id> <amount>")
		}
		return c.gift(ctx, args[1], args[2], args[3])
	case "balance":
		return c.balance(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// serveStub runs the local in-memory backend until interrupted.
func serveStub(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store := stubapi.DefaultFixtures()
	handler := stubapi.NewHandler(store, stubapi.Options{
		Secret:   cfg.StubTokenSecret,
		TokenTTL: cfg.StubTokenTTL,
		Logger:   logger,
	})

	srv := httpserver.New(cfg.StubPort, handler)

	logger.Info("starting stub backend", "port", cfg.StubPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down stub")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down stub", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
