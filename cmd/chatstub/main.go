package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bowerhall/chatwidget/internal/config"
	"github.com/bowerhall/chatwidget/internal/logger"
	"github.com/bowerhall/chatwidget/internal/stub"
)

func init() {
	godotenv.Load()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.SetDebug(cfg.Debug)

	handler := stub.NewHandler(stub.Config{
		RatePerMinute: cfg.Stub.RatePerMinute,
		APIKeys:       cfg.Stub.APIKeys,
		Shape:         stub.Shape(cfg.Stub.Shape),
	})

	srv := &http.Server{
		Addr:              cfg.Stub.Addr,
		Handler:           stub.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("chat stub listening", "addr", cfg.Stub.Addr, "shape", cfg.Stub.Shape, "rate", cfg.Stub.RatePerMinute)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", "error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
