package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bowerhall/chatwidget/internal/config"
	"github.com/bowerhall/chatwidget/internal/console"
	"github.com/bowerhall/chatwidget/internal/dispatch"
	"github.com/bowerhall/chatwidget/internal/logger"
	"github.com/bowerhall/chatwidget/internal/normalize"
	"github.com/bowerhall/chatwidget/internal/session"
	"github.com/bowerhall/chatwidget/internal/storage"
	"github.com/bowerhall/chatwidget/internal/transcript"
	"github.com/bowerhall/chatwidget/internal/transport"
	"github.com/bowerhall/chatwidget/internal/widget"
)

const (
	cmdQuit    = "/quit"
	cmdReset   = "/reset"
	cmdExample = "/example "
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.SetDebug(cfg.Debug)

	labels, err := config.LoadLabels(cfg.LabelsFile)
	if err != nil {
		logger.Fatal("failed to load labels", "error", err)
	}

	if err := run(cfg, labels); err != nil {
		logger.Fatal("chat widget stopped", "error", err)
	}
}

func run(cfg *config.Config, labels config.Labels) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kv storage.KV
	db, err := storage.OpenSQLite(cfg.StorePath)
	if err != nil {
		logger.Warn("session storage unavailable, id will not survive restarts", "path", cfg.StorePath, "error", err)
		kv = storage.NewMemory()
	} else {
		defer db.Close()
		kv = db
	}

	term, err := console.Open(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer term.Close()

	out := term.Writer()
	log := console.NewLog(out)
	input := &console.Input{}
	sessions := session.NewManager(kv)

	ctl := widget.New(widget.Deps{
		Input:  input,
		Button: console.NewButton(),
		Transcript: transcript.New(log, transcript.Options{
			BotName:          labels.BotName,
			ViewProductLabel: labels.ViewProduct,
			PlaceholderImage: labels.PlaceholderImage,
			BrokenImage:      labels.BrokenImage,
			PrevLabel:        labels.PrevProducts,
			NextLabel:        labels.NextProducts,
		}),
		Sessions: sessions,
		Transport: transport.New(transport.Config{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.HTTPTimeout,
		}),
		Normalizer: normalize.New(normalize.Messages{
			RateLimited:   labels.Errors.RateLimited,
			Forbidden:     labels.Errors.Forbidden,
			Communication: labels.Errors.Communication,
			Network:       labels.Errors.Network,
		}),
		Alert: log.Alert,
		Labels: widget.Labels{
			Send:       labels.Send,
			Sending:    labels.Sending,
			EmptyInput: labels.EmptyInput,
		},
		MinInterval: cfg.MinInterval,
	})
	ctl.Start()

	for {
		line, err := term.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == cmdQuit:
			return nil

		case trimmed == cmdReset:
			if err := sessions.Reset(); err != nil {
				logger.Warn("session reset failed", "error", err)
			}
			fmt.Fprintln(out, "session: "+sessions.ID())

		case strings.HasPrefix(trimmed, cmdExample):
			reportSubmit(ctl.SubmitExample(ctx, strings.TrimPrefix(trimmed, cmdExample)))

		default:
			input.SetValue(line)
			reportSubmit(ctl.Submit(ctx))
		}
	}
}

// reportSubmit logs rejected submissions. Empty input already produced an
// alert on the console.
func reportSubmit(err error) {
	switch {
	case err == nil, errors.Is(err, dispatch.ErrEmptyInput):
	case errors.Is(err, dispatch.ErrThrottled), errors.Is(err, dispatch.ErrAlreadySending):
		logger.Debug("send dropped", "reason", err)
	default:
		logger.Warn("submit failed", "error", err)
	}
}
