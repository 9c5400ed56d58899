package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/taskweave/weave/internal/config"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/internal/shell"
	"github.com/taskweave/weave/internal/store"
	"github.com/taskweave/weave/internal/stream"
	"github.com/taskweave/weave/internal/tui"
	"github.com/taskweave/weave/pkg/models"
)

func runInteractive() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.OpenOrNop(cfg.Log.File)
	defer logger.Close()
	uiLog := logger.With("interactive")

	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	backoff, err := stream.NewBackoff(cfg.Stream.Backoff, cfg.Stream.ReconnectDelay, cfg.Stream.MaxDelay)
	if err != nil {
		return err
	}

	// In-flight requests and the socket are bound to ctx, which is cancelled
	// when the TUI exits or a shutdown signal arrives.
	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	// Suppress log output while TUI is active
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	st := store.New(cfg.User.ID)
	program, app := tui.NewInteractiveProgram(st, tui.Options{
		ToastDuration: cfg.TUI.ToastDuration,
		AltScreen:     cfg.TUI.AltScreen,
	})

	sh := shell.New(shell.Config{
		API:      client,
		Dispatch: func(a store.Action) { program.Send(a) },
		State:    st,
		Logger:   logger,
	})

	// Handlers run as tea commands, off the UI goroutine.
	app.SetSubmitHandler(func(query string) {
		if err := sh.Submit(ctx, query); errors.Is(err, shell.ErrBusy) {
			uiLog.Log("submit ignored: %v", err)
		}
	})
	app.SetSaveHandler(func(prefs models.MemoryPrefs) {
		_ = sh.SaveMemory(ctx, prefs)
	})
	app.SetApplyHandler(func(dryRun bool) {
		if err := sh.ApplyCalendar(ctx, dryRun); errors.Is(err, shell.ErrBusy) || errors.Is(err, shell.ErrEmptyTimeline) {
			uiLog.Log("apply ignored: %v", err)
		}
	})

	events := stream.New(stream.Options{
		URL:           client.WebSocketURL(),
		Backoff:       backoff,
		AutoReconnect: cfg.Stream.AutoReconnect,
		Logger:        logger,
		OnEvent:       sh.HandleEvent,
		OnReject:      sh.HandleReject,
		OnConnect:     func() { sh.HandleConnection(true) },
		OnDisconnect:  func(error) { sh.HandleConnection(false) },
	})
	defer events.Close()

	watcher, err := config.Watch(func(c *config.Config, err error) {
		if err != nil {
			uiLog.Log("config reload: %v", err)
			return
		}
		program.Send(tui.ConfigReloadedMsg{ToastDuration: c.TUI.ToastDuration})
	})
	if err != nil {
		uiLog.Log("config watch disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	go func() {
		_, _ = sh.LoadMemory(ctx)
	}()
	if err := events.Connect(); err != nil {
		uiLog.Log("connect: %v", err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	cancel()
	if err := events.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: close event stream: %v\n", err)
	}
	return nil
}
