package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/taskweave/weave/internal/api"
	"github.com/taskweave/weave/internal/config"
	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/pkg/models"
)

// loadConfig loads configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagBaseURL != "" {
		cfg.API.BaseURL = flagBaseURL
	}
	if flagUserID != "" {
		cfg.User.ID = flagUserID
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAPIClient creates the backend client from configuration.
func newAPIClient(cfg *config.Config, logger *logging.Logger) (*api.Client, error) {
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		UserID:  cfg.User.ID,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}
	return client, nil
}

// printStatus prints a status line with a colored symbol.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// printLogEntry writes a session log line to stderr, colored by level.
func printLogEntry(entry models.LogEntry) {
	levelColor := color.New(color.Reset)
	switch entry.Level {
	case models.LogLevelWarning:
		levelColor = color.New(color.FgYellow)
	case models.LogLevelError:
		levelColor = color.New(color.FgRed)
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgHiBlack).Sprintf("[%s]", entry.Timestamp.Format("15:04:05")))
	if entry.Agent != "" {
		b.WriteString(" ")
		b.WriteString(color.New(color.FgCyan, color.Bold).Sprint(entry.Agent + ":"))
	}
	b.WriteString(" ")
	b.WriteString(levelColor.Sprint(entry.Message))
	fmt.Fprintln(os.Stderr, b.String())
}

// notifyContext returns a context cancelled on SIGINT or SIGTERM.
func notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
