package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKey is returned for keys Get and Set do not recognise.
var ErrUnknownKey = errors.New("unknown configuration key")

// Keys lists every settable key in display order.
var Keys = []string{
	"api.base_url",
	"user.id",
	"stream.auto_reconnect",
	"stream.backoff",
	"stream.reconnect_delay",
	"stream.max_delay",
	"tui.toast_duration",
	"tui.alt_screen",
	"log.file",
}

// Get returns the value of a dot-notation key as a string.
func Get(cfg *Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "api.base_url":
		return cfg.API.BaseURL, nil
	case "user.id":
		return cfg.User.ID, nil
	case "stream.auto_reconnect":
		return strconv.FormatBool(cfg.Stream.AutoReconnect), nil
	case "stream.backoff":
		return cfg.Stream.Backoff, nil
	case "stream.reconnect_delay":
		return cfg.Stream.ReconnectDelay.String(), nil
	case "stream.max_delay":
		return cfg.Stream.MaxDelay.String(), nil
	case "tui.toast_duration":
		return cfg.TUI.ToastDuration.String(), nil
	case "tui.alt_screen":
		return strconv.FormatBool(cfg.TUI.AltScreen), nil
	case "log.file":
		return cfg.Log.File, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set parses value and stores it under a dot-notation key. The result is
// validated as a whole; on error cfg is left unchanged.
func Set(cfg *Config, key, value string) error {
	next := *cfg

	switch strings.ToLower(key) {
	case "api.base_url":
		next.API.BaseURL = value
	case "user.id":
		next.User.ID = value
	case "stream.auto_reconnect":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for stream.auto_reconnect: %w", err)
		}
		next.Stream.AutoReconnect = b
	case "stream.backoff":
		next.Stream.Backoff = value
	case "stream.reconnect_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for stream.reconnect_delay: %w", err)
		}
		next.Stream.ReconnectDelay = d
	case "stream.max_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for stream.max_delay: %w", err)
		}
		next.Stream.MaxDelay = d
	case "tui.toast_duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for tui.toast_duration: %w", err)
		}
		next.TUI.ToastDuration = d
	case "tui.alt_screen":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for tui.alt_screen: %w", err)
		}
		next.TUI.AltScreen = b
	case "log.file":
		next.Log.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}
