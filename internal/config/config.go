// Package config handles configuration loading and management for weave.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TASKWEAVE_API_BASE_URL.
	EnvPrefix = "TASKWEAVE"
	// ProjectConfigName is searched for in the working directory and its parents.
	ProjectConfigName = ".weave.yaml"
)

// Config holds all configuration for weave.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	User   UserConfig   `mapstructure:"user"`
	Stream StreamConfig `mapstructure:"stream"`
	TUI    TUIConfig    `mapstructure:"tui"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// UserConfig identifies the user the client acts for.
type UserConfig struct {
	ID string `mapstructure:"id"`
}

// StreamConfig holds event socket settings.
type StreamConfig struct {
	AutoReconnect  bool          `mapstructure:"auto_reconnect"`
	Backoff        string        `mapstructure:"backoff"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	ToastDuration time.Duration `mapstructure:"toast_duration"`
	AltScreen     bool          `mapstructure:"alt_screen"`
}

// LogConfig holds debug log settings. An empty File disables the log.
type LogConfig struct {
	File string `mapstructure:"file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TASKWEAVE_API_BASE_URL, TASKWEAVE_USER_ID, ...)
// 2. Project config (.weave.yaml in current directory or parent)
// 3. User config (~/.config/weave/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("user.id", cfg.User.ID)
	v.Set("stream.auto_reconnect", cfg.Stream.AutoReconnect)
	v.Set("stream.backoff", cfg.Stream.Backoff)
	v.Set("stream.reconnect_delay", cfg.Stream.ReconnectDelay.String())
	v.Set("stream.max_delay", cfg.Stream.MaxDelay.String())
	v.Set("tui.toast_duration", cfg.TUI.ToastDuration.String())
	v.Set("tui.alt_screen", cfg.TUI.AltScreen)
	v.Set("log.file", cfg.Log.File)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", c.API.BaseURL)
	}
	if strings.TrimSpace(c.User.ID) == "" {
		return errors.New("user.id must not be empty")
	}
	switch c.Stream.Backoff {
	case "constant", "exponential":
	default:
		return fmt.Errorf("stream.backoff must be constant or exponential, got %q", c.Stream.Backoff)
	}
	if c.Stream.ReconnectDelay <= 0 {
		return fmt.Errorf("stream.reconnect_delay must be positive, got %s", c.Stream.ReconnectDelay)
	}
	if c.Stream.MaxDelay < c.Stream.ReconnectDelay {
		return fmt.Errorf("stream.max_delay (%s) must not be less than stream.reconnect_delay (%s)",
			c.Stream.MaxDelay, c.Stream.ReconnectDelay)
	}
	if c.TUI.ToastDuration <= 0 {
		return fmt.Errorf("tui.toast_duration must be positive, got %s", c.TUI.ToastDuration)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("user.id", "demo_user_1")

	v.SetDefault("stream.auto_reconnect", true)
	v.SetDefault("stream.backoff", "constant")
	v.SetDefault("stream.reconnect_delay", "3s")
	v.SetDefault("stream.max_delay", "30s")

	v.SetDefault("tui.toast_duration", "3s")
	v.SetDefault("tui.alt_screen", true)

	v.SetDefault("log.file", defaultLogFile())
}

// getUserConfigDir returns the XDG config directory for weave.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "weave")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "weave")
	}
	return filepath.Join(home, ".config", "weave")
}

// defaultLogFile returns $XDG_STATE_HOME/weave/weave.log.
func defaultLogFile() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "weave", "weave.log")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "weave", "weave.log")
}

// findProjectConfig searches for .weave.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandPath expands ${VAR} references and a leading ~/.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		User: UserConfig{
			ID: "demo_user_1",
		},
		Stream: StreamConfig{
			AutoReconnect:  true,
			Backoff:        "constant",
			ReconnectDelay: 3 * time.Second,
			MaxDelay:       30 * time.Second,
		},
		TUI: TUIConfig{
			ToastDuration: 3 * time.Second,
			AltScreen:     true,
		},
		Log: LogConfig{
			File: defaultLogFile(),
		},
	}
}
