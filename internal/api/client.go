// Package api is the HTTP client for the TaskWeave backend.
//
// Every operation is a single JSON request bound to the caller's context.
// The client never retries; a failed call is reported once and the caller
// decides whether to try again.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/weave/internal/logging"
	"github.com/taskweave/weave/internal/version"
	"github.com/taskweave/weave/pkg/models"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

const maxResponseBytes = 4 << 20

// Client talks to the backend REST endpoints.
type Client struct {
	base   *url.URL
	userID string
	http   *http.Client
	logger *logging.Logger
	newID  func() string
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:8000.
	BaseURL string
	// UserID identifies the user on every request that needs one.
	UserID string
	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
	// Logger receives one line per request. Optional.
	Logger *logging.Logger
}

// NewClient validates the base URL and returns a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if cfg.UserID == "" {
		return nil, errors.New("user id is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		base:   base,
		userID: cfg.UserID,
		http:   httpClient,
		logger: cfg.Logger.With("api"),
		newID:  uuid.NewString,
	}, nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// UserID returns the user the client acts for.
func (c *Client) UserID() string {
	return c.userID
}

// WebSocketURL returns the event stream URL derived from the base URL.
func (c *Client) WebSocketURL() string {
	u, _ := WebSocketURL(c.base.String())
	return u
}

// WebSocketURL maps an http(s) origin to the ws(s) /ws/events endpoint.
func WebSocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid base URL %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/events"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Plan asks the planner to break query into subtasks.
func (c *Client) Plan(ctx context.Context, query string, dryRun bool) (*PlanResponse, error) {
	req := PlanRequest{UserID: c.userID, Query: query, DryRun: dryRun}
	var resp PlanResponse
	if err := c.do(ctx, http.MethodPost, "/api/plan", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return &resp, nil
}

// RunAgents executes subtasks and returns the merged timeline.
func (c *Client) RunAgents(ctx context.Context, subtasks []models.Subtask, traceID string) (*AgentRunResponse, error) {
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}
	req := AgentRunRequest{UserID: c.userID, Subtasks: subtasks, TraceID: traceID}
	var resp AgentRunResponse
	if err := c.do(ctx, http.MethodPost, "/api/agents/run", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("run agents: %w", err)
	}
	return &resp, nil
}

// GetMemory fetches the stored preferences for the configured user.
func (c *Client) GetMemory(ctx context.Context) (*MemoryResponse, error) {
	q := url.Values{"user_id": []string{c.userID}}
	var resp MemoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/memory", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return &resp, nil
}

// UpsertMemory replaces the stored preferences with prefs.
func (c *Client) UpsertMemory(ctx context.Context, prefs models.MemoryPrefs) (*MemoryResponse, error) {
	if prefs.UserID == "" {
		prefs.UserID = c.userID
	}
	var resp MemoryResponse
	if err := c.do(ctx, http.MethodPost, "/api/memory/upsert", nil, memoryUpsertRequest{Prefs: prefs}, &resp); err != nil {
		return nil, fmt.Errorf("upsert memory: %w", err)
	}
	return &resp, nil
}

// ApplyCalendar writes blocks to the calendar, or only simulates it when
// dryRun is set.
func (c *Client) ApplyCalendar(ctx context.Context, blocks []models.EventBlock, dryRun bool) (*CalendarApplyResponse, error) {
	if blocks == nil {
		blocks = []models.EventBlock{}
	}
	req := CalendarApplyRequest{UserID: c.userID, Blocks: blocks, DryRun: dryRun}
	var resp CalendarApplyResponse
	if err := c.do(ctx, http.MethodPost, "/api/tools/calendar/apply", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("apply calendar: %w", err)
	}
	return &resp, nil
}

// Health reports backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &resp, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Log("%s %s id=%s failed: %v", method, path, requestID, err)
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Log("%s %s id=%s status=%d in %s", method, path, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     extractDetail(data),
			Body:       data,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
