package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
)

// Client drives simulation sessions on an rrsim server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Logger:     logger,
	}
}

// envelope is the server's response wrapper. Data is decoded lazily into
// the caller's type.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *model.APIError `json:"error"`
}

// CreateSession opens a session with the server's default configuration.
func (c *Client) CreateSession(ctx context.Context, name string) (*model.SessionInfo, error) {
	var info model.SessionInfo
	if err := c.call(ctx, http.MethodPost, "/api/v1/sessions/", map[string]string{"name": name}, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.Logger.Debug("session created", "session_id", info.ID)
	return &info, nil
}

// Configure sets the quantum and core count of a session.
func (c *Client) Configure(ctx context.Context, id string, cfg config.SimConfig) (*model.SessionInfo, error) {
	var info model.SessionInfo
	if err := c.call(ctx, http.MethodPut, sessionPath(id, "config"), cfg, &info); err != nil {
		return nil, fmt.Errorf("configure session %s: %w", id, err)
	}
	return &info, nil
}

// RegisterProcess adds a process to a session and returns its id.
func (c *Client) RegisterProcess(ctx context.Context, id string, arrival, burst int) (int, error) {
	req := map[string]int{"arrival": arrival, "burst": burst}
	var created struct {
		ID int `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, sessionPath(id, "processes"), req, &created); err != nil {
		return 0, fmt.Errorf("register process (arrival %d, burst %d): %w", arrival, burst, err)
	}
	return created.ID, nil
}

// Run runs a session to completion.
func (c *Client) Run(ctx context.Context, id string) (*model.RunResult, error) {
	var res model.RunResult
	if err := c.call(ctx, http.MethodPost, sessionPath(id, "run"), nil, &res); err != nil {
		return nil, fmt.Errorf("run session %s: %w", id, err)
	}
	return &res, nil
}

// Snapshot returns the current engine state of a session.
func (c *Client) Snapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := c.call(ctx, http.MethodGet, sessionPath(id), nil, &snap); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &snap, nil
}

// DeleteSession removes a session from the server.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, sessionPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func sessionPath(id string, sub ...string) string {
	p := "/api/v1/sessions/" + url.PathEscape(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

// call sends body as JSON and decodes the envelope data into out. Server
// errors come back as *model.APIError.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	target := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug("HTTP request", "method", method, "url", target)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "body", string(raw))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
