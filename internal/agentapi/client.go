// Package agentapi is the HTTP client for the agent run service: the
// backend that owns conversation sessions and produces model replies. All
// calls are single-attempt with bounded timeouts; failures surface the raw
// upstream status and text so the chat layer can relay them.
package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/masterversa/acharya/internal/observability"
)

const (
	defaultTimeout = 10 * time.Second
	runTimeout     = 15 * time.Second
	probeTimeout   = 5 * time.Second

	maxErrorBody = 4096
)

// Session describes a remote session as returned by the list endpoint.
type Session struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	AppName    string  `json:"app_name"`
	UserID     string  `json:"user_id"`
	SessionID  string  `json:"session_id"`
	NewMessage Message `json:"new_message"`
}

// Message is a role-tagged set of text parts.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single text fragment of a message.
type Part struct {
	Text string `json:"text"`
}

// Config configures the agent service client.
type Config struct {
	// BaseURL is the root of the agent run service, e.g. "http://127.0.0.1:9876".
	BaseURL string
	// AppName is the agent application id used in session paths.
	AppName string
	// Timeout bounds session CRUD and artifact calls (default 10s).
	Timeout time.Duration
	// RunTimeout bounds POST /run, which includes model latency (default 15s).
	RunTimeout time.Duration
	// Logger is optional; slog.Default is used when nil.
	Logger *slog.Logger
	// Metrics is optional; when set, per-operation latency and outcome
	// counters are recorded.
	Metrics *observability.Metrics
}

// Client talks to the agent run service.
type Client struct {
	baseURL    string
	appName    string
	httpClient *http.Client
	runClient  *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("agent service base url is required")
	}
	if strings.TrimSpace(cfg.AppName) == "" {
		return nil, errors.New("agent app name is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = runTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appName:    cfg.AppName,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		runClient:  &http.Client{Timeout: cfg.RunTimeout},
		logger:     logger.With("component", "agentapi"),
		metrics:    cfg.Metrics,
	}, nil
}

// Ping checks service liveness via GET /list-apps. It gates startup: the bot
// refuses to start against a dead backend.
func (c *Client) Ping(ctx context.Context) error {
	probe := &http.Client{Timeout: probeTimeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list-apps", nil)
	if err != nil {
		return &Error{Code: ErrCodeInternal, Message: "build probe request", Err: err}
	}
	resp, err := probe.Do(req)
	if err != nil {
		return wrapTransport("probe agent service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errStatus("agent service probe failed", resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

// CreateSession creates a new remote session with empty initial state and
// returns its id.
func (c *Client) CreateSession(ctx context.Context, userHandle string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"state": map[string]any{}}
	if err := c.doJSON(ctx, c.httpClient, "create_session", http.MethodPost, c.sessionsPath(userHandle), body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errDecode("create session: response missing id", nil)
	}
	return out.ID, nil
}

// ListSessions returns the user's remote sessions. It is a pure query.
func (c *Client) ListSessions(ctx context.Context, userHandle string) ([]Session, error) {
	var out []Session
	if err := c.doJSON(ctx, c.httpClient, "list_sessions", http.MethodGet, c.sessionsPath(userHandle), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession deletes a remote session.
func (c *Client) DeleteSession(ctx context.Context, userHandle, sessionID string) error {
	path := c.sessionsPath(userHandle) + "/" + url.PathEscape(sessionID)
	return c.doJSON(ctx, c.httpClient, "delete_session", http.MethodDelete, path, nil, nil)
}

// ListArtifacts returns the artifact names attached to a session. An empty
// list is the common case.
func (c *Client) ListArtifacts(ctx context.Context, userHandle, sessionID string) ([]json.RawMessage, error) {
	path := c.sessionsPath(userHandle) + "/" + url.PathEscape(sessionID) + "/artifacts"
	var out []json.RawMessage
	if err := c.doJSON(ctx, c.httpClient, "artifacts", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Run sends a user message into a session and returns the raw response body.
// The response shape varies across backend versions; callers hand it to
// ExtractReply rather than decoding a fixed schema.
func (c *Client) Run(ctx context.Context, userHandle, sessionID, text string) (_ []byte, err error) {
	start := time.Now()
	defer func() { c.observe("run", start, err) }()

	reqBody := RunRequest{
		AppName:   c.appName,
		UserID:    userHandle,
		SessionID: sessionID,
		NewMessage: Message{
			Role:  "user",
			Parts: []Part{{Text: text}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &Error{Code: ErrCodeInternal, Message: "encode run request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Code: ErrCodeInternal, Message: "build run request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.runClient.Do(req)
	if err != nil {
		return nil, wrapTransport("run message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatus("run message failed", resp.StatusCode, readErrorBody(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errDecode("read run response", err)
	}

	c.logger.Debug("run completed",
		"session_id", sessionID,
		"latency_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(raw))

	return raw, nil
}

func (c *Client) sessionsPath(userHandle string) string {
	return fmt.Sprintf("/apps/%s/users/%s/sessions", url.PathEscape(c.appName), url.PathEscape(userHandle))
}

// doJSON issues a single request and decodes a JSON response into out when
// out is non-nil. Non-2xx responses become status errors carrying the raw
// body text. op names the operation for metrics.
func (c *Client) doJSON(ctx context.Context, client *http.Client, op, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(op, start, err) }()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &Error{Code: ErrCodeInternal, Message: "encode request", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Code: ErrCodeInternal, Message: "build request", Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return wrapTransport(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errStatus(method+" "+path+" failed", resp.StatusCode, readErrorBody(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errDecode("decode "+path, err)
	}
	return nil
}

// observe records one call's latency and outcome when metrics are wired.
func (c *Client) observe(op string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.ObserveAgentRequest(op, start, err)
	}
}

func wrapTransport(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout(op+" timed out", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return errTimeout(op+" timed out", err)
	}
	return errConnection(op+" failed", err)
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
