package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"catalog-cli/internal/config"
	"catalog-cli/internal/session"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client. BaseURL is the single API origin all paths resolve against.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is optional; tests inject httptest clients here.
	HTTPClient *http.Client
}

// Client talks to the catalog REST API. Every call is a single attempt; errors are
// returned to the caller for display, never retried.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

func New(opts Options, logger *slog.Logger) (*Client, error) {
	if err := config.ValidateBaseURL(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		timeout:    timeout,
		httpClient: hc,
		log:        logger.With("component", "api"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Ack is the decoded body of a successful mutation.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

type response struct {
	status int
	body   []byte
}

func (c *Client) newRequest(ctx context.Context, sess session.Session, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	if err := sess.Authorize(req); err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do performs one round trip bounded by the client timeout and reads the whole body.
func (c *Client) do(ctx context.Context, sess session.Session, method, path string, payload any) (response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, sess, method, path, payload)
	if err != nil {
		return response{}, err
	}
	reqID := req.Header.Get("X-Request-ID")
	started := time.Now()
	c.log.DebugContext(ctx, "api request", slog.String("method", method), slog.String("path", path), slog.String("request_id", reqID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, c.transportError(ctx, method, path, reqID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, c.transportError(ctx, method, path, reqID, err)
	}

	c.log.DebugContext(ctx, "api response",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
		slog.String("request_id", reqID),
	)
	return response{status: resp.StatusCode, body: body}, nil
}

func (c *Client) transportError(ctx context.Context, method, path, reqID string, err error) error {
	url := c.baseURL + path
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		c.log.WarnContext(ctx, "api timeout", slog.String("method", method), slog.String("path", path), slog.String("request_id", reqID))
		return &TimeoutError{Op: method, URL: url, After: c.timeout}
	}
	c.log.WarnContext(ctx, "api network error", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()), slog.String("request_id", reqID))
	return &NetworkError{Op: method, URL: url, Err: err}
}

// Fetch GETs path and decodes the collection stored under key (falling back to "data")
// into out. An empty key decodes the whole body into out.
func (c *Client) Fetch(ctx context.Context, sess session.Session, path, key string, out any) error {
	resp, err := c.do(ctx, sess, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if resp.status < 200 || resp.status > 299 {
		return &FetchError{Path: path, Status: resp.status, Message: envelopeMessage(resp.body, resp.status)}
	}

	env, err := decodeEnvelope(resp.body)
	if err != nil {
		return &FetchError{Path: path, Status: resp.status, Message: err.Error()}
	}
	if env.failed() {
		return &FetchError{Path: path, Status: resp.status, Message: env.message("request was not successful")}
	}

	raw := json.RawMessage(resp.body)
	if key != "" {
		var ok bool
		raw, ok = env.collection(key)
		if !ok {
			return &FetchError{Path: path, Status: resp.status, Message: fmt.Sprintf("response has neither %q nor \"data\"", key)}
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{Path: path, Status: resp.status, Message: "decode: " + err.Error()}
	}
	return nil
}

// Submit sends a create/update/delete request. A nil payload sends no body.
func (c *Client) Submit(ctx context.Context, sess session.Session, method, path string, payload any) (Ack, error) {
	resp, err := c.do(ctx, sess, method, path, payload)
	if err != nil {
		return Ack{}, err
	}

	if resp.status < 200 || resp.status > 299 {
		return Ack{}, &MutationError{Method: method, Path: path, Status: resp.status, Message: envelopeMessage(resp.body, resp.status)}
	}

	ack := Ack{Success: true}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return ack, nil
	}
	env, err := decodeEnvelope(resp.body)
	if err != nil {
		// 2xx with a non-JSON body still counts as done.
		return ack, nil
	}
	if env.failed() {
		return Ack{}, &MutationError{Method: method, Path: path, Status: resp.status, Message: env.message("request was not successful")}
	}
	ack.Message = env.message("")
	ack.ID = env.id()
	return ack, nil
}
