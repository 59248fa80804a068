package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saveeat/saveeat-client/internal/common"
	"github.com/saveeat/saveeat-client/internal/logging"
)

const maxResponseBody = 4 << 20

// Options configures HTTPClient.
type Options struct {
	BaseURL string
	// Timeout bounds a whole request; zero leaves it to the context.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// HTTPClient talks JSON over HTTP to the SaveEat backend. It attaches the
// bearer token when one is set. Requests are never retried.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", u.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &HTTPClient{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: httpClient,
		log:        log.With("component", "remote"),
	}, nil
}

// SetToken sets the bearer credential; "" stops sending Authorization.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Do sends a JSON request to path (relative to the base URL) and returns the
// parsed envelope. Transport failures come back as *NetworkError, rejections
// as *APIError.
func (c *HTTPClient) Do(ctx context.Context, method, path string, query url.Values, payload any) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request, path string) (*Envelope, error) {
	ctx := req.Context()
	method := req.Method
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path,
			"request_id", req.Header.Get(common.RequestIDHeaderName), "error", err)
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeaderName), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	env := &Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
		}
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = errorMessage(raw, resp.StatusCode)
		}
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}
	return env, nil
}
