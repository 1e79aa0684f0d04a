// Package api implements the outbound gateway to the clipmarket backend.
// Every network call the client makes flows through Client, which owns
// bearer-credential attachment, request tracing, and the normalization
// of failures into *Error values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/clipmarket/client/internal/logging"
)

// CredentialSource supplies the bearer token attached to outgoing
// requests. Clear is invoked by the gateway itself when the server
// rejects the credential, so callers only ever observe a failed call.
type CredentialSource interface {
	Token() string
	Clear()
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option customizes a Client beyond its defaults.
type Option func(*Client)

// WithTimeout overrides the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRequestRate caps outbound requests per second. Zero or negative
// disables the limiter.
func WithRequestRate(perSecond int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger attaches a base logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a gateway client for the given base URL. The credential
// source must not be nil; use session.NewMemoryStore() for anonymous use.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	if creds == nil {
		panic("api: credential source must not be nil")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and decodes the response into out when non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response
// into out when non-nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do executes a single request. Failures are always returned as *Error:
// transport problems with a zero Status, server rejections with the HTTP
// status and the message body the server supplied. A 401 additionally
// clears the held credential before returning.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	logger := logging.FromContext(ctx)
	if logger == slog.Default() {
		logger = c.logger
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{cause: err}
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed before response",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return &Error{cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Status:  resp.StatusCode,
			Message: decodeServerMessage(resp.Body),
		}
		if apiErr.Unauthorized() {
			// Credential policy lives here, not in callers: a rejected
			// bearer token is dropped so the session starts over.
			logger.Info("credential rejected, clearing stored token",
				slog.String("request_id", requestID))
			c.creds.Clear()
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Status: resp.StatusCode, cause: err, Message: "malformed response body"}
		}
	}

	return nil
}

// decodeServerMessage pulls the human-readable reason out of an error
// body. The backend is inconsistent about the field name, so both
// "message" and "error" are accepted.
func decodeServerMessage(body io.Reader) string {
	payload, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(payload) == 0 {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
