// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/jsonvalue"
)

// MaxResponseBytes caps the response body the client will read.
const MaxResponseBytes = 8 << 20

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the webhook client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeStatus
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeRateLimited
	ErrTypeNotConfigured
)

// Sentinel errors for easy checking.
var (
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "Request timed out"}
	ErrCanceled      = &ClientError{Type: ErrTypeCanceled, Message: "Request cancelled"}
	ErrRateLimited   = &ClientError{Type: ErrTypeRateLimited, Message: "Too many requests, wait a moment and try again"}
	ErrNotConfigured = &ClientError{Type: ErrTypeNotConfigured, Message: "Webhook URL is not configured"}
)

// StatusError builds the error for a non-2xx response.
func StatusError(code int) *ClientError {
	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    fmt.Sprintf("Server error: %d", code),
		StatusCode: code,
	}
}

// IsType reports whether err is a *ClientError of type t.
func IsType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool { return IsType(err, ErrTypeTimeout) }

// IsCanceled checks if an error is a cancellation.
func IsCanceled(err error) bool { return IsType(err, ErrTypeCanceled) }

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the webhook client.
type Config struct {
	// URL receives the POST
	URL string

	// Username and Password are sent as HTTP Basic credentials
	Username string
	Password string

	// Timeout bounds a single request (default: 60s)
	Timeout time.Duration

	// RateLimitPerMinute caps requests; 0 disables the limit
	RateLimitPerMinute int
}

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// ConfigFrom converts the webhook section of the app config.
func ConfigFrom(cfg config.WebhookConfig) Config {
	return Config{
		URL:                cfg.URL,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Timeout:            cfg.Timeout(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts queries to the webhook.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := webhook.NewClient(webhook.ConfigFrom(cfg.Webhook), logger)
//	body, err := client.Ask(ctx, "What is the capital of France?")
type Client struct {
	mu         sync.RWMutex
	config     Config
	limiter    *rate.Limiter
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a webhook client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				MaxIdleConns:          4,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
		log: log.Named("webhook"),
	}
	c.Reconfigure(cfg)
	return c
}

// Reconfigure swaps endpoint, credentials and limits. Requests already in
// flight keep the settings they started with.
func (c *Client) Reconfigure(cfg Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute)
	}

	c.mu.Lock()
	c.config = cfg
	c.limiter = limiter
	c.mu.Unlock()

	c.log.Debug("webhook configured",
		zap.String("url", cfg.URL),
		zap.Bool("auth", cfg.Username != ""),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("rate_limit_per_minute", cfg.RateLimitPerMinute))
}

// Config returns the active configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Close drops idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// askRequest is the POST body.
type askRequest struct {
	Query string `json:"query"`
}

// Ask posts query and returns the decoded response body.
func (c *Client) Ask(ctx context.Context, query string) (jsonvalue.Value, error) {
	c.mu.RLock()
	cfg := c.config
	limiter := c.limiter
	c.mu.RUnlock()

	if cfg.URL == "" {
		return jsonvalue.Value{}, ErrNotConfigured
	}
	if limiter != nil && !limiter.Allow() {
		return jsonvalue.Value{}, ErrRateLimited
	}

	body, err := json.Marshal(askRequest{Query: query})
	if err != nil {
		return jsonvalue.Value{}, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return jsonvalue.Value{}, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cfg.Username != "" || cfg.Password != "" {
		req.SetBasicAuth(cfg.Username, cfg.Password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return jsonvalue.Value{}, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return jsonvalue.Value{}, c.transportError(ctx, err)
	}

	c.log.Debug("webhook responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return jsonvalue.Value{}, StatusError(resp.StatusCode)
	}
	if len(data) > MaxResponseBytes {
		return jsonvalue.Value{}, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "Invalid response from server",
			Cause:   fmt.Errorf("body exceeds %d bytes", MaxResponseBytes),
		}
	}

	value, err := jsonvalue.Decode(data)
	if err != nil {
		return jsonvalue.Value{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "Invalid response from server", Cause: err}
	}
	return value, nil
}

// transportError classifies a failure that happened before a full response
// was read.
func (c *Client) transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		c.log.Warn("webhook request timed out")
		return ErrTimeout
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return ErrCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	c.log.Warn("webhook unreachable", zap.Error(err))
	return &ClientError{Type: ErrTypeConnection, Message: "Failed to reach webhook", Cause: err}
}
