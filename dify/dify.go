// Package dify implements the AI suggestion collaborator: a client for
// the Dify chat API that survives transient failures with bounded
// linear-backoff retries and degrades gracefully when the response body
// is not in the shape it hoped for.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/pkfare/tripscale/travel"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	maxSuggestions  = 5
	maxResponseSize = 1 << 20 // 1 MiB

	userAgent      = "TripScale-Backend/1.0"
	chatPath       = "/api/v1/chat-messages"
	healthPath     = "/health"
	defaultMessage = "AI-generated destination suggestions based on your preferences"
)

// Config holds the Dify endpoint and resilience settings.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the total number of attempts, not the retries after
	// the first.
	MaxRetries int
	// RetryDelay is the base backoff unit: attempt n waits n times this
	// before the next try.
	RetryDelay time.Duration
}

// Client implements travel.SuggestionService against the Dify API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ travel.SuggestionService = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client, filling unset Config fields with the
// package defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// GuessDestination asks the AI service to propose destinations from the
// user's inspirations. Client-class responses (400, 401) fail
// immediately; server-class and transport failures are retried with
// linear backoff until the attempt budget runs out. A successful HTTP
// exchange always yields at least one suggestion: parsing falls back to
// free-text extraction and finally to a fixed suggestion pair. Every
// successful result carries a freshly generated session identifier.
func (c *Client) GuessDestination(ctx context.Context, inspirations travel.Inspirations) (travel.GuessMeResult, error) {
	body, err := c.callWithRetry(ctx, buildPayload(inspirations))
	if err != nil {
		if ctx.Err() != nil {
			return travel.GuessMeResult{}, ctx.Err()
		}
		return travel.GuessMeResult{}, &travel.UnavailableError{Service: "dify", Err: err}
	}

	result := parseResponse(body)
	result.SessionID = uuid.NewString()
	return result, nil
}

// Healthy probes the service's health endpoint with a single request,
// reducing any failure to false.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+healthPath, nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("dify health check failed", slog.Any("error", err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// callWithRetry posts the payload, retrying on retryable failures. The
// wait before attempt n+1 is n times the base delay.
func (c *Client) callWithRetry(ctx context.Context, payload map[string]any) ([]byte, error) {
	var body []byte
	attempt := 0

	operation := func() error {
		attempt++
		data, err := c.post(ctx, payload)
		if err != nil {
			var sErr *statusError
			if errors.As(err, &sErr) && sErr.terminal() {
				c.logger.Warn("dify rejected request",
					slog.Int("status", sErr.code),
					slog.Int("attempt", attempt))
				return backoff.Permanent(err)
			}
			c.logger.Warn("dify call failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		body = data
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(c.cfg.RetryDelay), uint64(c.cfg.MaxRetries-1)),
		ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		var sErr *statusError
		if errors.As(err, &sErr) && sErr.terminal() {
			return nil, err
		}
		return nil, fmt.Errorf("call failed after %d attempts: %w", attempt, err)
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, payload map[string]any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+chatPath, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("User-Agent", userAgent)
}

// statusError is a non-2xx HTTP response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("dify returned status %d", e.code)
}

// terminal reports whether the status must not be retried.
func (e *statusError) terminal() bool {
	return e.code == http.StatusBadRequest || e.code == http.StatusUnauthorized
}

// linearBackOff waits base×1, base×2, base×3, ... between attempts.
// Linear, not exponential: the original service contract keys the wait
// to the attempt count.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func newLinearBackOff(base time.Duration) *linearBackOff {
	return &linearBackOff{base: base}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.base
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// buildPayload maps the inspirations onto the Dify request shape,
// omitting optional lists that are absent.
func buildPayload(inspirations travel.Inspirations) map[string]any {
	userContext := map[string]any{
		"age": inspirations.Age,
	}

	if len(inspirations.TravelStyle) > 0 {
		userContext["travel_style"] = inspirations.TravelStyle
	}

	if len(inspirations.RecentFocus) > 0 {
		focus := make([]map[string]any, len(inspirations.RecentFocus))
		for i, f := range inspirations.RecentFocus {
			focus[i] = map[string]any{
				"destination": f.Destination,
				"priority":    f.Priority,
			}
		}
		userContext["recent_focus"] = focus
	}

	if len(inspirations.Last5YearVisits) > 0 {
		visits := make([]map[string]any, len(inspirations.Last5YearVisits))
		for i, v := range inspirations.Last5YearVisits {
			visits[i] = map[string]any{
				"date":      v.Date,
				"locations": v.Locations,
			}
		}
		userContext["past_visits"] = visits
	}

	return map[string]any{
		"user_context":    userContext,
		"request_type":    "destination_suggestion",
		"max_suggestions": maxSuggestions,
	}
}
