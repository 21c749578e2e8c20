// Package meetings calls the backend endpoints that start and stop the AI
// agent for a meeting.
package meetings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/meeting-assistant/internal/config"
	"github.com/lexiqai/meeting-assistant/internal/observability"
	"github.com/lexiqai/meeting-assistant/internal/resilience"
)

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client is the start-ai / stop-ai REST client
type Client struct {
	baseURL        string
	httpClient     *http.Client
	retryConfig    *resilience.RetryConfig
	circuitBreaker *resilience.CircuitBreaker
	logger         zerolog.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	cb := resilience.NewCircuitBreaker("meetings_api", cfg.CircuitBreakerMaxFailures, cfg.CircuitBreakerResetTimeout)
	cb.OnStateChange(func(name string, state resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(state))
	})

	logger = logger.With().Str("component", "meetings_api").Logger()
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		retryConfig: &resilience.RetryConfig{
			MaxAttempts:       cfg.RetryMaxAttempts,
			InitialBackoff:    cfg.RetryInitialBackoff,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2.0,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("Retrying backend request")
			},
		},
		circuitBreaker: cb,
		logger:         logger,
	}
}

// StartAI asks the backend to begin producing suggestion traffic
func (c *Client) StartAI(ctx context.Context, meetingID string) error {
	return c.post(ctx, "start_ai", meetingID, "start-ai")
}

// StopAI asks the backend to stop producing suggestion traffic
func (c *Client) StopAI(ctx context.Context, meetingID string) error {
	return c.post(ctx, "stop_ai", meetingID, "stop-ai")
}

// HealthCheck reports whether the breaker currently lets requests through
func (c *Client) HealthCheck(ctx context.Context) (bool, error) {
	if c.circuitBreaker.GetState() == resilience.StateOpen {
		return false, resilience.ErrCircuitOpen
	}
	return true, nil
}

func (c *Client) post(ctx context.Context, op, meetingID, action string) error {
	if meetingID == "" {
		return fmt.Errorf("%s: meeting id is required", op)
	}
	endpoint := fmt.Sprintf("%s/api/meetings/%s/%s", c.baseURL, url.PathEscape(meetingID), action)

	return c.circuitBreaker.Call(func() error {
		return resilience.Retry(ctx, func(ctx context.Context) error {
			return c.do(ctx, op, endpoint)
		}, c.retryConfig, resilience.IsRetryableNetworkError)
	})
}

func (c *Client) do(ctx context.Context, op, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordAPIRequest(op, "error", time.Since(start).Seconds())
		c.logger.Warn().Err(err).Str("op", op).Msg("Backend request failed")
		return resilience.NewRetryableError(fmt.Errorf("%s: request failed: %w", op, err))
	}
	defer resp.Body.Close()
	observability.RecordAPIRequest(op, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info().Str("op", op).Int("status", resp.StatusCode).Msg("Backend request succeeded")
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return resilience.NewRetryableError(statusErr)
	}
	return statusErr
}
