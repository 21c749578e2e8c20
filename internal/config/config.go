package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the meeting assistant host client
type Config struct {
	// Meeting to attach to. Usually supplied with --meeting on the command line.
	MeetingID string `envconfig:"MEETING_ID" default:""`

	// Backend REST API (start-ai / stop-ai)
	APIBaseURL  string        `envconfig:"API_BASE_URL" default:"https://backendgaap.azurewebsites.net"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	// Suggestion channel endpoint. The meeting id is appended as the last path segment.
	SuggestionsWSURL   string        `envconfig:"SUGGESTIONS_WS_URL" default:"wss://backendgaap.azurewebsites.net:8765"`
	WSHandshakeTimeout time.Duration `envconfig:"WS_HANDSHAKE_TIMEOUT" default:"10s"`

	// Reconnect policy for the suggestion channel.
	// A multiplier of 1 keeps the delay fixed; max attempts of 0 retries forever.
	ReconnectDelay       time.Duration `envconfig:"RECONNECT_DELAY" default:"3s"`
	ReconnectMultiplier  float64       `envconfig:"RECONNECT_MULTIPLIER" default:"1.0"`
	ReconnectMaxDelay    time.Duration `envconfig:"RECONNECT_MAX_DELAY" default:"30s"`
	ReconnectMaxAttempts int           `envconfig:"RECONNECT_MAX_ATTEMPTS" default:"0"`

	// Resilience configuration for REST calls
	CircuitBreakerMaxFailures  int           `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`
	CircuitBreakerResetTimeout time.Duration `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30s"`
	RetryMaxAttempts           int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff        time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"100ms"`

	// Alert side effect on new suggestions
	AlertMode   string `envconfig:"ALERT_MODE" default:"bell"` // bell, chime, none
	AlertOutput string `envconfig:"ALERT_OUTPUT" default:""`   // file or FIFO for chime PCM output
	Muted       bool   `envconfig:"MUTED" default:"false"`

	// Local panel API and archive. Empty disables them.
	PanelAddr   string `envconfig:"PANEL_ADDR" default:""`
	ArchivePath string `envconfig:"ARCHIVE_PATH" default:""`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Expose /metrics on the panel API
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that envconfig cannot express with tags
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.SuggestionsWSURL == "" {
		return fmt.Errorf("SUGGESTIONS_WS_URL is required")
	}
	if !strings.HasPrefix(c.SuggestionsWSURL, "ws://") && !strings.HasPrefix(c.SuggestionsWSURL, "wss://") {
		return fmt.Errorf("SUGGESTIONS_WS_URL must use ws:// or wss://, got %q", c.SuggestionsWSURL)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("RECONNECT_DELAY must be positive")
	}
	if c.ReconnectMultiplier < 1 {
		return fmt.Errorf("RECONNECT_MULTIPLIER must be >= 1")
	}
	if c.ReconnectMaxAttempts < 0 {
		return fmt.Errorf("RECONNECT_MAX_ATTEMPTS must not be negative")
	}
	switch c.AlertMode {
	case "bell", "chime", "none":
	default:
		return fmt.Errorf("ALERT_MODE must be one of bell, chime, none; got %q", c.AlertMode)
	}
	// Raw PCM on stdout would corrupt the terminal output
	if c.AlertMode == "chime" && c.AlertOutput == "" {
		return fmt.Errorf("ALERT_OUTPUT is required when ALERT_MODE is chime")
	}
	return nil
}
