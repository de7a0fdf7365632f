package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvVarBaseURL          = "MONITOR_BASE_URL"
	EnvVarCheckInterval    = "MONITOR_CHECK_INTERVAL_MS"
	EnvVarProbeTimeout     = "MONITOR_PROBE_TIMEOUT_MS"
	EnvVarHealthyThreshold = "MONITOR_HEALTHY_THRESHOLD"
	EnvVarMetricsCapacity  = "MONITOR_METRICS_CAPACITY"
	EnvVarAPIAddr          = "MONITOR_API_ADDR"
	EnvVarOptimisticStart  = "MONITOR_OPTIMISTIC_START"
	EnvVarTelegramToken    = "TELEGRAM_BOT_TOKEN"
	EnvVarTelegramChatID   = "TELEGRAM_CHAT_ID"
	EnvVarWebhookURL       = "MONITOR_WEBHOOK_URL"
)

const (
	DefaultCheckInterval    = 60 * time.Second
	DefaultProbeTimeout     = 30 * time.Second
	DefaultHealthyThreshold = 0.8
	DefaultMetricsCapacity  = 100
	DefaultShutdownTimeout  = 5 * time.Second
)

// LookupFunc resolves a configuration key, reporting whether it was set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config holds everything the monitor needs to run.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	// BaseURL is the root URL of the deployment under test, e.g. 'https://dduksang.com'.
	BaseURL string

	// CheckInterval is the pause between evaluation cycles in continuous mode.
	CheckInterval time.Duration

	// ProbeTimeout bounds each individual probe.
	ProbeTimeout time.Duration

	// HealthyThreshold is the inclusive minimum healthy ratio, in (0, 1].
	HealthyThreshold float64

	// MetricsCapacity is the number of samples retained per metric.
	MetricsCapacity int

	// ChecksFile optionally replaces the built-in checks.
	ChecksFile string

	// APIAddr enables the status API when not empty, e.g. '0.0.0.0:8090'.
	APIAddr string

	// CORSOrigins enables CORS on the status API for the given origins.
	CORSOrigins []string

	// ShutdownTimeout bounds graceful shutdown of the status API.
	ShutdownTimeout time.Duration

	// OptimisticStart reports the deployment as healthy until the first verdict arrives.
	OptimisticStart bool

	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string
}

// Option overrides a value after the environment has been read.
type Option func(*Config) error

// Load builds the configuration from the lookup function, applies the options, and validates the result.
// A nil lookup uses os.LookupEnv.
func Load(lookup LookupFunc, opts ...Option) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := &Config{
		CheckInterval:    DefaultCheckInterval,
		ProbeTimeout:     DefaultProbeTimeout,
		HealthyThreshold: DefaultHealthyThreshold,
		MetricsCapacity:  DefaultMetricsCapacity,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}

	env := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := env(EnvVarBaseURL); ok {
		cfg.BaseURL = v
	}
	if v, ok := env(EnvVarCheckInterval); ok {
		d, err := ParseMillis(EnvVarCheckInterval, v)
		if err != nil {
			return nil, err
		}
		cfg.CheckInterval = d
	}
	if v, ok := env(EnvVarProbeTimeout); ok {
		d, err := ParseMillis(EnvVarProbeTimeout, v)
		if err != nil {
			return nil, err
		}
		cfg.ProbeTimeout = d
	}
	if v, ok := env(EnvVarHealthyThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, NewErrInvalidValue(EnvVarHealthyThreshold, v)
		}
		cfg.HealthyThreshold = f
	}
	if v, ok := env(EnvVarMetricsCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, NewErrInvalidValue(EnvVarMetricsCapacity, v)
		}
		cfg.MetricsCapacity = n
	}
	if v, ok := env(EnvVarAPIAddr); ok {
		cfg.APIAddr = v
	}
	if v, ok := env(EnvVarOptimisticStart); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, NewErrInvalidValue(EnvVarOptimisticStart, v)
		}
		cfg.OptimisticStart = b
	}
	if v, ok := env(EnvVarTelegramToken); ok {
		cfg.TelegramBotToken = v
	}
	if v, ok := env(EnvVarTelegramChatID); ok {
		cfg.TelegramChatID = v
	}
	if v, ok := env(EnvVarWebhookURL); ok {
		cfg.WebhookURL = v
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field, naming the offending key in the returned error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return NewErrMissingValue(EnvVarBaseURL)
	}
	if !isHTTPURL(c.BaseURL) {
		return NewErrInvalidValue(EnvVarBaseURL, c.BaseURL)
	}
	if c.CheckInterval <= 0 {
		return NewErrInvalidValue(EnvVarCheckInterval, c.CheckInterval.String())
	}
	if c.ProbeTimeout <= 0 {
		return NewErrInvalidValue(EnvVarProbeTimeout, c.ProbeTimeout.String())
	}
	if c.HealthyThreshold <= 0 || c.HealthyThreshold > 1 {
		return NewErrInvalidValue(EnvVarHealthyThreshold, strconv.FormatFloat(c.HealthyThreshold, 'f', -1, 64))
	}
	if c.MetricsCapacity <= 0 {
		return NewErrInvalidValue(EnvVarMetricsCapacity, strconv.Itoa(c.MetricsCapacity))
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidValue)
	}

	hasToken := c.TelegramBotToken != ""
	hasChat := c.TelegramChatID != ""
	switch {
	case hasToken && !hasChat:
		return fmt.Errorf("%w (set together with '%s')", NewErrMissingValue(EnvVarTelegramChatID), EnvVarTelegramToken)
	case hasChat && !hasToken:
		return fmt.Errorf("%w (set together with '%s')", NewErrMissingValue(EnvVarTelegramToken), EnvVarTelegramChatID)
	}

	if c.WebhookURL != "" && !isHTTPURL(c.WebhookURL) {
		return NewErrInvalidValue(EnvVarWebhookURL, c.WebhookURL)
	}

	return nil
}

// TelegramEnabled reports whether Telegram alerting is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// APIEnabled reports whether the status API should be started.
func (c *Config) APIEnabled() bool {
	return c.APIAddr != ""
}

// WithBaseURL overrides the base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return NewErrMissingValue(EnvVarBaseURL)
		}
		c.BaseURL = baseURL
		return nil
	}
}

// WithCheckInterval overrides the interval between cycles.
func WithCheckInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return NewErrInvalidValue(EnvVarCheckInterval, d.String())
		}
		c.CheckInterval = d
		return nil
	}
}

// WithChecksFile sets the checks file, an empty path keeps the built-in checks.
func WithChecksFile(path string) Option {
	return func(c *Config) error {
		c.ChecksFile = strings.TrimSpace(path)
		return nil
	}
}

// WithAPIAddr overrides the status API address.
func WithAPIAddr(addr string) Option {
	return func(c *Config) error {
		c.APIAddr = strings.TrimSpace(addr)
		return nil
	}
}

// WithCORSOrigins enables CORS on the status API.
func WithCORSOrigins(origins ...string) Option {
	return func(c *Config) error {
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o == "" {
				continue
			}
			if o != "*" && !isHTTPURL(o) {
				return NewErrInvalidValue("cors-origin", o)
			}
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
		return nil
	}
}

// WithShutdownTimeout overrides the status API shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidValue)
		}
		c.ShutdownTimeout = d
		return nil
	}
}

// ParseMillis parses a positive whole number of milliseconds for key.
func ParseMillis(key string, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ms <= 0 {
		return 0, NewErrInvalidValue(key, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
