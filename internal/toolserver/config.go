// Package toolserver hosts the simulated agent functions over HTTP so runs
// can be serviced by a remote function host instead of in-process callbacks.
package toolserver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config holds the function host settings.
type Config struct {
	Port                int
	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int
	IdleTimeoutSeconds  int

	LogLevel  string
	LogFormat string

	MetricsEnabled bool

	// AllowedOrigins configures CORS for browser-based callers.
	AllowedOrigins []string
}

// LoadConfig reads the TOOLSERVER_* environment variables with defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                8080,
		ReadTimeoutSeconds:  15,
		WriteTimeoutSeconds: 15,
		IdleTimeoutSeconds:  60,
		LogLevel:            "info",
		LogFormat:           "json",
		MetricsEnabled:      true,
		AllowedOrigins:      []string{"*"},
	}

	if v := os.Getenv("TOOLSERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse TOOLSERVER_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TOOLSERVER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TOOLSERVER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TOOLSERVER_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse TOOLSERVER_METRICS_ENABLED: %w", err)
		}
		cfg.MetricsEnabled = enabled
	}
	if v := os.Getenv("TOOLSERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate collects every configuration problem instead of stopping at the
// first one.
func (c Config) Validate() error {
	var result error

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", c.LogFormat))
	}
	if c.ReadTimeoutSeconds <= 0 || c.WriteTimeoutSeconds <= 0 || c.IdleTimeoutSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeouts must be greater than 0"))
	}
	if len(c.AllowedOrigins) == 0 {
		result = multierror.Append(result, fmt.Errorf("allowed_origins cannot be empty"))
	}

	return result
}

// ReadTimeout returns ReadTimeoutSeconds as a time.Duration.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns WriteTimeoutSeconds as a time.Duration.
func (c Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns IdleTimeoutSeconds as a time.Duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func splitAndTrim(v string) []string {
	var out []string
	for _, entry := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
