package toolserver

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TOOLSERVER_PORT", "9191")
	t.Setenv("TOOLSERVER_LOG_LEVEL", "debug")
	t.Setenv("TOOLSERVER_METRICS_ENABLED", "false")
	t.Setenv("TOOLSERVER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	t.Setenv("TOOLSERVER_PORT", "not-a-port")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{
		Port:      0,
		LogLevel:  "loud",
		LogFormat: "xml",
	}
	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.Contains(msg, "port"))
	assert.True(t, strings.Contains(msg, "log_level"))
	assert.True(t, strings.Contains(msg, "log_format"))
}
