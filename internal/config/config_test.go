package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "http://localhost:8080", cfg.ServerURL)
	require.True(t, cfg.ConfirmDelete)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.False(t, cfg.LogConsole)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ZEBRA_SERVER_URL", "https://zebra.example.com")
	t.Setenv("ZEBRA_LOG_LEVEL", "DEBUG")
	t.Setenv("ZEBRA_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	require.Equal(t, "https://zebra.example.com", cfg.ServerURL)
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.True(t, cfg.LogConsole)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := &Config{
		ServerURL:     "https://zebra.example.com",
		ConfirmDelete: false,
		LogLevel:      "WARN",
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Equal(t, cfg.ServerURL, back.ServerURL)
	require.False(t, back.ConfirmDelete)
	require.Equal(t, "WARN", back.LogLevel)
}

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte("server_url: https://other.example.com\n"), cfg))
	require.Equal(t, "https://other.example.com", cfg.ServerURL)
	require.Equal(t, "INFO", cfg.LogLevel, "unset keys keep their defaults")
}
