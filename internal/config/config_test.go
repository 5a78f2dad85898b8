package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadClientConfigDefaults(t *testing.T) {
	cfg := LoadClientConfig()
	require.Equal(t, "http://localhost:8080/gateway", cfg.GatewayURL)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "chatdeck.db", cfg.SessionDBPath)
	require.Equal(t, "cli", cfg.DeviceTag)
	require.Equal(t, 45*time.Second, cfg.PresenceRefresh)
	require.Equal(t, 60*time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 50, cfg.PageSize)
	require.Equal(t, 100, cfg.MessageLimit)
	require.Equal(t, "/", cfg.CommandPrefix)
}

func TestLoadClientConfigEnvOverrides(t *testing.T) {
	t.Setenv("CHATDECK_GATEWAY_URL", "https://chat.example.com/gateway")
	t.Setenv("CHATDECK_HTTP_TIMEOUT", "10s")
	t.Setenv("CHATDECK_PAGE_SIZE", "25")
	t.Setenv("CHATDECK_PRESENCE_REFRESH", "1m")

	cfg := LoadClientConfig()
	require.Equal(t, "https://chat.example.com/gateway", cfg.GatewayURL)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 25, cfg.PageSize)
	require.Equal(t, time.Minute, cfg.PresenceRefresh)
}

func TestLoadClientConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CHATDECK_HTTP_TIMEOUT", "soon")
	t.Setenv("CHATDECK_PAGE_SIZE", "many")

	cfg := LoadClientConfig()
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 50, cfg.PageSize)
}
