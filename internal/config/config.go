package config

import (
	"os"
	"strconv"
	"time"
)

// ClientConfig holds settings for the terminal workspace client.
type ClientConfig struct {
	GatewayURL        string
	HTTPTimeout       time.Duration
	SessionDBPath     string
	DeviceTag         string
	PresenceRefresh   time.Duration
	HeartbeatInterval time.Duration
	PageSize          int
	MessageLimit      int
	CommandPrefix     string
}

// LoadClientConfig builds the client configuration from environment variables with sensible defaults.
func LoadClientConfig() ClientConfig {
	prefix := envOrDefault("CHATDECK_COMMAND_PREFIX", "/")
	if prefix == "" {
		prefix = "/"
	}
	return ClientConfig{
		GatewayURL:        envOrDefault("CHATDECK_GATEWAY_URL", "http://localhost:8080/gateway"),
		HTTPTimeout:       envDuration("CHATDECK_HTTP_TIMEOUT", 30*time.Second),
		SessionDBPath:     envOrDefault("CHATDECK_SESSION_DB", "chatdeck.db"),
		DeviceTag:         envOrDefault("CHATDECK_DEVICE_TAG", "cli"),
		PresenceRefresh:   envDuration("CHATDECK_PRESENCE_REFRESH", 45*time.Second),
		HeartbeatInterval: envDuration("CHATDECK_HEARTBEAT_INTERVAL", 60*time.Second),
		PageSize:          envInt("CHATDECK_PAGE_SIZE", 50),
		MessageLimit:      envInt("CHATDECK_MESSAGE_LIMIT", 100),
		CommandPrefix:     prefix,
	}
}

func envOrDefault(key, value string) string {
	if env, ok := os.LookupEnv(key); ok {
		return env
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(env); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(key string, def int) int {
	if env, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(env); err == nil {
			return parsed
		}
	}
	return def
}
