package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yjleow/wbgt-bot/internal/bot"
	"github.com/yjleow/wbgt-bot/internal/wbgt/upstream"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	// BotToken authenticates against the Telegram Bot API. Required;
	// without it the process must not begin serving.
	BotToken string

	// Mode selects the interactive station picker or the broadcast policy.
	Mode bot.Mode

	// APIBaseURL is the upstream weather endpoint.
	APIBaseURL string

	// HTTPTimeout bounds every outbound HTTP call; the upstream contract
	// guarantees none.
	HTTPTimeout time.Duration

	// Port serves the liveness endpoint.
	Port string

	// KeepAliveInterval is how often the liveness URL is self-pinged to
	// keep a free-tier host from idling the instance out. 0 disables.
	KeepAliveInterval time.Duration
	KeepAliveURL      string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.BotToken = os.Getenv("BOT_TOKEN")
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is not set")
	}

	switch mode := bot.Mode(getenvDefault("BOT_MODE", string(bot.ModeInteractive))); mode {
	case bot.ModeInteractive, bot.ModeBroadcast:
		cfg.Mode = mode
	default:
		return nil, fmt.Errorf("invalid BOT_MODE %q: use %q or %q", mode, bot.ModeInteractive, bot.ModeBroadcast)
	}

	cfg.APIBaseURL = getenvDefault("WBGT_API_URL", upstream.DefaultBaseURL)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "10000")

	keepAliveStr := getenvDefault("KEEPALIVE_INTERVAL", "10m")
	keepAlive, err := time.ParseDuration(keepAliveStr)
	if err != nil {
		return nil, fmt.Errorf("invalid KEEPALIVE_INTERVAL: %w", err)
	}
	cfg.KeepAliveInterval = keepAlive
	cfg.KeepAliveURL = getenvDefault("KEEPALIVE_URL", fmt.Sprintf("http://127.0.0.1:%s/", cfg.Port))

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
