package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the final Config by layering, in order: the built-in
// defaults, an optional TOML file at path (skipped entirely if path is
// empty or the file does not exist), a .env file in the working
// directory (silently ignored if missing), and finally the environment
// variables named below. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: decode %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads the operator-facing environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.HTTPAddr, "HTTP_ADDR")
	setFloat64(&cfg.EdgeMinRORPct, "EDGE_MIN_ROR_PCT")
	setFloat64(&cfg.TitleSim, "TITLE_SIM")
	setInt(&cfg.TimeWindowH, "TIME_WINDOW_H")
	setStr(&cfg.PMWSURL, "PM_WS_URL")
	setInt(&cfg.PMChunk, "PM_CHUNK")
	setStr(&cfg.KalshiKeyID, "KALSHI_KEY_ID")
	setStr(&cfg.KalshiKeyPath, "KALSHI_PRIVATE_KEY_PATH")
	setStr(&cfg.LogLevel, "LOG_LEVEL")
	setStr(&cfg.DiscordWebhookURL, "DISCORD_WEBHOOK_URL")
	setStr(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.TelegramChatID, "TELEGRAM_CHAT_ID")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
