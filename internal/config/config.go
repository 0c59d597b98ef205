// Package config defines the application's configuration and its
// validation rules. Fields are populated from an optional TOML file and
// then overridden by the environment variables (also read from a .env
// file) listed in applyEnvOverrides in loader.go.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure.
type Config struct {
	HTTPAddr      string  `toml:"http_addr"`
	EdgeMinRORPct float64 `toml:"edge_min_ror_pct"`
	TitleSim      float64 `toml:"title_sim"`
	TimeWindowH   int     `toml:"time_window_h"`
	PMWSURL       string  `toml:"pm_ws_url"`
	PMChunk       int     `toml:"pm_chunk"`
	KalshiKeyID   string  `toml:"kalshi_key_id"`
	KalshiKeyPath string  `toml:"kalshi_private_key_path"`
	LogLevel      string  `toml:"log_level"`

	DiscordWebhookURL string `toml:"discord_webhook_url"`
	TelegramBotToken  string `toml:"telegram_bot_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
}

// Defaults returns a Config populated with the operator-facing defaults
// for every environment variable that does not require a value.
func Defaults() Config {
	return Config{
		HTTPAddr:      ":8080",
		EdgeMinRORPct: 3.0,
		TitleSim:      0.60,
		TimeWindowH:   168,
		PMWSURL:       "wss://ws-subscriptions-clob.polymarket.com/ws/market",
		PMChunk:       400,
		KalshiKeyID:   "",
		KalshiKeyPath: "",
		LogLevel:      "info",

		DiscordWebhookURL: "",
		TelegramBotToken:  "",
		TelegramChatID:    "",
	}
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks Config for invalid values and returns a combined error
// describing every problem found. A disabled Kalshi venue (key id and key
// path both empty) is not a validation error: it is a supported deployment
// mode. Setting only one of the two is an error.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTPAddr == "" {
		errs = append(errs, "http_addr must not be empty")
	}
	if c.EdgeMinRORPct < 0 {
		errs = append(errs, "edge_min_ror_pct must be >= 0")
	}
	if c.TitleSim < 0 || c.TitleSim > 1 {
		errs = append(errs, "title_sim must be between 0 and 1")
	}
	if c.TimeWindowH <= 0 {
		errs = append(errs, "time_window_h must be > 0")
	}
	if c.PMWSURL == "" {
		errs = append(errs, "pm_ws_url must not be empty")
	}
	if c.PMChunk <= 0 {
		errs = append(errs, "pm_chunk must be > 0")
	}
	if (c.KalshiKeyID == "") != (c.KalshiKeyPath == "") {
		errs = append(errs, "kalshi_key_id and kalshi_private_key_path must be set together or both left empty")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		errs = append(errs, "telegram_bot_token and telegram_chat_id must be set together or both left empty")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
