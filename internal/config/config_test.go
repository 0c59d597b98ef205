package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsEmptyHTTPAddr(t *testing.T) {
	cfg := Defaults()
	cfg.HTTPAddr = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeTitleSim(t *testing.T) {
	cfg := Defaults()
	cfg.TitleSim = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidate_KalshiCredentialsMustBePaired(t *testing.T) {
	cfg := Defaults()
	cfg.KalshiKeyID = "key-id"
	cfg.KalshiKeyPath = ""
	assert.Error(t, cfg.Validate())

	cfg.KalshiKeyPath = "/path/to/key.pem"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TelegramCredentialsMustBePaired(t *testing.T) {
	cfg := Defaults()
	cfg.TelegramBotToken = "token"
	assert.Error(t, cfg.Validate())

	cfg.TelegramChatID = "chat-id"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestRedacted_HidesCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.KalshiKeyID = "secret-id"
	cfg.KalshiKeyPath = "/secret/path.pem"
	cfg.DiscordWebhookURL = "https://discord.example/webhook"

	out := Redacted(cfg)
	assert.Equal(t, redactedPlaceholder, out.KalshiKeyID)
	assert.Equal(t, redactedPlaceholder, out.KalshiKeyPath)
	assert.Equal(t, redactedPlaceholder, out.DiscordWebhookURL)
	assert.Equal(t, "secret-id", cfg.KalshiKeyID, "Redacted must not mutate its argument")
}
