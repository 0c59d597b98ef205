package config

// Redacted returns a copy of cfg with credential fields replaced by a
// placeholder. Use this when logging the active configuration so
// credentials never end up in process logs.
func Redacted(cfg Config) Config {
	out := cfg
	redact(&out.KalshiKeyID)
	redact(&out.KalshiKeyPath)
	redact(&out.DiscordWebhookURL)
	redact(&out.TelegramBotToken)
	return out
}

const redactedPlaceholder = "***"

func redact(s *string) {
	if *s != "" {
		*s = redactedPlaceholder
	}
}
