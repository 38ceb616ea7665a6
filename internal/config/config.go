package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                int
	DatabaseURL         string
	NatsURL             string
	NatsToken           string
	LogLevel            string
	OpenAIAPIKey        string
	OpenAIModel         string
	OpenAIBaseURL       string
	EvalTimeout         time.Duration
	EvalRetries         int
	TranscribeTimeout   time.Duration
	AlertWebhookURL     string
	AlertScoreThreshold int
	RubricSeedPath      string
	RecordingsDir       string
	APIToken            string
}

func Load() Config {
	return Config{
		Port:                envInt("CALLAUDIT_PORT", 8460),
		DatabaseURL:         envStr("DATABASE_URL", ""),
		NatsURL:             envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:           envStr("NATS_TOKEN", ""),
		LogLevel:            envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:        envStr("OPENAI_API_KEY", ""),
		OpenAIModel:         envStr("CALLAUDIT_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       envStr("OPENAI_BASE_URL", ""),
		EvalTimeout:         time.Duration(envInt("EVAL_TIMEOUT_SECONDS", 60)) * time.Second,
		EvalRetries:         envInt("EVAL_RETRIES", 1),
		TranscribeTimeout:   time.Duration(envInt("TRANSCRIBE_TIMEOUT_SECONDS", 300)) * time.Second,
		AlertWebhookURL:     envStr("ALERT_WEBHOOK_URL", ""),
		AlertScoreThreshold: envInt("ALERT_SCORE_THRESHOLD", 50),
		RubricSeedPath:      envStr("RUBRIC_SEED_PATH", ""),
		RecordingsDir:       envStr("RECORDINGS_DIR", "/var/lib/callaudit/recordings"),
		APIToken:            envStr("CALLAUDIT_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
