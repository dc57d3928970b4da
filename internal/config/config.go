// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Configuration is the full service configuration, grouped by concern.
type Configuration struct {
	Service       ServiceConfig
	STT           STTConfig
	LLM           LLMConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds HTTP server settings.
type ServiceConfig struct {
	Name           string
	HTTPPort       string
	MaxUploadBytes int64
}

// STTConfig holds speech-to-text provider settings.
type STTConfig struct {
	Provider       string // assemblyai, whisper, google, mock
	AssemblyAIKey  string
	AssemblyAIBase string
	LanguageCode   string
	PollInterval   time.Duration
	Timeout        time.Duration
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicAnalyses string
	TopicTriggers string
	Principal     string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsPort string
}

// Load reads configuration from environment variables, applying defaults
// for anything unset or unparsable.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Name:           envOrDefault("SERVICE_NAME", "call-analysis"),
			HTTPPort:       envOrDefault("HTTP_PORT", "8080"),
			MaxUploadBytes: envInt64OrDefault("MAX_UPLOAD_BYTES", 25*1024*1024),
		},
		STT: STTConfig{
			Provider:       envOrDefault("STT_PROVIDER", "mock"),
			AssemblyAIKey:  os.Getenv("ASSEMBLYAI_API_KEY"),
			AssemblyAIBase: envOrDefault("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com"),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			PollInterval:   envDurationOrDefault("STT_POLL_INTERVAL", 2*time.Second),
			Timeout:        envDurationOrDefault("STT_TIMEOUT", 3*time.Minute),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   envOrDefault("LLM_MODEL", "gpt-4o-mini"),
		},
		Kafka: KafkaConfig{
			Enabled:       envBoolOrDefault("KAFKA_ENABLED", false),
			Brokers:       envListOrDefault("KAFKA_BROKERS", nil),
			TopicAnalyses: envOrDefault("KAFKA_TOPIC_ANALYSES", "call.analysis.completed"),
			TopicTriggers: envOrDefault("KAFKA_TOPIC_TRIGGERS", "call.trigger.booked"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", "svc-call-analysis"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt64OrDefault(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envBoolOrDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envListOrDefault(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
