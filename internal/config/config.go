package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel string
	LogFile  string

	CatalogPath string
	TempDir     string
	DryRun      bool

	AIProvider     string
	AIModel        string
	AITemperature  float64
	AIRatePerMin   int
	OllamaURL      string
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	BackendTimeout time.Duration

	OCRNativeCommand string
	OCRNativeArgs    string
	OCRTesseractPath string
	OCRLanguages     string
	PDFRasterizerCmd string
	PDFRasterDPI     int
	ImageMaxWidth    int

	TagSettleDelay time.Duration

	JournalDSN string

	RedisURL         string
	DecisionCacheTTL time.Duration

	NATSURL           string
	NATSOrganizeSubj  string
	NATSOrganizedSubj string
	WatchSettleDelay  time.Duration
	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),
		LogFile:  mustEnv("APP_LOG_FILE", ""),

		CatalogPath: mustEnv("ORGANIZER_CONFIG", "./config.yaml"),
		TempDir:     mustEnv("ORGANIZER_TEMP_DIR", os.TempDir()),
		DryRun:      mustEnvBool("ORGANIZER_DRY_RUN", false),

		AIProvider:     mustEnv("AI_PROVIDER", "ollama"),
		AIModel:        mustEnv("AI_MODEL", "llama3.1:8b"),
		AITemperature:  mustEnvFloat("AI_TEMPERATURE", 0.1),
		AIRatePerMin:   mustEnvInt("AI_RATE_PER_MINUTE", 30),
		OllamaURL:      mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OpenAIBaseURL:  mustEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:   mustEnv("OPENAI_API_KEY", ""),
		BackendTimeout: mustEnvDuration("AI_TIMEOUT", 120*time.Second),

		OCRNativeCommand: mustEnv("OCR_NATIVE_CMD", ""),
		OCRNativeArgs:    mustEnv("OCR_NATIVE_ARGS", "--accurate --language-correction {image}"),
		OCRTesseractPath: mustEnv("OCR_TESSERACT_PATH", "tesseract"),
		OCRLanguages:     mustEnv("OCR_LANGUAGES", "por+eng"),
		PDFRasterizerCmd: mustEnv("PDF_RASTERIZER_CMD", "pdftoppm"),
		PDFRasterDPI:     mustEnvInt("PDF_RASTER_DPI", 200),
		ImageMaxWidth:    mustEnvInt("IMAGE_MAX_WIDTH", 3000),

		TagSettleDelay: mustEnvDuration("TAG_SETTLE_DELAY", 2*time.Second),

		JournalDSN: mustEnv("JOURNAL_DSN", ""),

		RedisURL:         mustEnv("REDIS_URL", ""),
		DecisionCacheTTL: mustEnvDuration("DECISION_CACHE_TTL", 24*time.Hour),

		NATSURL:           mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSOrganizeSubj:  mustEnv("NATS_ORGANIZE_SUBJECT", "files.organize"),
		NATSOrganizedSubj: mustEnv("NATS_ORGANIZED_SUBJECT", "files.organized"),
		WatchSettleDelay:  mustEnvDuration("WATCH_SETTLE_DELAY", 3*time.Second),
		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
