package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ErrMissingCredential is reported when the selected generation provider has no API key.
var ErrMissingCredential = errors.New("missing generation credential")

var ErrInvalidLimit = errors.New("invalid limit")

type Config struct {
	IsProd   bool
	LogLevel slog.Level

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	RedisAddr     string
	RedisPassword string

	AuthToken    string
	NoAuthBypass bool

	CorsAllowedOrigins []string
	MaxDocumentChars   int

	// DocumentsRoot confines the paths the MCP load_document tool may read. Empty rejects every path.
	DocumentsRoot string

	RateLimitPerSecond float64
	RateLimitBurst     int
}

func Load() *Config {
	return &Config{
		IsProd:             getEnvBool("IS_PROD", false),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "debug")),
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", GeminiModelName),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", OpenAIModelName),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", RedisAddr),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		AuthToken:          getEnv("AUTH_TOKEN", ""),
		NoAuthBypass:       getEnvBool("NO_AUTH_BYPASS", false),
		CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxDocumentChars:   getEnvInt("MAX_DOCUMENT_CHARS", DefaultMaxDocChars),
		DocumentsRoot:      getEnv("DOCUMENTS_ROOT", DefaultDocumentsRoot),
		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", RATE_LIMIT_PER_SECOND),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", BURST_RATE_LIMIT_PER_SECOND),
	}
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Validate does not abort startup: a missing key only disables generation.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%s: %w", c.LLMProvider, ErrMissingCredential)
	}
	return nil
}

// ValidateLimits checks the settings the server cannot run without. Unlike Validate, a
// failure here aborts startup: a loader with no size bound would accept any document.
func (c *Config) ValidateLimits() error {
	if c.MaxDocumentChars <= 0 {
		return fmt.Errorf("%w: MAX_DOCUMENT_CHARS must be positive, got %d", ErrInvalidLimit, c.MaxDocumentChars)
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive", ErrInvalidLimit)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
