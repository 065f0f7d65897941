package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/finspider/models"
)

// Config holds all application configuration.
type Config struct {
	LLM     LLMConfig
	Browser BrowserConfig
	Scraper ScraperConfig
	Retry   RetryConfig
	Output  OutputConfig
	Log     LogConfig
}

// LLMConfig controls access to the text-understanding service.
type LLMConfig struct {
	// APIKey authenticates against the OpenAI-compatible API.
	APIKey string

	// Model is the chat model used for extraction.
	Model string // default: "gpt-4o-mini"

	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	// Any OpenAI-compatible provider works.
	BaseURL string

	// RequestsPerSecond paces extraction calls.
	RequestsPerSecond float64 // default: 2

	// Burst is the limiter burst size.
	Burst int // default: 4
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// Bin overrides the Chromium binary path.
	Bin string

	// Proxy is an optional proxy URL for all navigation.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// ViewportWidth/ViewportHeight size the emulated viewport.
	ViewportWidth  int // default: 1440
	ViewportHeight int // default: 900
}

// ScraperConfig controls page interaction behavior.
type ScraperConfig struct {
	// NavigationTimeout is the max time for a single page navigation.
	NavigationTimeout time.Duration // default: 60s

	// ActionTimeout is the per-interaction deadline (scroll, click, wait).
	ActionTimeout time.Duration // default: 10s

	// SettleDelay is the pause after navigation/interaction that lets
	// lazily rendered widgets finish.
	SettleDelay time.Duration // default: 2s

	// BlockedResourceTypes lists browser resource types never fetched.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// RetryConfig is the extraction retry policy: bounded attempts with
// exponential backoff and jitter.
type RetryConfig struct {
	Attempts  int           // default: 3
	BaseDelay time.Duration // default: 1s
	MaxDelay  time.Duration // default: 15s
}

// OutputConfig controls artifact persistence.
type OutputConfig struct {
	// Dir is the artifact root; one subdirectory per entity.
	Dir string // default: "data"

	// Format is the artifact encoding: "csv", "parquet" or "json".
	Format string // default: "csv"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		LLM: LLMConfig{
			APIKey:            os.Getenv("OPENAI_API_KEY"),
			Model:             envOr("FINSPIDER_MODEL", "gpt-4o-mini"),
			BaseURL:           envOr("FINSPIDER_LLM_BASE_URL", "https://api.openai.com/v1"),
			RequestsPerSecond: envFloatOr("FINSPIDER_LLM_RPS", 2.0),
			Burst:             envIntOr("FINSPIDER_LLM_BURST", 4),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("FINSPIDER_HEADLESS", true),
			Bin:            os.Getenv("FINSPIDER_BROWSER_BIN"),
			Proxy:          os.Getenv("FINSPIDER_PROXY"),
			NoSandbox:      envBoolOr("FINSPIDER_NO_SANDBOX", false),
			ViewportWidth:  envIntOr("FINSPIDER_VIEWPORT_WIDTH", 1440),
			ViewportHeight: envIntOr("FINSPIDER_VIEWPORT_HEIGHT", 900),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("FINSPIDER_NAV_TIMEOUT", 60*time.Second),
			ActionTimeout:     envDurationOr("FINSPIDER_ACTION_TIMEOUT", 10*time.Second),
			SettleDelay:       envDurationOr("FINSPIDER_SETTLE_DELAY", 2*time.Second),
			BlockedResourceTypes: envSliceOr("FINSPIDER_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Retry: RetryConfig{
			Attempts:  envIntOr("FINSPIDER_RETRY_ATTEMPTS", 3),
			BaseDelay: envDurationOr("FINSPIDER_RETRY_BASE_DELAY", time.Second),
			MaxDelay:  envDurationOr("FINSPIDER_RETRY_MAX_DELAY", 15*time.Second),
		},
		Output: OutputConfig{
			Dir:    envOr("FINSPIDER_OUTPUT_DIR", "data"),
			Format: strings.ToLower(envOr("FINSPIDER_OUTPUT_FORMAT", "csv")),
		},
		Log: LogConfig{
			Level:  envOr("FINSPIDER_LOG_LEVEL", "info"),
			Format: envOr("FINSPIDER_LOG_FORMAT", "text"),
		},
	}
}

// Validate surfaces configuration problems before any navigation begins.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return models.NewScrapeError(
			models.ErrCodeConfiguration,
			"OPENAI_API_KEY is not set",
			nil,
		)
	}
	switch c.Output.Format {
	case "csv", "parquet", "json":
	default:
		return models.NewScrapeError(
			models.ErrCodeConfiguration,
			"FINSPIDER_OUTPUT_FORMAT must be csv, parquet or json, got "+c.Output.Format,
			nil,
		)
	}
	if c.Retry.Attempts < 1 {
		return models.NewScrapeError(
			models.ErrCodeConfiguration,
			"FINSPIDER_RETRY_ATTEMPTS must be >= 1",
			nil,
		)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
