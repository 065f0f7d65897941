package config

import (
	"testing"
	"time"

	"github.com/use-agent/finspider/models"
)

func validConfig() *Config {
	cfg := Load()
	cfg.LLM.APIKey = "test-key"
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"FINSPIDER_MODEL", "FINSPIDER_LLM_BASE_URL", "FINSPIDER_HEADLESS",
		"FINSPIDER_NAV_TIMEOUT", "FINSPIDER_OUTPUT_DIR", "FINSPIDER_OUTPUT_FORMAT",
		"FINSPIDER_RETRY_ATTEMPTS", "FINSPIDER_BLOCKED_RESOURCES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("default base URL = %q", cfg.LLM.BaseURL)
	}
	if !cfg.Browser.Headless {
		t.Error("browser must default to headless")
	}
	if cfg.Scraper.NavigationTimeout != 60*time.Second {
		t.Errorf("default nav timeout = %v", cfg.Scraper.NavigationTimeout)
	}
	if cfg.Output.Dir != "data" || cfg.Output.Format != "csv" {
		t.Errorf("default output = %+v", cfg.Output)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("default retry attempts = %d", cfg.Retry.Attempts)
	}
	if len(cfg.Scraper.BlockedResourceTypes) != 3 {
		t.Errorf("default blocked resources = %v", cfg.Scraper.BlockedResourceTypes)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FINSPIDER_MODEL", "gpt-4o")
	t.Setenv("FINSPIDER_HEADLESS", "false")
	t.Setenv("FINSPIDER_NAV_TIMEOUT", "90s")
	t.Setenv("FINSPIDER_OUTPUT_FORMAT", "PARQUET")
	t.Setenv("FINSPIDER_RETRY_ATTEMPTS", "5")
	t.Setenv("FINSPIDER_BLOCKED_RESOURCES", "Image, Media")

	cfg := Load()
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Browser.Headless {
		t.Error("headless override not applied")
	}
	if cfg.Scraper.NavigationTimeout != 90*time.Second {
		t.Errorf("nav timeout = %v", cfg.Scraper.NavigationTimeout)
	}
	if cfg.Output.Format != "parquet" {
		t.Errorf("format must be lowercased, got %q", cfg.Output.Format)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("retry attempts = %d", cfg.Retry.Attempts)
	}
	got := cfg.Scraper.BlockedResourceTypes
	if len(got) != 2 || got[0] != "Image" || got[1] != "Media" {
		t.Errorf("blocked resources = %v", got)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("FINSPIDER_RETRY_ATTEMPTS", "many")
	t.Setenv("FINSPIDER_NAV_TIMEOUT", "soon")
	t.Setenv("FINSPIDER_HEADLESS", "yep")

	cfg := Load()
	if cfg.Retry.Attempts != 3 {
		t.Errorf("retry attempts = %d, want default 3", cfg.Retry.Attempts)
	}
	if cfg.Scraper.NavigationTimeout != 60*time.Second {
		t.Errorf("nav timeout = %v, want default 60s", cfg.Scraper.NavigationTimeout)
	}
	if !cfg.Browser.Headless {
		t.Error("unparsable bool must keep the default")
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg = validConfig()
	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); !models.IsCode(err, models.ErrCodeConfiguration) {
		t.Errorf("missing key: expected CONFIGURATION_INVALID, got %v", err)
	}

	cfg = validConfig()
	cfg.Output.Format = "xml"
	if err := cfg.Validate(); !models.IsCode(err, models.ErrCodeConfiguration) {
		t.Errorf("bad format: expected CONFIGURATION_INVALID, got %v", err)
	}

	cfg = validConfig()
	cfg.Retry.Attempts = 0
	if err := cfg.Validate(); !models.IsCode(err, models.ErrCodeConfiguration) {
		t.Errorf("zero attempts: expected CONFIGURATION_INVALID, got %v", err)
	}
}
