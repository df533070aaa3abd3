package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DraftRetention != 30*24*time.Hour {
		t.Errorf("expected 30 day draft retention, got %s", cfg.DraftRetention)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		t.Error("expected a default CORS origin")
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_ORIGINS", "https://a.test, https://b.test ,")

	got := getEnvAsList("TEST_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Errorf("unexpected list: %v", got)
	}
}

func TestGetEnvAsIntMap(t *testing.T) {
	t.Setenv("TEST_CALENDARS", "1=101, 2=202")

	got := getEnvAsIntMap("TEST_CALENDARS", nil)
	if got["1"] != 101 || got["2"] != 202 {
		t.Errorf("unexpected map: %v", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "true")
	if !getEnvAsBool("TEST_FLAG", false) {
		t.Error("expected true")
	}
	if getEnvAsBool("TEST_MISSING_FLAG", false) {
		t.Error("expected default false")
	}
}
