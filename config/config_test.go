package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	t.Setenv("MQ_BACKEND", "")

	cfg := LoadConfig()
	if cfg.ServerPort != 8080 {
		t.Fatalf("unexpected port: %d", cfg.ServerPort)
	}
	if cfg.Session.TTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl: %s", cfg.Session.TTL)
	}
	if cfg.MQ.Backend != "" {
		t.Fatalf("expected mq disabled, got %q", cfg.MQ.Backend)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MEDIA_PUBLIC_BASE_URL", "https://cdn.example.com/media/")

	cfg := LoadConfig()
	if cfg.ServerPort != 9090 {
		t.Fatalf("unexpected port: %d", cfg.ServerPort)
	}
	if cfg.Session.Backend != "redis" {
		t.Fatalf("unexpected session backend: %q", cfg.Session.Backend)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("unexpected session ttl: %s", cfg.Session.TTL)
	}
	if !cfg.Minio.UseSSL {
		t.Fatalf("expected minio ssl enabled")
	}
	if cfg.Storage.PublicBaseURL != "https://cdn.example.com/media" {
		t.Fatalf("unexpected public base url: %q", cfg.Storage.PublicBaseURL)
	}
}
