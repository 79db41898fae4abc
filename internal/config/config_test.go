package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, `
portal:
  base_url: "https://portal.test"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Portal.APIPrefix != "/api/v1/student" {
		t.Errorf("api prefix = %q", cfg.Portal.APIPrefix)
	}
	if cfg.Portal.TokenHeader != "x-student-token" {
		t.Errorf("token header = %q", cfg.Portal.TokenHeader)
	}
	if cfg.Portal.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Portal.Timeout)
	}
	if cfg.Session.Backend != "file" {
		t.Errorf("session backend = %q", cfg.Session.Backend)
	}
	if cfg.Camera.JPEGQuality != 90 {
		t.Errorf("jpeg quality = %d", cfg.Camera.JPEGQuality)
	}
	if cfg.Redis.ArchiveQueue != "capture:archive" {
		t.Errorf("archive queue = %q", cfg.Redis.ArchiveQueue)
	}
	if cfg.Server.RefreshInterval != 5*time.Minute {
		t.Errorf("refresh interval = %v", cfg.Server.RefreshInterval)
	}
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	writeConfig(t, `
server:
  port: 8080
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted config without portal base_url")
	}
}

func TestLoadRejectsBadSessionBackend(t *testing.T) {
	writeConfig(t, `
portal:
  base_url: "https://portal.test"
session:
  backend: "memcached"
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown session backend")
	}
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{}
	cfg.Redis.Host = "localhost"
	cfg.Redis.Port = 6379
	if got := cfg.RedisAddr(); got != "localhost:6379" {
		t.Errorf("RedisAddr() = %q", got)
	}
}
