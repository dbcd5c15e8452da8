package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Cookie.Name != "latest" {
		t.Errorf("expected default cookie name %q, got %q", "latest", cfg.Cookie.Name)
	}
	if cfg.CookieMaxAge() != 365*24*time.Hour {
		t.Errorf("expected cookie max age of a year, got %s", cfg.CookieMaxAge())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.walkthrough.yml")

	original := DefaultConfig()
	original.Port = 9090
	original.BasePath = "/course/"
	original.Data.Dir = "lessons"
	original.Render.RepoURL = "https://github.com/example/course"
	original.Watch.Enabled = true
	original.Watch.Patterns = []string{"**/*.md"}
	original.Data.Timeout = 3 * time.Second

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(original, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file should not error, got: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing file should give defaults (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	content := "port: 3000\ndata:\n  timeout: 2s\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3000 || cfg.Log.Level != "debug" || cfg.Data.Timeout != 2*time.Second {
		t.Errorf("overrides not applied: port %d level %q timeout %s", cfg.Port, cfg.Log.Level, cfg.Data.Timeout)
	}
	if cfg.Data.Dir != "data" || cfg.Cookie.Name != "latest" {
		t.Errorf("defaults lost: dir %q cookie %q", cfg.Data.Dir, cfg.Cookie.Name)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WALKTHROUGH_PORT", "7070")
	t.Setenv("WALKTHROUGH_DATA__URL", "https://example.com/data/")
	t.Setenv("WALKTHROUGH_COOKIE__NAME", "last_seen")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Port)
	}
	if cfg.Data.URL != "https://example.com/data/" || !cfg.Remote() {
		t.Errorf("data.url = %q", cfg.Data.URL)
	}
	if cfg.Cookie.Name != "last_seen" {
		t.Errorf("cookie.name = %q", cfg.Cookie.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = 0 }, "invalid port"},
		{"base path", func(c *Config) { c.BasePath = "course" }, "base_path"},
		{"no data", func(c *Config) { c.Data.Dir = "" }, "data.dir or data.url"},
		{"bad url", func(c *Config) { c.Data.URL = "ftp://x" }, "invalid data.url"},
		{"watch remote", func(c *Config) { c.Data.URL = "https://x"; c.Watch.Enabled = true }, "watch.enabled"},
		{"cookie name", func(c *Config) { c.Cookie.Name = "" }, "cookie.name"},
		{"cookie age", func(c *Config) { c.Cookie.MaxAgeDays = 0 }, "max_age_days"},
		{"rate window", func(c *Config) { c.Server.RateWindow = 0 }, "rate_window"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("WALKTHROUGH_RENDER__NO_VIDEO"); got != "render.no_video" {
		t.Errorf("envKey = %q", got)
	}
}
