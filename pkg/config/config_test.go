package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/signboard/pkg/errors"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SIGNBOARD_ADDR", "SIGNBOARD_BASE_URL", "SIGNBOARD_CACHE_BACKEND", "SIGNBOARD_CACHE_DIR",
		"SIGNBOARD_REDIS_ADDR", "SIGNBOARD_SCRIPT_DIR", "SIGNBOARD_DEBOUNCE_MS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
[server]
addr = ":9000"
decode_cache_size = 32

[cache]
backend = "redis"
redis_addr = "redis:6379"
prefix = "lobby"
ttl = "48h"

[editor]
debounce_ms = 250

[theme]
accent = "#ff0000"

[widgets]
script_dir = "/etc/signboard/widgets"

[unknown]
ignored = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9000" || cfg.Server.DecodeCacheSize != 32 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.BaseURL != Default().Server.BaseURL {
		t.Errorf("BaseURL = %q, want default kept", cfg.Server.BaseURL)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Prefix != "lobby" || cfg.Cache.TTL.Duration != 48*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Editor.Debounce() != 250*time.Millisecond || cfg.Editor.OverflowRows != 4 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Theme.Accent != "#ff0000" || cfg.Theme.Background != Default().Theme.Background {
		t.Errorf("theme = %+v", cfg.Theme)
	}
	if cfg.Widgets.ScriptDir != "/etc/signboard/widgets" {
		t.Errorf("ScriptDir = %q", cfg.Widgets.ScriptDir)
	}
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"syntax", "[server\naddr=", errors.ErrCodeInvalidFormat},
		{"bad ttl", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidFormat},
		{"backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"", errors.ErrCodeInvalidInput},
		{"cache size", "[server]\ndecode_cache_size = 0", errors.ErrCodeInvalidInput},
		{"base url", "[server]\nbase_url = \"ftp://x\"", errors.ErrCodeInvalidInput},
		{"color", "[theme]\nprimary = \"blue\"", errors.ErrCodeInvalidInput},
		{"negative debounce", "[editor]\ndebounce_ms = -1", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNBOARD_REDIS_ADDR", "cache:6380")
	t.Setenv("SIGNBOARD_CACHE_BACKEND", "none")
	t.Setenv("SIGNBOARD_DEBOUNCE_MS", "20")

	cfg, err := Load(writeFile(t, "[cache]\nredis_addr = \"file:6379\""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.RedisAddr != "cache:6380" || cfg.Cache.Backend != BackendNone {
		t.Errorf("cache = %+v, want env values", cfg.Cache)
	}
	if cfg.Editor.DebounceMS != 20 {
		t.Errorf("DebounceMS = %d, want 20", cfg.Editor.DebounceMS)
	}

	t.Setenv("SIGNBOARD_DEBOUNCE_MS", "fast")
	if _, err := Load(writeFile(t, "")); err == nil {
		t.Error("non-numeric SIGNBOARD_DEBOUNCE_MS should fail")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Cache.TTL = Duration{90 * time.Minute}
	cfg.Widgets.ScriptDir = "scripts"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	p, err := DefaultPath()
	if err != nil || p != filepath.Join("/xdg/config", AppName, "config.toml") {
		t.Errorf("DefaultPath() = %q, %v", p, err)
	}

	dir, _ := Default().CacheDir()
	if dir != filepath.Join("/xdg/cache", AppName) {
		t.Errorf("CacheDir() = %q", dir)
	}

	cfg := Default()
	cfg.Cache.Dir = "/var/cache/sb"
	if dir, _ := cfg.CacheDir(); dir != "/var/cache/sb" {
		t.Errorf("CacheDir() with cache.dir = %q", dir)
	}
}

func TestPathsHomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	p, _ := DefaultPath()
	if want := filepath.Join(home, ".config", AppName, "config.toml"); p != want {
		t.Errorf("DefaultPath() = %q, want %q", p, want)
	}
}
