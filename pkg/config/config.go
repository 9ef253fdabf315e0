// Package config loads the signboard application settings.
//
// Settings live in a TOML file at $XDG_CONFIG_HOME/signboard/config.toml
// (falling back to ~/.config/signboard/config.toml). A missing file yields
// the defaults; unknown keys are ignored. A few settings can be overridden
// through SIGNBOARD_* environment variables, which win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/signboard/pkg/errors"
	"github.com/matzehuels/signboard/pkg/layout"
	"github.com/matzehuels/signboard/pkg/widget"
)

// AppName names the config and cache directories.
const AppName = "signboard"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full application configuration.
type Config struct {
	Server  Server       `toml:"server"`
	Cache   Cache        `toml:"cache"`
	Editor  Editor       `toml:"editor"`
	Theme   widget.Theme `toml:"theme"`
	Widgets Widgets      `toml:"widgets"`
}

// Server configures `signboard serve`.
type Server struct {
	Addr            string `toml:"addr"`
	BaseURL         string `toml:"base_url"`
	DecodeCacheSize int    `toml:"decode_cache_size"`
	RefreshSeconds  int    `toml:"refresh_seconds"`
}

// Cache configures the short link store.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// Editor configures the interactive configurator.
type Editor struct {
	DebounceMS   int `toml:"debounce_ms"`
	OverflowRows int `toml:"overflow_rows"`
}

// Debounce returns the debounce delay.
func (e Editor) Debounce() time.Duration {
	return time.Duration(e.DebounceMS) * time.Millisecond
}

// Widgets configures widget discovery.
type Widgets struct {
	ScriptDir string `toml:"script_dir"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            "127.0.0.1:8080",
			BaseURL:         "http://127.0.0.1:8080",
			DecodeCacheSize: 256,
			RefreshSeconds:  60,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Editor: Editor{
			DebounceMS:   100,
			OverflowRows: 4,
		},
		Theme: layout.DefaultTheme,
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path means DefaultPath; a missing file is not an
// error.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q: want file, redis or none", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Server.DecodeCacheSize < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "server.decode_cache_size must be at least 1")
	}
	if c.Server.RefreshSeconds < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.refresh_seconds must not be negative")
	}
	if c.Server.BaseURL != "" {
		if err := errors.ValidateURL(c.Server.BaseURL); err != nil {
			return err
		}
	}
	if c.Editor.DebounceMS < 0 || c.Editor.OverflowRows < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "editor settings must not be negative")
	}
	for name, v := range map[string]string{
		"theme.background": c.Theme.Background,
		"theme.primary":    c.Theme.Primary,
		"theme.accent":     c.Theme.Accent,
	} {
		if err := errors.ValidateColor(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", name)
		}
	}
	return nil
}

// Write saves c as TOML to path, creating the parent directory.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/signboard or ~/.cache/signboard.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// applyEnv applies SIGNBOARD_* overrides.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SIGNBOARD_ADDR":          &c.Server.Addr,
		"SIGNBOARD_BASE_URL":      &c.Server.BaseURL,
		"SIGNBOARD_CACHE_BACKEND": &c.Cache.Backend,
		"SIGNBOARD_CACHE_DIR":     &c.Cache.Dir,
		"SIGNBOARD_REDIS_ADDR":    &c.Cache.RedisAddr,
		"SIGNBOARD_SCRIPT_DIR":    &c.Widgets.ScriptDir,
	}
	for env, dst := range strs {
		if v, ok := os.LookupEnv(env); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("SIGNBOARD_DEBOUNCE_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "SIGNBOARD_DEBOUNCE_MS")
		}
		c.Editor.DebounceMS = n
	}
	return nil
}
