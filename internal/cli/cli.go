// Package cli implements the signboard command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/signboard/pkg/buildinfo"
	"github.com/matzehuels/signboard/pkg/cache"
	"github.com/matzehuels/signboard/pkg/config"
	"github.com/matzehuels/signboard/pkg/shortlink"
	"github.com/matzehuels/signboard/pkg/widget"
	"github.com/matzehuels/signboard/pkg/widget/script"
	"github.com/matzehuels/signboard/pkg/widgets"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
	loaded     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Signboard lays out and configures widgets for signage displays",
		Long:         `Signboard places widgets on a 12-column display grid, packs the whole display into a single URL-safe token, and renders that token as a terminal or HTML display.`,
		Version:      buildinfo.Resolve().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/signboard/config.toml)")

	// Register all subcommands
	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.displayCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.widgetsCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the settings file named by --config.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.loaded = true
	c.Logger.Debug("loaded config", "backend", cfg.Cache.Backend, "scripts", cfg.Widgets.ScriptDir)
	return nil
}

// =============================================================================
// Registry & Store Factories
// =============================================================================

// newRegistry builds the widget registry: the built-in widgets plus any
// scripted widgets from the configured script directory. The returned
// function releases the script VMs.
func (c *CLI) newRegistry() (*widget.Registry, func(), error) {
	reg := widget.NewRegistry()
	widgets.RegisterBuiltins(reg)

	dir := c.cfg.Widgets.ScriptDir
	if dir == "" {
		return reg, func() {}, nil
	}
	scripts, err := script.LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	if err := script.Register(reg, scripts); err != nil {
		script.CloseAll(scripts)
		return nil, nil, err
	}
	for _, s := range scripts {
		c.Logger.Debug("loaded scripted widget", "type", s.Descriptor().Type, "path", s.Path())
	}
	return reg, func() { script.CloseAll(scripts) }, nil
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: c.cfg.Cache.RedisAddr,
			DB:   c.cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return cache.Instrumented(rc), nil
	default:
		dir, err := c.cfg.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrumented(fc), nil
	}
}

// newLinkStore opens the short link store over the configured cache.
func (c *CLI) newLinkStore(ctx context.Context) (*shortlink.Store, cache.Cache, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	store := shortlink.NewStore(cc,
		shortlink.WithKeyer(cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)),
		shortlink.WithTTL(c.cfg.Cache.TTL.Duration))
	return store, cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/signboard/).
func (c *CLI) cacheDir() (string, error) {
	return c.cfg.CacheDir()
}

// debounce returns the configured grid debounce delay.
func (c *CLI) debounce() time.Duration {
	return c.cfg.Editor.Debounce()
}
