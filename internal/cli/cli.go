package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/buildinfo"
	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/config"
	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/httputil"
	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/tour"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "vrtour"

	// manifestNamespace scopes cached manifest responses.
	manifestNamespace = "manifest"
)

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

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "vrtour walks and edits panorama house tours",
		Long: `vrtour loads a house manifest of panorama rooms and the hotspots linking
them. Tours can be walked or edited in the terminal, served over HTTP for
remote editors, and drawn as a room graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "config file")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.roomsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// loadConfig reads the config file and installs the debug hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath)

	if c.Logger.GetLevel() <= log.DebugLevel {
		c.installHooks(c.Logger)
	}
	return nil
}

// installHooks routes every observability hook to logger.
func (c *CLI) installHooks(logger *log.Logger) {
	hooks := &logHooks{logger: logger}
	observability.SetOverlayHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured manifest cache. noCache forces a NullCache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   c.Config.Cache.RedisAddr,
			DB:     c.Config.Cache.RedisDB,
			Prefix: appName + ":",
		})
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the configured file cache directory or the per-user
// default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// manifestSource resolves location (or the configured source when empty).
func (c *CLI) manifestSource(location string, ch cache.Cache, refresh bool) (tour.Source, error) {
	if location == "" {
		location = c.Config.Manifest.Source
	}
	if location == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no manifest given; pass one or set manifest.source")
	}
	client := httputil.NewClient(ch, manifestNamespace, c.Config.Manifest.CacheTTL.Duration, nil)
	src, err := tour.NewSource(location, client)
	if err != nil {
		return nil, err
	}
	if hs, ok := src.(tour.HTTPSource); ok {
		hs.Refresh = refresh
		src = hs
	}
	return src, nil
}

// loadHouse fetches and parses a manifest.
func (c *CLI) loadHouse(ctx context.Context, location string, noCache, refresh bool) (*tour.House, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	src, err := c.manifestSource(location, ch, refresh)
	if err != nil {
		return nil, err
	}
	prog := newProgress(loggerFromContext(ctx))
	h, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	prog.done("Loaded manifest")
	return h, nil
}
