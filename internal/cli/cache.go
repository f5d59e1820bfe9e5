package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the manifest cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached manifest and rendered graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.newCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q keeps nothing to clear", c.Config.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared cache")
			printDetail("Backend: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, an address for redis.
func (c *CLI) cacheLocation() string {
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return "none"
	case config.CacheRedis:
		return fmt.Sprintf("redis://%s/%d", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return "unavailable: " + err.Error()
		}
		return dir
	}
}
