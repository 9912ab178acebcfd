package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lassoview/internal/config"
	"github.com/matzehuels/lassoview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == cache.BackendRedis {
				return clearRedis(cmd.Context(), cfg)
			}

			fc, err := cache.NewFileCache(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			entries, _ := os.ReadDir(fc.Dir())
			if len(entries) == 0 {
				printInfo("Cache is empty")
				return nil
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear %s: %w", fc.Dir(), err)
			}
			printSuccess("Cleared layout cache")
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// clearRedis removes the layout entries this tool wrote to Redis.
func clearRedis(ctx context.Context, cfg config.Config) error {
	rc, err := cache.NewRedisCache(ctx, cfg.CacheOptions().Redis)
	if err != nil {
		return err
	}
	defer rc.Close()
	n, err := rc.Clear(ctx)
	if err != nil {
		return err
	}
	printSuccess("Cleared %d cached layouts", n)
	printDetail("Redis: %s", cfg.Cache.RedisAddr)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Println(dir)
			return nil
		},
	}
}
