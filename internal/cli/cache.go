package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached routes and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config().cacheConfig()
			if err != nil {
				return err
			}
			if cfg.Backend == cache.BackendNone {
				printInfo("Caching is disabled")
				return nil
			}

			cc, err := cache.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %s cannot be cleared", cfg.Backend)
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			switch cfg.Backend {
			case cache.BackendFile:
				printDetail("Directory: %s", cfg.Dir)
			case cache.BackendRedis:
				printDetail("Redis: %s (prefix %s)", cfg.Redis.Addr, cfg.Redis.KeyPrefix)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config().cacheConfig()
			if err != nil {
				return err
			}
			dir := cfg.Dir
			if dir == "" {
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
