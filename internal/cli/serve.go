package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridpath/internal/server"
	"github.com/matzehuels/gridpath/pkg/cache"
	"github.com/matzehuels/gridpath/pkg/pipeline"
)

// apiKeyPrefix scopes server cache entries apart from CLI entries on a
// shared backend.
const apiKeyPrefix = "api:"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Long: `Serve the solver over HTTP.

Routes:
  POST /v1/solve   solve a map sent as text/plain or JSON
  GET  /healthz    liveness probe
  GET  /version    build information

Examples:
  gridpath serve
  gridpath serve --addr :9090
  curl --data-binary @maze.txt localhost:8080/v1/solve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, apiKeyPrefix), c.Logger)
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Config{
				Addr:         addr,
				MaxMapBytes:  cfg.Server.MaxMapBytes,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
			})

			printSuccess("gridpath API listening")
			printKeyValue("Address", addr)
			printKeyValue("Cache", cacheLabel(cc, noCache, cfg.Cache.Backend))
			printKeyValue("Max map", strconv.Itoa(cfg.Server.MaxMapBytes)+" bytes")

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// cacheLabel describes the cache the server actually uses.
func cacheLabel(cc cache.Cache, noCache bool, backend string) string {
	switch {
	case noCache:
		return "disabled (--no-cache)"
	case backend == cache.BackendNone:
		return "disabled"
	}
	if _, ok := cc.(*cache.NullCache); ok {
		return "disabled (" + backend + " unavailable)"
	}
	return backend
}
