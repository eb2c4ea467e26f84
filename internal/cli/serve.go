package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arborist/pkg/cache"
	"github.com/matzehuels/arborist/pkg/config"
	"github.com/matzehuels/arborist/pkg/pipeline"
	"github.com/matzehuels/arborist/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trees over HTTP",
		Long: `Serve trees over HTTP.

GET /tree.svg?4,0.8,0.8 draws a tree of depth 4 with left and right
probabilities 0.8. The named form /tree.svg?depth=4&left=0.8&right=0.8 and the
formats png, pdf, json, dot and txt work the same way. Add seed=N for a
reproducible tree. When server.redis_addr is configured, seeded responses are
cached in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(commandContext(cmd), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	runner, err := newServeRunner(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner,
		server.WithResolver(cfg.Resolver()),
		server.WithGeometry(cfg.Geometry),
		server.WithStyle(cfg.Style),
		server.WithLogger(logger),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// newServeRunner builds the runner for the HTTP server. Without a Redis
// address caching is disabled.
func newServeRunner(ctx context.Context, sc config.Server, logger *log.Logger) (*pipeline.Runner, error) {
	if sc.RedisAddr == "" {
		logger.Debug("cache disabled", "reason", "no redis_addr")
		return pipeline.NewRunner(cache.NewNullCache(), nil, logger), nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     sc.RedisAddr,
		Password: sc.RedisPassword,
		DB:       sc.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("redis cache", "addr", sc.RedisAddr, "prefix", sc.KeyPrefix)

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if sc.KeyPrefix != "" {
		keyer = cache.NewScopedKeyer(keyer, sc.KeyPrefix)
	}
	runner := pipeline.NewRunner(rc, keyer, logger)
	if sc.CacheTTL.Duration > 0 {
		runner.TTL = sc.CacheTTL.Duration
	}
	return runner, nil
}
