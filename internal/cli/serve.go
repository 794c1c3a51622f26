package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksolve/internal/server"
	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	store   storeFlags
	addr    string
	history int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution API over HTTP",
		Long: `Serve exposes the resolution engine as a JSON API:

  POST /v1/resolve               {"packages": [...], "constraints": {...}}
  GET  /v1/resolutions           recent results
  GET  /v1/resolutions/{id}      one result
  GET  /v1/resolutions/{id}/dot  result graph as Graphviz DOT
  GET  /healthz                  liveness
  GET  /metrics                  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			store, closeStore, err := c.openStore(ctx, opts.store)
			if err != nil {
				return err
			}
			defer closeStore()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := observability.NewPrometheus(reg)
			observability.SetResolveHooks(metrics)
			observability.SetStoreHooks(metrics)
			observability.SetCacheHooks(metrics)
			defer observability.Reset()

			history := cfg.Resolve.History
			if opts.history > 0 {
				history = opts.history
			}
			build := cfg.Resolve.buildOptions()
			build.Logger = logger
			e := engine.New(store, engine.Options{History: history, Logger: logger, Build: build})

			addr := cfg.Server.Addr
			if opts.addr != "" {
				addr = opts.addr
			}
			srv := server.New(e, server.Options{
				Logger:        logger,
				Gatherer:      reg,
				Defaults:      cfg.Resolve.Constraints,
				AllowedOrigin: cfg.Server.AllowedOrigin,
			})
			logger.Info("serving", "store", deps.SourceName(store), "history", e.History().Cap())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	opts.store.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: "+server.DefaultAddr+")")
	cmd.Flags().IntVar(&opts.history, "history", 0, "resolutions kept in memory (default: 1000)")

	return cmd
}
