package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symbol/internal/api"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/observability"
	"github.com/matzehuels/symbol/pkg/symbol"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var fallback bool

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a graph over HTTP",
		Long: `Serve exposes a store over a JSON HTTP API, optionally seeded from a graph
document. Prometheus metrics are served at /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.newStore()
			if len(args) == 1 {
				g, err := c.readGraph(cmd, args[0], fallback)
				if err != nil {
					return err
				}
				store = g.Store
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
			}
			return c.serve(cmd.Context(), ln, store)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "accept documents without a root node")
	return cmd
}

// serve runs the API on ln until ctx is cancelled.
func (c *CLI) serve(ctx context.Context, ln net.Listener, store *symbol.Store) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.NewMetrics(reg).Register()
	defer observability.Reset()

	srv := &http.Server{
		Handler: api.New(store,
			api.WithLogger(c.Logger),
			api.WithRegistry(reg),
			api.WithWalkOptions(c.cfg.WalkOptions()),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	c.Logger.Info("Serving", "addr", ln.Addr().String(), "nodes", store.Len())

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeInternal, err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	c.Logger.Info("Stopped serving")
	return nil
}
