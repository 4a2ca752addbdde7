package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spruce/pkg/observability"
	"github.com/matzehuels/spruce/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var q queryFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Long: `Serve a read-only JSON API over the configured repository, with Prometheus
metrics at /metrics. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &q)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			observability.Install(observability.NewPrometheus(reg))
			defer observability.Reset()

			srv := server.New(server.Config{
				Runner:   runner,
				Store:    st,
				Options:  opts,
				Logger:   c.Logger,
				Gatherer: reg,
			})
			return srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout.Duration, c.cfg.Server.WriteTimeout.Duration)
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
