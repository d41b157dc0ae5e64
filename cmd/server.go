package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mcpadapter "github.com/bnema/sshgw/internal/adapters/mcp"
	"github.com/bnema/sshgw/internal/observability"
	"github.com/bnema/sshgw/internal/version"
)

func newServerCmd(app *app) *cobra.Command {
	var name string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the gateway as an MCP server over stdio",
		Long:  "Server speaks MCP on stdin/stdout until stdin closes. Logs go to stderr. The configuration file is watched and reloaded on change.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.open(cmd, "info")
			if err != nil {
				return err
			}
			defer rt.Close()

			settings := rt.gateway.Config().Server
			if name == "" {
				name = settings.Name
			}
			if metricsAddr == "" {
				metricsAddr = settings.MetricsAddr
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			err = rt.loader.Watch(ctx, func() {
				if err := rt.gateway.Reload(ctx); err != nil {
					rt.logger.Warn().Err(err).Msg("config reload failed, keeping previous configuration")
				}
			})
			if err != nil {
				return err
			}

			server := mcpadapter.NewServer(rt.gateway, name, version.Version, rt.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				rt.gateway.RunSweeper(gctx, settings.SweepInterval, settings.MaxIdle)
				return nil
			})
			if metricsAddr != "" {
				g.Go(func() error {
					return observability.Serve(gctx, metricsAddr, observability.NewRouter(rt.metrics, rt.logger), rt.logger)
				})
			}
			g.Go(func() error {
				defer cancel()
				return server.ServeStdio(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
			})

			err = g.Wait()
			rt.logger.Info().Msg("mcp server stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name advertised to MCP clients (default: server.name from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (default: server.metrics_addr from config)")

	return cmd
}
