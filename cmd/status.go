package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	statusadapter "github.com/bnema/sshgw/internal/adapters/render/status"
	"github.com/bnema/sshgw/internal/application"
)

const slowProbe = 2 * time.Second

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var probe bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured connections and the command policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.open(cmd, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			var report application.StatusReport
			collect := func(ctx context.Context) error {
				report = rt.gateway.Status(ctx, probe)
				return nil
			}
			if probe && !asJSON {
				err = app.withProgress(cmd.Context(), cmd.ErrOrStderr(), "Probing connections...", collect)
			} else {
				err = collect(cmd.Context())
			}
			if err != nil {
				return err
			}

			return writeStatusOutput(cmd, app, rt.loader.Path(), report, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&probe, "probe", false, "Open each connection and report reachability")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, configPath string, report application.StatusReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	rendered, err := app.statusRenderer(report, statusadapter.RenderOptions{
		ConfigPath: configPath,
		SlowProbe:  slowProbe,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
