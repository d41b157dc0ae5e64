package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/sshgw/internal/domain"
)

func newRunCmd(app *app) *cobra.Command {
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "run <connection> <command>",
		Short: "Run an allowlisted command on a configured connection",
		Long:  "Run executes one command on the named connection. Remote stdout and stderr are copied to this process and its exit code becomes the remote exit code.",
		Example: `  sshgw run web-1 "df -h"
  sshgw run db "uptime" --timeout 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeoutSeconds < 0 {
				return fmt.Errorf("--timeout must not be negative")
			}

			rt, err := app.open(cmd, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			var result domain.ExecutionResult
			err = app.withProgress(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Running on %s...", args[0]), func(ctx context.Context) error {
				var execErr error
				result, execErr = rt.gateway.Execute(ctx, args[0], args[1], time.Duration(timeoutSeconds)*time.Second)
				return execErr
			})
			if err != nil {
				return err
			}

			if result.Stdout != "" {
				fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
			}
			if result.Stderr != "" {
				fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
			}
			if msg := result.ErrorMessage(); msg != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", msg)
			}

			if result.ExitCode != 0 {
				return &exitError{code: result.ExitCode}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Command timeout in seconds (default: from config)")

	return cmd
}
