package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// exitError carries a remote command's exit status out of `run`. Its message
// has already been written, so Execute does not print it.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)

	var exitErr *exitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}

	return err
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	return 1
}

func newRootCmd() *cobra.Command {
	app, err := wireApp()
	if err != nil {
		rootCmd := newBareRootCmd(&globalFlags{})
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	return newRootCmdWithApp(app)
}

func newBareRootCmd(flags *globalFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sshgw",
		Short:         "SSH command gateway: run allowlisted commands on configured hosts",
		Long:          "sshgw runs allowlisted shell commands on named SSH connections, either directly from the terminal or as an MCP server over stdio.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the configuration file (default: $SSHGW_CONFIG or ~/.sshgw/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default: $SSHGW_LOG_LEVEL or warn)")

	return rootCmd
}

func newRootCmdWithApp(app *app) *cobra.Command {
	rootCmd := newBareRootCmd(&app.flags)

	rootCmd.AddCommand(
		newVersionCmd(),
		newServerCmd(app),
		newRunCmd(app),
		newListConnectionsCmd(app),
		newListCommandsCmd(app),
		newInitCmd(app),
		newStatusCmd(app),
		newSecretCmd(app),
	)

	return rootCmd
}
