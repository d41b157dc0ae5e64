package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListConnectionsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-connections",
		Short: "List configured connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.open(cmd, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			return writeList(cmd.OutOrStdout(), "Available connections:", rt.gateway.ListConnections())
		},
	}
}

func newListCommandsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-commands",
		Short: "List allowed commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.open(cmd, "")
			if err != nil {
				return err
			}
			defer rt.Close()

			return writeList(cmd.OutOrStdout(), "Allowed commands:", rt.gateway.ListAllowedCommands())
		},
	}
}

func writeList(w io.Writer, header string, items []string) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, "- %s\n", item); err != nil {
			return err
		}
	}

	return nil
}
