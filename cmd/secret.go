package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage passwords and passphrases referenced by connections",
	}

	cmd.AddCommand(
		newSecretSetCmd(app),
		newSecretDeleteCmd(app),
	)

	return cmd
}

func newSecretSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <ref>",
		Short: "Store a secret under ref",
		Long:  "Set stores a secret for password_ref or passphrase_ref. Without --value the secret is read from the terminal without echo.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := strings.TrimSpace(args[0])
			if ref == "" {
				return fmt.Errorf("secret ref must not be empty")
			}

			if !cmd.Flags().Changed("value") {
				var err error
				value, err = app.readPassword(fmt.Sprintf("Secret for %s: ", ref), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			if value == "" {
				return fmt.Errorf("secret value must not be empty")
			}

			store, err := app.secretStore()
			if err != nil {
				return err
			}
			if err := store.Put(cmd.Context(), ref, value); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret %s\n", ref)
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "Secret value (prompted when omitted)")

	return cmd
}

func newSecretDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete the secret stored under ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.secretStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %s\n", args[0])
			return err
		},
	}
}
