package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/paygate/internal/domain/model"
)

func newLegacyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Seed the legacy credential table.",
	}

	var (
		id         string
		credential string
		inactive   bool
	)
	add := &cobra.Command{
		Use:   "add <provider>",
		Short: "Insert a legacy credential row.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := a.stores.Credentials.AddLegacy(cmd.Context(), model.LegacyCredential{
				ID:               id,
				Provider:         strings.TrimSpace(args[0]),
				MaskedCredential: credential,
				IsActive:         !inactive,
			})
			if err != nil {
				return fmt.Errorf("add legacy credential: %w", err)
			}
			printf(cmd.OutOrStdout(), "Success! Legacy credential %s added for %s (%s)\n",
				cred.ID, cred.Provider, model.InferLegacyEnvironment(cred.MaskedCredential))
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "Row id (generated when empty)")
	add.Flags().StringVar(&credential, "credential", "", "Credential value (required)")
	add.Flags().BoolVar(&inactive, "inactive", false, "Store the row as inactive")
	_ = add.MarkFlagRequired("credential")

	cmd.AddCommand(add)
	return cmd
}
