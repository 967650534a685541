package main

import (
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/paygate/internal/adapter/driven/passwordauth"
	"github.com/ericfisherdev/paygate/internal/security/password"
)

func newOperatorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage operators allowed to promote credentials.",
	}

	var (
		email string
		pw    passwordFlags
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an operator or reset its password.",
		Long: `
Usage: paygatectl operator add --email <email> [options]

  The password is read from stdin with --password-stdin, otherwise from
  PAYGATE_OPERATOR_PASSWORD, otherwise from --password.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain, err := pw.resolve(cmd)
			if err != nil {
				return err
			}
			auth := passwordauth.New(a.stores.Operators, password.Default, a.logger)
			op, err := auth.Enroll(cmd.Context(), email, plain)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Success! Operator %s enrolled (id %s)\n", op.Email, op.ID)
			return nil
		},
	}
	add.Flags().StringVar(&email, "email", "", "Operator email (required)")
	pw.register(add)
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}
