package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/paygate/internal/adapter/driven/passwordauth"
	"github.com/ericfisherdev/paygate/internal/application"
	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/security/password"
)

func newPromoteCmd(a *app) *cobra.Command {
	var (
		email       string
		pw          passwordFlags
		candidateID string
	)

	cmd := &cobra.Command{
		Use:   "promote <provider>",
		Short: "Copy a candidate credential to platform scope.",
		Long: `
Usage: paygatectl promote <provider> [options]

  Resolves the provider's origins and promotes the active candidate, or the
  candidate named by --candidate, after reauthenticating the operator.
  The password is read from stdin with --password-stdin, otherwise from
  PAYGATE_OPERATOR_PASSWORD, otherwise from --password.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider := strings.TrimSpace(args[0])

			plain, err := pw.resolve(cmd)
			if err != nil {
				return err
			}

			resolver := application.NewOriginResolver(a.stores.Credentials, nil, a.logger)
			res, err := resolver.Resolve(ctx, provider, model.ScopePlatform)
			if err != nil {
				return fmt.Errorf("resolve origins: %w", err)
			}

			candidate, err := pickCandidate(res, candidateID)
			if err != nil {
				return err
			}

			auth := passwordauth.New(a.stores.Operators, password.Default, a.logger)
			promotion := application.NewPromotionService(a.stores.Credentials, auth, nil, a.logger)
			account, err := promotion.Promote(ctx, candidate, email, plain)
			if errors.Is(err, application.ErrInvalidCredential) {
				return errors.New("incorrect password, try again")
			}
			if err != nil {
				return fmt.Errorf("promote: %w", err)
			}

			printf(cmd.OutOrStdout(), "Success! %s %s promoted to platform account %s (%s), keys: %s\n",
				candidate.Source, candidate.ID, account.ID, account.Environment, strings.Join(account.PayloadKeys(), ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Operator email (required)")
	pw.register(cmd)
	cmd.Flags().StringVar(&candidateID, "candidate", "", "Candidate id (defaults to the active candidate)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func pickCandidate(res *application.Resolution, id string) (model.Candidate, error) {
	if id == "" {
		if res.Active == nil {
			return model.Candidate{}, fmt.Errorf("no credential with a real value stored for %s", res.Provider)
		}
		return *res.Active, nil
	}
	for _, c := range res.Candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Candidate{}, fmt.Errorf("candidate %q not found for %s", id, res.Provider)
}
