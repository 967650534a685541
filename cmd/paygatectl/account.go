package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/paygate/internal/domain/model"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage scoped credential accounts.",
	}

	var (
		scope   string
		scopeID string
		env     string
		status  string
		payload map[string]string
	)
	set := &cobra.Command{
		Use:   "set <provider>",
		Short: "Create or replace the account at one scope.",
		Long: `
Usage: paygatectl account set <provider> [options]

  Writes the account stored under (provider, scope, scope id, environment),
  replacing the payload of an existing one.

      $ paygatectl account set asaas --scope tenant --scope-id t1 \
          --payload api_key=$aact_prod_... --payload wallet_id=w-1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := model.CredentialAccount{
				Provider:    strings.TrimSpace(args[0]),
				ScopeType:   model.ScopeType(scope),
				ScopeID:     scopeID,
				Environment: model.Environment(env),
				Payload:     payload,
				Status:      model.AccountStatus(status),
			}
			stored, err := a.stores.Credentials.UpsertScoped(cmd.Context(), account)
			if err != nil {
				return fmt.Errorf("set account: %w", err)
			}
			printf(cmd.OutOrStdout(), "Success! Account %s stored for %s at %s (%s), keys: %s\n",
				stored.ID, stored.Provider, scopeLabel(stored.ScopeType, stored.ScopeID), stored.Environment,
				strings.Join(stored.PayloadKeys(), ", "))
			return nil
		},
	}
	set.Flags().StringVar(&scope, "scope", string(model.ScopePlatform), "Scope type: platform, partner or tenant")
	set.Flags().StringVar(&scopeID, "scope-id", "", "Partner or tenant id (empty for platform)")
	set.Flags().StringVar(&env, "env", string(model.EnvironmentProduction), "Environment: sandbox or production")
	set.Flags().StringVar(&status, "status", string(model.AccountStatusActive), "Status: active or inactive")
	set.Flags().StringToStringVar(&payload, "payload", nil, "Payload entry key=value (repeatable)")

	cmd.AddCommand(set)
	return cmd
}

func scopeLabel(scope model.ScopeType, scopeID string) string {
	if scopeID == "" {
		return string(scope)
	}
	return string(scope) + ":" + scopeID
}
