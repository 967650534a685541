package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/paygate/internal/application"
	"github.com/ericfisherdev/paygate/internal/domain/model"
)

func newOriginsCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "origins <provider>",
		Short: "List credential candidates and the one in effect.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := model.ScopeType(target)
			if scope != "" && !scope.Valid() {
				return fmt.Errorf("--target must be platform, partner or tenant")
			}

			resolver := application.NewOriginResolver(a.stores.Credentials, nil, a.logger)
			res, err := resolver.Resolve(cmd.Context(), strings.TrimSpace(args[0]), scope)
			if err != nil {
				return fmt.Errorf("resolve origins: %w", err)
			}

			printResolution(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", string(model.ScopePlatform), "Scope being configured")

	return cmd
}

func printResolution(w io.Writer, res *application.Resolution) {
	if len(res.Candidates) == 0 {
		printf(w, "No credentials stored for %s\n", res.Provider)
		return
	}

	rows := make([][]any, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		marker := ""
		if res.Active != nil && c.ID == res.Active.ID && c.Source == res.Active.Source {
			marker = "*"
		}
		rows = append(rows, []any{
			marker,
			c.ID,
			string(c.Source),
			scopeLabel(c.ScopeType, c.ScopeID),
			string(c.Environment),
			string(c.Status),
			c.HasRealCredential,
			c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
	}))
	table.Header("", "ID", "Source", "Scope", "Env", "Status", "Real", "Updated")
	table.Bulk(rows)
	table.Render()

	printf(w, "using legacy: %t\nneeds promotion: %t\n", res.IsUsingLegacy, res.NeedsPromotion)
}
