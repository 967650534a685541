// Command paygatectl administers the credential store directly: operators,
// scoped accounts, legacy rows, origin resolution and promotion.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/paygate/internal/config"
	"github.com/ericfisherdev/paygate/internal/storage"
)

func main() {
	_ = godotenv.Load()

	root, a := newRootCmd()
	err := root.Execute()
	// PersistentPostRunE is skipped when a command fails.
	_ = a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries what subcommands share. stores is opened by the root
// pre-run hook and closed by the post-run hook.
type app struct {
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
	stores  *storage.Stores
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "paygatectl",
		Short:         "Administer payment gateway credentials.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `
Usage: paygatectl <command> [options]

  Works directly against the store configured by the PAYGATE_* environment
  variables (a .env file in the working directory is loaded first).

  Register an operator allowed to promote credentials:

      $ paygatectl operator add --email admin@example.com --password ...

  Show where a provider's credentials come from:

      $ paygatectl origins stripe

  Promote the active candidate to platform scope:

      $ paygatectl promote stripe --email admin@example.com --password ...
`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	root.AddCommand(
		newOperatorCmd(a),
		newAccountCmd(a),
		newLegacyCmd(a),
		newOriginsCmd(a),
		newPromoteCmd(a),
	)

	return root, a
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !a.verbose && cfg.LogLevel < slog.LevelWarn {
		cfg.LogLevel = slog.LevelWarn
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())

	stores, err := storage.Open(cmd.Context(), cfg, a.logger)
	if err != nil {
		return err
	}
	a.stores = stores
	return nil
}

func (a *app) close() error {
	if a.stores == nil {
		return nil
	}
	err := a.stores.Close()
	a.stores = nil
	return err
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
