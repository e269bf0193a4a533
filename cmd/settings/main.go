// cmd/settings/main.go
//
// Operator CLI for the storefront settings.
//
//	settings show  [--format yaml|json]   print the resolved snapshot, secrets masked
//	settings check [--ping]               resolve, and optionally reach the database
//	settings keys                         list the environment keys and when they are required
//
// Global flags mirror what cmd/web does implicitly: --profile, --env-file
// (repeatable), --config, and --root.  Resolution errors exit non-zero with
// the offending key on stderr.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/bootstrap"
	"github.com/yanizio/storefront/internal/config"
)

var version = "dev"

// app carries flag values shared by every subcommand.
type app struct {
	profile  string
	envFiles []string
	override string
	root     string
	verbose  bool

	// test hooks
	environ []string
	tokens  config.TokenSource
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Version:      version,
		Use:          "settings",
		Short:        "Inspect and validate storefront settings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.profile, "profile", "", "deployment profile: local or hosted (default: $APP_PROFILE, then local)")
	pf.StringArrayVar(&a.envFiles, "env-file", nil, "dotenv file to read, repeatable, later wins (default: global.env then .env)")
	pf.StringVar(&a.override, "config", "", "YAML override file (default: <root>/conf/settings.yaml when present)")
	pf.StringVar(&a.root, "root", "", "base directory for relative paths (default: working directory)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log resolution steps to stderr")

	root.AddCommand(newShowCmd(a), newCheckCmd(a), newKeysCmd())
	return root
}

func (a *app) setupLogging() error {
	if !a.verbose {
		zap.ReplaceGlobals(zap.NewNop())
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	return nil
}

// settings resolves the snapshot the way cmd/web would.
func (a *app) settings(cmd *cobra.Command) (*config.Snapshot, error) {
	files := a.envFiles
	if !cmd.Flags().Changed("env-file") {
		files = nil
	}
	return bootstrap.Settings(cmd.Context(), bootstrap.Options{
		Profile:      a.profile,
		EnvFiles:     files,
		OverrideFile: a.override,
		RootDir:      a.root,
		Environ:      a.environ,
		Tokens:       a.tokens,
		Log:          zap.S(),
	})
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}
