package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanizio/storefront/internal/database"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		ping    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve settings and report problems",
		Long: `Resolve settings exactly as the web server would and exit non-zero
on the first missing or malformed value.  With --ping the database is
opened and queried as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.settings(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "profile:  %s\n", snap.Profile)
			fmt.Fprintf(w, "debug:    %t\n", snap.Debug)
			fmt.Fprintf(w, "database: %s (tls=%t, max_age=%ds)\n",
				snap.Database.Driver, snap.Database.SSLRequired, snap.Database.MaxAge)
			fmt.Fprintf(w, "storage:  %s\n", snap.Storage.Backend)
			if snap.SecretGenerated {
				fmt.Fprintln(w, "warning:  SECRET_KEY not set, a generated secret would be used")
			}

			if ping {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				db, err := database.Open(ctx, snap.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := database.Check(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(w, "ping:     ok")
			}

			fmt.Fprintln(w, "ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&ping, "ping", false, "open the database and run a test query")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "database ping timeout")
	return cmd
}
