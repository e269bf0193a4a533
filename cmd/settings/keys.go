package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanizio/storefront/internal/config"
)

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the environment keys the resolver reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tLOCAL\tHOSTED\tUSAGE")
			for _, k := range config.Keys() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					k.Name, need(k.Required(config.Local)), need(k.Required(config.Hosted)), k.Usage)
			}
			return tw.Flush()
		},
	}
}

func need(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}
