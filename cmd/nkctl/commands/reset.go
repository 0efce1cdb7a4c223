package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default calculation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "reset")
			return nil
		},
	}
}
