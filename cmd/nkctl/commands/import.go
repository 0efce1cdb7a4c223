package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nebenkosten/internal/domain/calculation"
	nk "nebenkosten/internal/domain/nebenkosten"
)

func importCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the entities supplied in a JSON file",
		Long: "Reads a (partial) calculation from FILE and replaces every top-level\n" +
			"entity it contains. Entities missing from the file are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var patch calculation.CalculationPatch
			if err := json.Unmarshal(raw, &patch); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			if strict {
				merged := patch.ApplyTo(a.store.Data())
				if _, err := nk.ValidateCalculation(merged); err != nil {
					return reportViolations(cmd.OutOrStdout(), err)
				}
			}
			a.store.SetData(patch)

			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "keep the current calculation if the result is invalid")
	return cmd
}
