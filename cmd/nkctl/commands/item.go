package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"nebenkosten/internal/domain/calculation"
	nk "nebenkosten/internal/domain/nebenkosten"
)

func itemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage cost items",
	}
	cmd.AddCommand(itemAddCmd(a), itemSetCmd(a), itemRemoveCmd(a))
	return cmd
}

// itemFlags are shared by add and set. Only flags given on the command line
// end up in the patch.
type itemFlags struct {
	name             string
	amount           float64
	distributionType string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name, e.g. Heizung")
	cmd.Flags().Float64Var(&f.amount, "amount", 0, "amount in EUR")
	cmd.Flags().StringVar(&f.distributionType, "type", "", "distribution key: AREA, PERSONS or UNITS")
}

func (f *itemFlags) patch(cmd *cobra.Command) (calculation.CostItemPatch, error) {
	var p calculation.CostItemPatch
	if cmd.Flags().Changed("name") {
		p.Name = &f.name
	}
	if cmd.Flags().Changed("amount") {
		p.Amount = &f.amount
	}
	if cmd.Flags().Changed("type") {
		dt := nk.DistributionType(f.distributionType)
		if !dt.IsValid() {
			return p, fmt.Errorf("unknown distribution type %q", f.distributionType)
		}
		p.DistributionType = &dt
	}
	return p, nil
}

func itemAddCmd(a *app) *cobra.Command {
	var flags itemFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a cost item and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			id := a.store.AddCostItem()
			if p != (calculation.CostItemPatch{}) {
				a.store.UpdateCostItem(id, p)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func itemSetCmd(a *app) *cobra.Command {
	var flags itemFlags
	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Change name, amount or distribution key of a cost item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if !a.store.UpdateCostItem(args[0], p) {
				return fmt.Errorf("no cost item with id %s", args[0])
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func itemRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a cost item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.store.RemoveCostItem(args[0]) {
				return fmt.Errorf("no cost item with id %s", args[0])
			}
			return nil
		},
	}
}
