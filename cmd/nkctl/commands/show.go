package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	nk "nebenkosten/internal/domain/nebenkosten"
)

const dateLayout = "02.01.2006"

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print a summary of the calculation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSummary(cmd.OutOrStdout(), a.store.Data())
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the calculation as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.store.Data())
		},
	}
}

func printSummary(out io.Writer, d nk.CalculationData) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Vermieter:\t%s, %s, %s %s\n", d.Landlord.Name, d.Landlord.Street, d.Landlord.Zip, d.Landlord.City)
	fmt.Fprintf(w, "Objekt:\t%s, %s %s\n", d.Property.Street, d.Property.Zip, d.Property.City)
	fmt.Fprintf(w, "Gesamt:\t%.2f m², %d Einheiten, %d Personen\n", d.Property.TotalArea, d.Property.TotalUnits, d.Property.TotalPersons)
	fmt.Fprintf(w, "Mieter:\t%s, %.2f m², %d Personen, Vorauszahlungen %.2f\n", d.Tenant.Name, d.Tenant.CurrentArea, d.Tenant.Persons, d.Tenant.Prepayments)
	fmt.Fprintf(w, "Abrechnungszeitraum:\t%s\n", formatPeriod(d.BillingPeriod))
	fmt.Fprintf(w, "Nutzungszeitraum:\t%s\n", formatPeriod(d.UsagePeriod))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ID\tBezeichnung\tBetrag\tSchlüssel")
	for _, item := range d.Items {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", item.ID, item.Name, item.Amount, item.DistributionType)
	}

	totals := d.Totals()
	fmt.Fprintln(w)
	for _, dt := range nk.DistributionTypes() {
		fmt.Fprintf(w, "Summe %s:\t%s\n", dt, totals.ByDistribution[dt].StringFixed(2))
	}
	fmt.Fprintf(w, "Summe:\t%s\n", totals.Total.StringFixed(2))
	return w.Flush()
}

func formatPeriod(p nk.Period) string {
	if p.From.IsZero() || p.To.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s - %s (%d Tage)", p.From.Format(dateLayout), p.To.Format(dateLayout), p.Days())
}
