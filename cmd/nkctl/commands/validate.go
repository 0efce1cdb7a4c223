package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nebenkosten/internal/core/apperror"
	nk "nebenkosten/internal/domain/nebenkosten"
)

var errInvalid = errors.New("calculation is invalid")

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the calculation against the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := validate(cmd.OutOrStdout(), a); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate, then report plausibility warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			data, err := validate(out, a)
			if err != nil {
				return err
			}

			warnings, err := a.checker.Check(data)
			if err != nil {
				a.log.Warnw("plausibility evaluation failed", "error", err)
			}
			for _, w := range warnings {
				fmt.Fprintf(out, "WARN %s: %s (%s)\n", joinPath(w.Path), w.Message, w.Rule)
			}
			fmt.Fprintf(out, "OK, %d Hinweis(e)\n", len(warnings))
			return nil
		},
	}
}

// validate prints every violation and returns errInvalid if there is one.
func validate(out io.Writer, a *app) (nk.CalculationData, error) {
	data, err := a.store.Validate()
	if err != nil {
		return nk.CalculationData{}, reportViolations(out, err)
	}
	return data, nil
}

func reportViolations(out io.Writer, err error) error {
	verr, ok := apperror.AsValidationError(err)
	if !ok {
		return err
	}
	for _, v := range verr.Violations {
		fmt.Fprintf(out, "%s: %s\n", v.PathString(), v.Message)
	}
	return fmt.Errorf("%w: %d violation(s)", errInvalid, len(verr.Violations))
}

func joinPath(path []string) string {
	return apperror.Violation{Path: path}.PathString()
}
