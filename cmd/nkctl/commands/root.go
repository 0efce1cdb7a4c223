package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nebenkosten/internal/config"
	appctx "nebenkosten/internal/core/context"
	"nebenkosten/internal/domain/calculation"
	"nebenkosten/internal/domain/plausibility"
	"nebenkosten/internal/infrastructure/storage/file"
	"nebenkosten/pkg/logger"
)

// app is the dependency graph shared by subcommands.
type app struct {
	store   *calculation.Store
	checker *plausibility.Checker
	log     *logger.Logger
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		home       string
		configPath string
		verbose    bool
		a          = &app{}
	)

	root := &cobra.Command{
		Use:          "nkctl",
		Short:        "Edit and check a Nebenkostenabrechnung from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".nebenkosten")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			log, err := logger.New(logger.Config{Level: level, OutputPaths: []string{"stderr"}})
			if err != nil {
				return err
			}

			fs, err := file.New(home)
			if err != nil {
				return err
			}

			checker, err := plausibility.NewChecker(cfg.PlausibilityRules())
			if err != nil {
				return err
			}

			ctx := appctx.WithTrace(cmd.Context(), appctx.NewTraceContext("cli"))
			cmd.SetContext(ctx)

			a.log = log
			a.checker = checker
			a.store = calculation.New(ctx, fs,
				calculation.WithLogger(log),
				calculation.WithSyncWrites(),
				calculation.WithStorageKey(cfg.Storage.Key),
			)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close(context.Background())
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.nebenkosten)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config for plausibility rules (default $NK_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log storage activity to stderr")

	root.AddCommand(
		showCmd(a),
		exportCmd(a),
		importCmd(a),
		validateCmd(a),
		checkCmd(a),
		resetCmd(a),
		itemCmd(a),
	)
	return root
}
