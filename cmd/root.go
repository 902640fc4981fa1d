package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	configPath string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bibtable",
		Short: "Flatten bibliographic libraries into tabular exports",
		Long: `Bibtable flattens a reference library (items, creators, tags, collections and notes)
into one row per item and tag/collection combination, written as CSV, a flat
OpenDocument spreadsheet or Parquet for analysis tools.

Options are read from a YAML config file (--config), BIBTABLE_* environment
variables and command-line flags, in increasing order of precedence.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if opts.verbose {
				logLevel = slog.LevelDebug
			}
			// stdout may carry the export itself
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")

	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newCollectionsCmd(opts))

	return cmd
}
