package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/bibtable/internal/config"
	"github.com/lehigh-university-libraries/bibtable/internal/dates"
	"github.com/lehigh-university-libraries/bibtable/internal/encode"
	"github.com/lehigh-university-libraries/bibtable/internal/library"
	"github.com/lehigh-university-libraries/bibtable/internal/metrics"
	"github.com/lehigh-university-libraries/bibtable/internal/report"
	"github.com/lehigh-university-libraries/bibtable/internal/tabulate"
)

// exportOptionKeys are the flags that double as export options.
var exportOptionKeys = []string{
	tabulate.OptPreset,
	tabulate.OptFormat,
	tabulate.OptBundleAutomaticTags,
	tabulate.OptAutomaticTagDelimiter,
	tabulate.OptExpandCreators,
	tabulate.OptLibraryName,
	tabulate.OptCollectionSeparator,
}

type exportPaths struct {
	library string
	output  string
	summary string
	metrics string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var paths exportPaths

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a library as one row per item and tag/collection combination",
		Long: `Export reads a library (.json, .jsonl or a Zotero .sqlite database), normalizes
every item and writes the flattened rows in the selected format.

Presets select a known export variant:
  legacy       CSV, one row per creator, identifiers kept
  spreadsheet  flat OpenDocument spreadsheet, standalone notes included
  seektable    CSV, PMID/PMCID URLs, identifiers stripped (default)

Any option given explicitly overrides the preset.`,
		Example: `  # Export a Zotero database with the default preset to stdout
  bibtable export --library ~/Zotero/zotero.sqlite

  # Spreadsheet export with automatic tags bundled one per line
  bibtable export --library library.json --preset spreadsheet \
    --bundle-automatic-tags --automatic-tag-delimiter crlf --output library.fods

  # Parquet export with a run summary and metrics textfile
  bibtable export --library items.jsonl --format parquet --output out/ \
    --summary out/run.yaml --metrics-file /var/lib/node_exporter/bibtable.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := config.BindFlags(opts, cmd.Flags(), exportOptionKeys...); err != nil {
				return err
			}
			return runExport(cmd.Context(), opts, paths, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&paths.library, "library", "", "Path to the library (.json, .jsonl, .sqlite) (required)")
	cmd.Flags().StringVarP(&paths.output, "output", "o", "-", "Output file or directory (- for stdout)")
	cmd.Flags().StringVar(&paths.summary, "summary", "", "Write a YAML run summary to this path")
	cmd.Flags().StringVar(&paths.metrics, "metrics-file", "", "Write Prometheus textfile metrics to this path")

	cmd.Flags().String(tabulate.OptPreset, tabulate.DefaultPreset, "Export preset (legacy, spreadsheet, seektable)")
	cmd.Flags().String(tabulate.OptFormat, "", "Output format (csv, ods, parquet); defaults to the preset's")
	cmd.Flags().Bool(tabulate.OptBundleAutomaticTags, false, "Join automatic tags into one column instead of expanding rows")
	cmd.Flags().String(tabulate.OptAutomaticTagDelimiter, "comma", "Delimiter for bundled automatic tags (comma, crlf, lf, or literal text)")
	cmd.Flags().Bool(tabulate.OptExpandCreators, false, "Emit one row per creator")
	cmd.Flags().String(tabulate.OptLibraryName, "", "Library name used as the spreadsheet sheet name")
	cmd.Flags().String(tabulate.OptCollectionSeparator, "/", "Separator between collection path segments")

	_ = cmd.MarkFlagRequired("library")
	return cmd
}

func runExport(ctx context.Context, opts *viper.Viper, paths exportPaths, stdout io.Writer) error {
	cfg, err := tabulate.ResolveConfig(opts)
	if err != nil {
		return err
	}
	format := encode.NormalizeFormat(cfg.Format)
	if !format.Supported() {
		return fmt.Errorf("%w: %s (supported: csv, ods, parquet)", encode.ErrUnsupportedFormat, cfg.Format)
	}
	cfg.Format = string(format)

	lib, err := library.Load(paths.library)
	if err != nil {
		return err
	}
	if !opts.IsSet(tabulate.OptLibraryName) && lib.Name != "" {
		cfg.LibraryName = lib.Name
	}

	slog.Debug("Library loaded",
		"path", paths.library,
		"items", lib.ItemCount(),
		"collections", lib.CollectionCount())

	target := outputPath(paths.output, paths.library, format)

	var out io.Writer = stdout
	var file *os.File
	if target != "" {
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if file, err = os.Create(target); err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	buffered := bufio.NewWriter(out)
	enc, err := encode.New(format, buffered, cfg.LibraryName)
	if err != nil {
		return err
	}

	m := metrics.New()
	exporter := tabulate.NewExporter(cfg, dates.New(), tabulate.WithMetrics(m))
	summary, err := exporter.Export(ctx, lib.Items(), lib.Collections(), enc)
	if err != nil {
		return err
	}

	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		slog.Info("Export written", "path", target, "rows", summary.Rows, "columns", len(summary.Columns))
	}

	if paths.summary != "" {
		if err := report.SaveToYAML(paths.summary, summary); err != nil {
			return err
		}
		slog.Info("Run summary saved", "path", paths.summary)
	}
	if paths.metrics != "" {
		if err := m.WriteTextfile(paths.metrics); err != nil {
			return err
		}
	}

	return nil
}

// outputPath returns the file to write, or "" for stdout. An existing
// directory receives a file named after the library.
func outputPath(output, libraryPath string, format encode.Format) string {
	if output == "" || output == "-" {
		return ""
	}
	if info, err := os.Stat(output); (err == nil && info.IsDir()) || strings.HasSuffix(output, string(os.PathSeparator)) {
		base := strings.TrimSuffix(filepath.Base(libraryPath), filepath.Ext(libraryPath))
		return filepath.Join(output, base+format.Extension())
	}
	return output
}
