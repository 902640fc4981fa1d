package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/bibtable/internal/config"
	"github.com/lehigh-university-libraries/bibtable/internal/library"
	"github.com/lehigh-university-libraries/bibtable/internal/tabulate"
	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

func newCollectionsCmd(root *rootOptions) *cobra.Command {
	var libraryPath string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the resolved path of every collection in a library",
		Long: `Collections prints each collection key with the path the export writes in the
collection column, one per line and sorted by key. Cyclic parent chains are cut
where they revisit a collection.`,
		Example: `  bibtable collections --library ~/Zotero/zotero.sqlite
  bibtable collections --library library.json --collection-separator " > "`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := config.BindFlags(opts, cmd.Flags(), tabulate.OptCollectionSeparator); err != nil {
				return err
			}

			separator := "/"
			if opts.IsSet(tabulate.OptCollectionSeparator) && opts.GetString(tabulate.OptCollectionSeparator) != "" {
				separator = opts.GetString(tabulate.OptCollectionSeparator)
			}

			lib, err := library.Load(libraryPath)
			if err != nil {
				return err
			}
			return listCollections(cmd.OutOrStdout(), lib.Collections(), separator)
		},
	}

	cmd.Flags().StringVar(&libraryPath, "library", "", "Path to the library (.json, .jsonl, .sqlite) (required)")
	cmd.Flags().String(tabulate.OptCollectionSeparator, "/", "Separator between collection path segments")

	_ = cmd.MarkFlagRequired("library")
	return cmd
}

func listCollections(w io.Writer, cursor zotero.CollectionCursor, separator string) error {
	var all []zotero.Collection
	for {
		c, err := cursor.NextCollection()
		if err != nil {
			return fmt.Errorf("failed to read collections: %w", err)
		}
		if c == nil {
			break
		}
		all = append(all, *c)
	}

	resolver := tabulate.NewResolver(all)
	for _, key := range resolver.Keys() {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", key, strings.Join(resolver.Path(key), separator)); err != nil {
			return err
		}
	}
	return nil
}
