package tabulate

import (
	"maps"
	"strings"
)

// Columns added by row expansion.
const (
	ColumnCreator       = "creator"
	ColumnCollection    = "collection"
	ColumnTag           = "tag"
	ColumnAutomaticTag  = "automaticTag"
	ColumnAutomaticTags = "automaticTags"
)

// Row is one flat output record keyed by column name.
type Row map[string]any

type dimension struct {
	column string
	values []string
}

// Expand produces one row per combination of the item's expanded
// dimensions, outermost first: creator (when expanded), collection, manual
// tag, automatic tag (unless bundled).
func Expand(cfg Config, item *NormalizedItem) []Row {
	base := make(Row, len(item.Fields)+4)
	maps.Copy(base, item.Fields)

	var dims []dimension
	if cfg.ExpandCreators {
		dims = append(dims, dimension{ColumnCreator, nonEmpty(item.Creators)})
	}

	collections := make([]string, 0, len(item.Collections))
	for _, path := range item.Collections {
		collections = append(collections, strings.Join(path, cfg.CollectionSeparator))
	}
	dims = append(dims,
		dimension{ColumnCollection, nonEmpty(collections)},
		dimension{ColumnTag, nonEmpty(item.ManualTags)},
	)

	if cfg.BundleAutomaticTags {
		tags := make([]string, 0, len(item.AutomaticTags))
		for _, t := range item.AutomaticTags {
			if t != "" {
				tags = append(tags, t)
			}
		}
		base[ColumnAutomaticTags] = strings.Join(tags, cfg.AutomaticTagDelimiter)
	} else {
		dims = append(dims, dimension{ColumnAutomaticTag, nonEmpty(item.AutomaticTags)})
	}

	rows := []Row{base}
	for _, d := range dims {
		next := make([]Row, 0, len(rows)*len(d.values))
		for _, r := range rows {
			for _, v := range d.values {
				row := maps.Clone(r)
				row[d.column] = v
				next = append(next, row)
			}
		}
		rows = next
	}
	return rows
}

// nonEmpty guards the cross product against a zero-length dimension.
func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}
