package tabulate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

// Preset names for the export variants.
const (
	PresetLegacy      = "legacy"
	PresetSpreadsheet = "spreadsheet"
	PresetSeekTable   = "seektable"

	DefaultPreset = PresetSeekTable
)

// Option keys read from the host.
const (
	OptPreset                = "preset"
	OptFormat                = "format"
	OptBundleAutomaticTags   = "bundle-automatic-tags"
	OptAutomaticTagDelimiter = "automatic-tag-delimiter"
	OptExpandCreators        = "expand-creators"
	OptLibraryName           = "library-name"
	OptCollectionSeparator   = "collection-separator"
)

// ErrUnknownPreset is returned for a preset name with no configuration.
var ErrUnknownPreset = errors.New("unknown preset")

// Config selects how items are flattened. It is resolved once before a run
// and never consulted through the host again.
type Config struct {
	Preset string
	Format string

	// ExpandCreators emits one row per creator in a "creator" column instead
	// of a single "creators" column joined with CreatorSeparator.
	ExpandCreators   bool
	CreatorSeparator string

	// BundleAutomaticTags joins automatic tags into one "automaticTags"
	// column instead of expanding them into rows.
	BundleAutomaticTags   bool
	AutomaticTagDelimiter string

	// SkipStandaloneNotes drops top-level note items; otherwise the note
	// body becomes the item's notes column.
	SkipStandaloneNotes bool

	// StripIdentifiers also removes citationKey, itemID, key and libraryID.
	StripIdentifiers bool

	// ExtraIdentifiers lets a PMCID or PMID line in extra supply the URL.
	ExtraIdentifiers bool

	// DropStructuredExtra clears extra when it still contains a colon.
	DropStructuredExtra bool

	CollectionSeparator string
	LibraryName         string
}

// PresetConfig returns the configuration of a named variant.
func PresetConfig(name string) (Config, error) {
	cfg := Config{
		Preset:                name,
		CreatorSeparator:      "; ",
		AutomaticTagDelimiter: ", ",
		CollectionSeparator:   "/",
		LibraryName:           "My Library",
	}

	switch name {
	case PresetLegacy:
		cfg.Format = "csv"
		cfg.ExpandCreators = true
		cfg.SkipStandaloneNotes = true
	case PresetSpreadsheet:
		cfg.Format = "ods"
		cfg.StripIdentifiers = true
		cfg.ExtraIdentifiers = true
		cfg.DropStructuredExtra = true
	case PresetSeekTable:
		cfg.Format = "csv"
		cfg.SkipStandaloneNotes = true
		cfg.StripIdentifiers = true
		cfg.ExtraIdentifiers = true
		cfg.DropStructuredExtra = true
	default:
		return Config{}, fmt.Errorf("%w: %q (supported: %s, %s, %s)", ErrUnknownPreset, name, PresetLegacy, PresetSpreadsheet, PresetSeekTable)
	}

	return cfg, nil
}

// ResolveConfig reads the host options once and layers them over the
// selected preset.
func ResolveConfig(opts zotero.Options) (Config, error) {
	name := DefaultPreset
	if opts.IsSet(OptPreset) && opts.GetString(OptPreset) != "" {
		name = strings.ToLower(strings.TrimSpace(opts.GetString(OptPreset)))
	}

	cfg, err := PresetConfig(name)
	if err != nil {
		return Config{}, err
	}

	if opts.IsSet(OptFormat) && opts.GetString(OptFormat) != "" {
		cfg.Format = opts.GetString(OptFormat)
	}
	if opts.IsSet(OptBundleAutomaticTags) {
		cfg.BundleAutomaticTags = opts.GetBool(OptBundleAutomaticTags)
	}
	if opts.IsSet(OptAutomaticTagDelimiter) {
		cfg.AutomaticTagDelimiter = ParseDelimiter(opts.GetString(OptAutomaticTagDelimiter))
	}
	if opts.IsSet(OptExpandCreators) {
		cfg.ExpandCreators = opts.GetBool(OptExpandCreators)
	}
	if opts.IsSet(OptLibraryName) && opts.GetString(OptLibraryName) != "" {
		cfg.LibraryName = opts.GetString(OptLibraryName)
	}
	if opts.IsSet(OptCollectionSeparator) && opts.GetString(OptCollectionSeparator) != "" {
		cfg.CollectionSeparator = opts.GetString(OptCollectionSeparator)
	}

	return cfg, nil
}

var (
	lineBreakTokensRe = regexp.MustCompile(`(?i)^(?:\s*(?:cr|lf)\s*)+$`)
	lineBreakTokenRe  = regexp.MustCompile(`(?i)cr|lf`)
)

// ParseDelimiter turns the automatic tag delimiter preference into the
// literal separator: "" and "comma" mean ", ", a run of cr/lf tokens
// ("crlf", "LF", "cr lf") means those control characters, and anything
// else is used verbatim.
func ParseDelimiter(s string) string {
	if s == "" || strings.EqualFold(strings.TrimSpace(s), "comma") {
		return ", "
	}
	if !lineBreakTokensRe.MatchString(s) {
		return s
	}

	var b strings.Builder
	for _, token := range lineBreakTokenRe.FindAllString(s, -1) {
		if strings.EqualFold(token, "cr") {
			b.WriteByte('\r')
		} else {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
