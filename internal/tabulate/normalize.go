package tabulate

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/bibtable/internal/encode"
	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

// Host bookkeeping that never reaches the table.
var bookkeepingFields = []string{"attachments", "uri", "relations", "version"}

var identifierFields = []string{"citationKey", "itemID", "key", "libraryID"}

var (
	noteBreakRe = regexp.MustCompile(`(?:\r\n|\r|\n|\x{00A0}|&nbsp;)+`)
	fullURLRe   = regexp.MustCompile(`(?i)^https?://`)
	pmcidRe     = regexp.MustCompile(`(?i)^\s*PMCID:\s*(?:PMC)?([0-9]+)\s*$`)
	pmidRe      = regexp.MustCompile(`(?i)^\s*PMID:\s*([0-9]+)\s*$`)
)

const (
	doiPrefix   = "http://doi.org/"
	pubmedURL   = "https://www.ncbi.nlm.nih.gov/pubmed/"
	pmcURL      = "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC"
	columnNotes = "notes"
)

// NormalizedItem is an item reduced to canonical scalar fields plus the
// multi-valued sequences rows are expanded from. Every sequence holds at
// least one element.
type NormalizedItem struct {
	Fields        map[string]any
	Creators      []string
	ManualTags    []string
	AutomaticTags []string
	Collections   [][]string
}

// Normalizer turns host items into NormalizedItems.
type Normalizer struct {
	cfg      Config
	resolver *Resolver
	dates    zotero.DateParser
}

// NewNormalizer returns a normalizer resolving collections through resolver
// and dates through dates.
func NewNormalizer(cfg Config, resolver *Resolver, dates zotero.DateParser) *Normalizer {
	return &Normalizer{cfg: cfg, resolver: resolver, dates: dates}
}

// Normalize builds the normalized form of item. It reports false for items
// that produce no rows (attachments, and standalone notes when configured).
// item is never modified.
func (n *Normalizer) Normalize(item *zotero.Item) (*NormalizedItem, bool) {
	itemType := item.Type()
	if itemType == zotero.TypeAttachment {
		return nil, false
	}
	if itemType == zotero.TypeNote && n.cfg.SkipStandaloneNotes {
		return nil, false
	}

	fields := make(map[string]any, len(item.Fields)+6)
	for k, v := range item.Fields {
		if isScalar(v) {
			fields[k] = v
		}
	}

	Alias(fields)

	for _, f := range bookkeepingFields {
		delete(fields, f)
	}
	if n.cfg.StripIdentifiers {
		for _, f := range identifierFields {
			delete(fields, f)
		}
	}

	out := &NormalizedItem{Fields: fields}

	out.Creators = make([]string, 0, len(item.Creators))
	for _, c := range item.Creators {
		out.Creators = append(out.Creators, CreatorName(c))
	}
	if !n.cfg.ExpandCreators {
		named := make([]string, 0, len(out.Creators))
		for _, name := range out.Creators {
			if name != "" {
				named = append(named, name)
			}
		}
		fields["creators"] = strings.Join(named, n.cfg.CreatorSeparator)
	}
	if len(out.Creators) == 0 {
		out.Creators = []string{""}
	}

	bodies := make([]string, 0, len(item.Notes)+1)
	if itemType == zotero.TypeNote {
		if body, ok := fields["note"].(string); ok {
			bodies = append(bodies, body)
		}
		delete(fields, "note")
	}
	for _, note := range item.Notes {
		bodies = append(bodies, note.Note)
	}
	fields[columnNotes] = RenderNotes(bodies)

	url, extra := n.deriveURL(textField(fields, "url"), textField(fields, "DOI"), textField(fields, "extra"))
	fields["url"] = url
	fields["extra"] = extra

	date := textField(fields, "date")
	year := ""
	if date != "" {
		year, _ = n.dates.Year(date)
		if iso, ok := n.dates.ISO(date); ok {
			date = iso
		}
	}
	fields["date"] = date
	fields["year"] = year

	for _, tag := range item.Tags {
		if tag.Automatic() {
			out.AutomaticTags = append(out.AutomaticTags, tag.Tag)
		} else {
			out.ManualTags = append(out.ManualTags, tag.Tag)
		}
	}
	if len(out.ManualTags) == 0 {
		out.ManualTags = []string{""}
	}
	if len(out.AutomaticTags) == 0 {
		out.AutomaticTags = []string{""}
	}

	seen := make(map[string]bool, len(item.Collections))
	for _, key := range item.Collections {
		path := n.resolver.Path(key)
		if len(path) == 0 {
			continue
		}
		rendered := strings.Join(path, n.cfg.CollectionSeparator)
		if seen[rendered] {
			continue
		}
		seen[rendered] = true
		out.Collections = append(out.Collections, path)
	}
	if len(out.Collections) == 0 {
		out.Collections = [][]string{{}}
	}

	return out, true
}

// deriveURL fills a missing URL from the DOI or, when enabled, from a
// PMCID/PMID line in extra, and returns the cleaned extra text.
func (n *Normalizer) deriveURL(url, doi, extra string) (string, string) {
	if url == "" && doi != "" {
		if fullURLRe.MatchString(doi) {
			url = doi
		} else {
			url = doiPrefix + doi
		}
	}

	if url == "" && n.cfg.ExtraIdentifiers && extra != "" {
		lines := strings.Split(strings.ReplaceAll(extra, "\r\n", "\n"), "\n")
		consumed := -1
		for i, line := range lines {
			if m := pmcidRe.FindStringSubmatch(line); m != nil {
				url = pmcURL + m[1] + "/"
				consumed = i
				break
			}
		}
		if consumed < 0 {
			for i, line := range lines {
				if m := pmidRe.FindStringSubmatch(line); m != nil {
					url = pubmedURL + m[1]
					consumed = i
					break
				}
			}
		}
		if consumed >= 0 {
			lines = append(lines[:consumed], lines[consumed+1:]...)
			extra = strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}

	if n.cfg.DropStructuredExtra && strings.Contains(extra, ":") {
		extra = ""
	}
	return url, extra
}

// CreatorName renders a creator for display: the single-field name if set,
// otherwise "last, first" with whichever parts exist.
func CreatorName(c zotero.Creator) string {
	if c.Name != "" {
		return c.Name
	}
	switch {
	case c.LastName != "" && c.FirstName != "":
		return c.LastName + ", " + c.FirstName
	case c.LastName != "":
		return c.LastName
	default:
		return c.FirstName
	}
}

// RenderNotes combines note bodies into one cell. A single note is kept
// verbatim, several are each wrapped in a div. Line breaks and non-breaking
// spaces collapse to a single space.
func RenderNotes(bodies []string) string {
	var text string
	switch len(bodies) {
	case 0:
		return ""
	case 1:
		text = bodies[0]
	default:
		var b strings.Builder
		for _, body := range bodies {
			b.WriteString("<div>")
			b.WriteString(body)
			b.WriteString("</div>")
		}
		text = b.String()
	}
	return noteBreakRe.ReplaceAllString(text, " ")
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64, int32, json.Number:
		return true
	default:
		return false
	}
}

// textField renders a scalar field as text so numeric or boolean values
// survive the string-only rules applied to it.
func textField(fields map[string]any, key string) string {
	return encode.Cell(fields[key])
}
