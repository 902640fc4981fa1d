package encode

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

const odsPreamble = `<?xml version="1.0" encoding="UTF-8"?>
<office:document xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.2" office:mimetype="application/vnd.oasis.opendocument.spreadsheet">
<office:body>
<office:spreadsheet>
`

const odsSuffix = `</table:table>
</office:spreadsheet>
</office:body>
</office:document>
`

var (
	xmlEscaper = strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
		`'`, "&apos;",
	)
	lineSplitRe = regexp.MustCompile(`\r\n|\r|\n`)
)

// ODSEncoder writes a flat OpenDocument spreadsheet with a single sheet.
// Every cell is a string cell holding one paragraph per line of its value.
type ODSEncoder struct {
	w       io.Writer
	sheet   string
	started bool
}

// NewODS returns a spreadsheet-markup encoder whose sheet is named sheet.
func NewODS(w io.Writer, sheet string) *ODSEncoder {
	return &ODSEncoder{w: w, sheet: sheet}
}

// WriteHeader writes the document preamble, one column definition per
// header and the header row.
func (e *ODSEncoder) WriteHeader(headers []string) error {
	var b strings.Builder
	e.preamble(&b, len(headers))

	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	writeODSRow(&b, values)

	e.started = true
	_, err := io.WriteString(e.w, b.String())
	return err
}

func (e *ODSEncoder) WriteRow(values []any) error {
	var b strings.Builder
	writeODSRow(&b, values)
	_, err := io.WriteString(e.w, b.String())
	return err
}

// Close writes the closing markup. A document that never received a
// header still gets its preamble so the output is well formed.
func (e *ODSEncoder) Close() error {
	var b strings.Builder
	if !e.started {
		e.preamble(&b, 0)
		e.started = true
	}
	b.WriteString(odsSuffix)
	_, err := io.WriteString(e.w, b.String())
	return err
}

func (e *ODSEncoder) preamble(b *strings.Builder, columns int) {
	b.WriteString(odsPreamble)
	b.WriteString(`<table:table table:name="`)
	b.WriteString(xmlText(e.sheet))
	b.WriteString("\">\n")
	for range columns {
		b.WriteString("<table:table-column/>\n")
	}
}

func writeODSRow(b *strings.Builder, values []any) {
	b.WriteString("<table:table-row>")
	for _, v := range values {
		b.WriteString(`<table:table-cell office:value-type="string">`)
		for _, line := range lineSplitRe.Split(Cell(v), -1) {
			b.WriteString("<text:p>")
			b.WriteString(xmlText(line))
			b.WriteString("</text:p>")
		}
		b.WriteString("</table:table-cell>")
	}
	b.WriteString("</table:table-row>\n")
}

// xmlText escapes s for XML content. Invalid UTF-8 and characters outside
// the XML 1.0 Char production become U+FFFD.
func xmlText(s string) string {
	s = strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return utf8.RuneError
	}, strings.ToValidUTF8(s, string(utf8.RuneError)))
	return xmlEscaper.Replace(s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= utf8.MaxRune
	}
}
