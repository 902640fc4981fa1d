package encode

import (
	"io"
	"strings"
)

// CSVEncoder writes comma-separated rows terminated by CRLF. A value is
// quoted only when it contains a comma, a double quote or a line break;
// embedded quotes are doubled.
type CSVEncoder struct {
	w io.Writer
}

// NewCSV returns a delimited-text encoder writing to w.
func NewCSV(w io.Writer) *CSVEncoder {
	return &CSVEncoder{w: w}
}

func (e *CSVEncoder) WriteHeader(headers []string) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	return e.WriteRow(values)
}

func (e *CSVEncoder) WriteRow(values []any) error {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(Cell(v)))
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(e.w, b.String())
	return err
}

// Close is a no-op; delimited text has no trailer.
func (e *CSVEncoder) Close() error {
	return nil
}

func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
