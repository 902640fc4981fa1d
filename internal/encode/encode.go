// Package encode serializes flat rows into the supported table formats.
package encode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format identifies an output encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatODS     Format = "ods"
	FormatParquet Format = "parquet"
)

// ErrUnsupportedFormat is returned by New for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Encoder writes a header row, data rows, and any closing markup.
type Encoder interface {
	WriteHeader(headers []string) error
	WriteRow(values []any) error
	Close() error
}

// NormalizeFormat coerces format names into known aliases with defaults applied.
func NormalizeFormat(format string) Format {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "", "csv", "text", "delimited":
		return FormatCSV
	case "ods", "fods", "spreadsheet", "opendocument":
		return FormatODS
	case "parquet", "pq":
		return FormatParquet
	default:
		return Format(normalized)
	}
}

// Supported reports whether New has an encoder for f.
func (f Format) Supported() bool {
	switch NormalizeFormat(string(f)) {
	case FormatCSV, FormatODS, FormatParquet:
		return true
	default:
		return false
	}
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatODS:
		return ".fods"
	case FormatParquet:
		return ".parquet"
	default:
		return ".csv"
	}
}

// New returns the encoder for format writing to w. sheetName names the
// table in formats that carry one.
func New(format Format, w io.Writer, sheetName string) (Encoder, error) {
	switch NormalizeFormat(string(format)) {
	case FormatCSV:
		return NewCSV(w), nil
	case FormatODS:
		return NewODS(w, sheetName), nil
	case FormatParquet:
		return NewParquet(w), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: csv, ods, parquet)", ErrUnsupportedFormat, format)
	}
}

// Cell renders a row value as cell text. Numbers use their shortest decimal
// form; nil renders empty.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
