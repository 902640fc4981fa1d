package encode

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetEncoder writes rows into a Parquet file whose schema has one
// required UTF-8 string column per header.
type ParquetEncoder struct {
	w       io.Writer
	writer  *parquet.Writer
	columns []int
}

// NewParquet returns a columnar encoder writing to w.
func NewParquet(w io.Writer) *ParquetEncoder {
	return &ParquetEncoder{w: w}
}

// WriteHeader builds the schema. An export without columns writes no file.
func (e *ParquetEncoder) WriteHeader(headers []string) error {
	if len(headers) == 0 {
		return nil
	}

	group := make(parquet.Group, len(headers))
	for _, h := range headers {
		group[h] = parquet.String()
	}
	schema := parquet.NewSchema("bibtable", group)

	// leaf order in the schema is the group's field order; map header
	// positions onto it instead of assuming the two agree
	e.columns = make([]int, len(headers))
	for i, h := range headers {
		leaf, ok := schema.Lookup(h)
		if !ok {
			return fmt.Errorf("column %q missing from parquet schema", h)
		}
		e.columns[i] = leaf.ColumnIndex
	}

	e.writer = parquet.NewWriter(e.w, schema)
	return nil
}

func (e *ParquetEncoder) WriteRow(values []any) error {
	if e.writer == nil {
		return nil
	}
	row := make(parquet.Row, len(e.columns))
	for i, v := range values {
		col := e.columns[i]
		row[col] = parquet.ValueOf(Cell(v)).Level(0, 0, col)
	}
	if _, err := e.writer.WriteRows([]parquet.Row{row}); err != nil {
		return fmt.Errorf("failed to write parquet row: %w", err)
	}
	return nil
}

// Close flushes buffered row groups and writes the file footer.
func (e *ParquetEncoder) Close() error {
	if e.writer == nil {
		return nil
	}
	if err := e.writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
