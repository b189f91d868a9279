package store

import (
	"bytes"        // In-memory buffers for encoding
	"encoding/csv" // Delimited-text codec
	"fmt"          // Error formatting
)

// Table is a named flat dataset: a fixed column schema plus string rows.
// Datasets are always read and written wholesale; there are no row-level
// operations at this layer.
type Table struct {
	Columns []string   // Fixed schema, also the CSV header row
	Rows    [][]string // Data rows, each len(Columns) wide
}

// NewTable returns an empty table with the given schema
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row; the value count must match the schema
func (t *Table) Append(values ...string) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("store: row has %d values, schema has %d columns", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// Marshal encodes the table as CSV with a header row
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalTable decodes CSV produced by Marshal, checking the header
// against the expected schema so a renamed or reordered column fails loudly
// instead of silently shifting fields.
func UnmarshalTable(data []byte, columns ...string) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(columns)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("store: decode dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("store: dataset has no header row")
	}
	for i, col := range columns {
		if records[0][i] != col {
			return nil, fmt.Errorf("store: dataset column %d is %q, want %q", i, records[0][i], col)
		}
	}
	return &Table{Columns: columns, Rows: records[1:]}, nil
}
