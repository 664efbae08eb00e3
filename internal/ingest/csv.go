// Package ingest reads the rate feeds and turns them into rate snapshots.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is a parsed feed. Header names are lowercased and trimmed; Header
// keeps their source order.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Has reports whether the table carries the named column.
func (t Table) Has(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// ParseTable reads a header-first CSV feed. Blank lines are skipped and short
// rows are padded with empty values.
func ParseTable(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("feed is empty")
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	table := Table{Header: make([]string, len(header))}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		table.Header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		if blank(record) {
			continue
		}

		row := make(map[string]string, len(table.Header))
		for i, name := range table.Header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
