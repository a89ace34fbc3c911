package service

import (
	"context"
	"strings"
)

// Table is one extracted tabular dataset, row-major.
type Table [][]string

// DocumentAnalyzer is the pluggable document analysis stage. Implementations
// must degrade to empty results instead of failing the upload: a broken
// analysis never costs the caller their file.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, localPath string) (text string, tables []Table, err error)
}

// FilterTables keeps only tables containing at least one of the requested
// column names, matched case-insensitively against the flattened row text.
// An empty filter keeps everything.
func FilterTables(tables []Table, columns []string) []Table {
	if len(columns) == 0 {
		return tables
	}

	kept := make([]Table, 0, len(tables))

	for _, t := range tables {
		var flat strings.Builder
		for _, row := range t {
			flat.WriteString(strings.ToLower(strings.Join(row, " ")))
			flat.WriteByte(' ')
		}

		for _, col := range columns {
			if strings.Contains(flat.String(), strings.ToLower(col)) {
				kept = append(kept, t)
				break
			}
		}
	}

	return kept
}
