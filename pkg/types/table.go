// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawTable is one table as produced by the table collaborator for a single
// page: ordered rows of cell strings, rectangular or ragged. Rows[0] is
// treated as the header row.
type RawTable struct {
	// Page is the zero-based page index the table was found on.
	Page int `json:"page" yaml:"page"`

	// Rows holds the cell text, header row first.
	Rows [][]string `json:"rows" yaml:"rows"`
}

// Cols returns the widest row's cell count.
func (t RawTable) Cols() int {
	max := 0
	for _, row := range t.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Header returns the first row, or nil for an empty table.
func (t RawTable) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// DataRows returns every row after the header.
func (t RawTable) DataRows() [][]string {
	if len(t.Rows) <= 1 {
		return nil
	}
	return t.Rows[1:]
}

// LogicalTable is a merged cross-page table: one header, data rows from
// every page fragment, and the contiguous page range it spans. All cell
// text is whitespace-normalized.
type LogicalTable struct {
	StartPage int        `json:"start_page" yaml:"start_page"`
	EndPage   int        `json:"end_page" yaml:"end_page"`
	Headers   []string   `json:"headers" yaml:"headers"`
	Rows      [][]string `json:"rows" yaml:"rows"`
}
