// src/parsers/parser.go
package parsers

import "github.com/username/ledgerflow/src/models"

// Result is what every adapter produces: the canonical rows plus the canonical
// column names the adapter actually located in the source. The loader checks
// schema completeness against Columns, not against field emptiness, because a
// legitimately present column can still be blank on any given row.
type Result struct {
	Rows    []models.CanonicalRow
	Columns []string
}

// Parser converts one source format into canonical ledger rows.
type Parser interface {
	Parse(data []byte) (*Result, error)
}
