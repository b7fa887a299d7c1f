// src/parsers/loader.go
package parsers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/username/ledgerflow/src/logger"
	"github.com/username/ledgerflow/src/models"
)

// requiredColumns must be present (as columns, not as non-empty values) for the
// canonical shape to be usable downstream.
var requiredColumns = []string{ColTransType, ColDate, ColParticulars, ColDebit, ColCredit}

// LedgerLoader dispatches raw bytes to the adapter matching the filename
// extension and checks schema completeness on the result.
type LedgerLoader struct {
	currency string
}

func NewLedgerLoader(currency string) *LedgerLoader {
	return &LedgerLoader{currency: currency}
}

// LoadRows parses one uploaded ledger export into canonical rows.
func (l *LedgerLoader) LoadRows(filename string, data []byte) ([]models.CanonicalRow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrMissingData
	}

	ext := strings.ToLower(filepath.Ext(filename))
	parser, err := l.parserFor(ext)
	if err != nil {
		return nil, err
	}

	var result *Result
	if ext == ".pdf" {
		text, extractErr := ExtractStatementText(data)
		if extractErr != nil {
			return nil, fmt.Errorf("failed to extract statement text: %w", extractErr)
		}
		result, err = parser.Parse([]byte(text))
	} else {
		result, err = parser.Parse(data)
	}
	if err != nil {
		return nil, err
	}

	if missing := missingColumns(result.Columns); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	if logger.L != nil {
		logger.L.Info("Ledger parsed", "filename", filename, "rows", len(result.Rows))
	}
	return result.Rows, nil
}

func (l *LedgerLoader) parserFor(ext string) (Parser, error) {
	// Legacy .xls OLE workbooks are not sheet-parseable here and fall through
	// to the unsupported-format error.
	switch ext {
	case ".xlsx":
		return NewSheetParser(), nil
	case ".csv", ".txt":
		return NewDelimitedParser(), nil
	case ".pdf":
		return NewStatementParser(l.currency), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func missingColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	var missing []string
	for _, required := range requiredColumns {
		if !seen[required] {
			missing = append(missing, required)
		}
	}
	return missing
}
