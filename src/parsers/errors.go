// src/parsers/errors.go
package parsers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingData means no usable input bytes were provided.
	ErrMissingData = errors.New("no ledger data provided")
	// ErrUnsupportedFormat means the filename extension maps to no adapter.
	ErrUnsupportedFormat = errors.New("unsupported ledger file format")
)

// SchemaError reports that the parsed output is missing required columns, or
// that no header row could be located at all.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ledger schema incomplete, missing columns: %s", strings.Join(e.Missing, ", "))
}
