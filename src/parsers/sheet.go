// src/parsers/sheet.go
package parsers

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetParser ingests spreadsheet workbooks (.xlsx). Only the first worksheet
// is read; broker exports put the ledger there.
type SheetParser struct{}

func NewSheetParser() *SheetParser {
	return &SheetParser{}
}

func (p *SheetParser) Parse(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// Raw cell values keep date serials numeric. Letting excelize format them
	// would stringify a serial into whatever display format the export chose,
	// and the date resolver could no longer tell a serial from a small integer.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return tableToRows(rows)
}
