// src/parsers/header.go
package parsers

import (
	"math"
	"regexp"
	"strings"

	"github.com/username/ledgerflow/src/models"
)

// Canonical column names after header normalization. ColTransType doubles as
// the header-row marker: the first row containing it is the real table header,
// anything above it is report preamble.
const (
	ColTransType    = "TRANS_TYPE"
	ColRefNo        = "REF_NO"
	ColDate         = "DATE"
	ColDueDate      = "DUE_DATE"
	ColParticulars  = "PARTICULARS"
	ColSecurity     = "SECURITY"
	ColShares       = "NO_OF_SHARES"
	ColUnitPrice    = "UNIT_PRICE"
	ColFxAmount     = "FX_AMOUNT"
	ColFxRunningBal = "FX_RUNNING_BALANCE"
	ColCurrency     = "CURRENCY"
	ColDebit        = "DEBIT_AMOUNT"
	ColCredit       = "CREDIT_AMOUNT"
	ColRunningBal   = "RUNNING_BALANCE"
)

// Some export tooling letter-spaces header cells ("T R A N S  T Y P E").
// After normalization those collapse to underscore-joined letters; map the two
// known variants back to their canonical names.
var letterSpacedHeaders = map[string]string{
	"T_R_A_N_S_T_Y_P_E":     ColTransType,
	"P_A_R_T_I_C_U_L_A_R_S": ColParticulars,
}

var repeatedUnderscores = regexp.MustCompile(`_+`)

// NormalizeHeader maps a raw header cell to its canonical column name:
// trimmed, internal whitespace collapsed, upper-cased, spaces to underscores,
// repeated underscores collapsed, periods stripped.
func NormalizeHeader(cell string) string {
	s := strings.Join(strings.Fields(cell), " ")
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = repeatedUnderscores.ReplaceAllString(s, "_")
	s = strings.ReplaceAll(s, ".", "")
	if canonical, ok := letterSpacedHeaders[s]; ok {
		return canonical
	}
	return s
}

// columnBinding couples a canonical column name with the coercion that writes
// its cell value into a CanonicalRow. The table is the complete header-to-field
// mapping; unrecognized columns are simply not bound.
type columnBinding struct {
	name   string
	assign func(row *models.CanonicalRow, cell string)
}

var columnBindings = []columnBinding{
	{ColTransType, func(r *models.CanonicalRow, c string) { r.TransactionCode = strings.TrimSpace(c) }},
	{ColRefNo, func(r *models.CanonicalRow, c string) { r.ReferenceNumber = strings.TrimSpace(c) }},
	{ColDate, func(r *models.CanonicalRow, c string) {
		if t, ok := ResolveLedgerDate(c); ok {
			r.Date = t
		}
	}},
	{ColDueDate, func(r *models.CanonicalRow, c string) {
		if t, ok := ResolveLedgerDate(c); ok {
			r.DueDate = t
		}
	}},
	{ColParticulars, func(r *models.CanonicalRow, c string) { r.Particulars = strings.TrimSpace(c) }},
	{ColSecurity, func(r *models.CanonicalRow, c string) { r.Security = strings.TrimSpace(c) }},
	{ColShares, func(r *models.CanonicalRow, c string) { r.NumberOfShares = ParseOptionalAmount(c) }},
	{ColUnitPrice, func(r *models.CanonicalRow, c string) { r.UnitPrice = ParseOptionalAmount(c) }},
	{ColFxAmount, func(r *models.CanonicalRow, c string) { r.FxAmount = ParseOptionalAmount(c) }},
	{ColFxRunningBal, func(r *models.CanonicalRow, c string) { r.FxRunningBal = ParseOptionalAmount(c) }},
	{ColCurrency, func(r *models.CanonicalRow, c string) { r.Currency = strings.TrimSpace(c) }},
	{ColDebit, func(r *models.CanonicalRow, c string) {
		if v, ok := ParseAmount(c); ok {
			r.DebitAmount = math.Abs(v)
		}
	}},
	{ColCredit, func(r *models.CanonicalRow, c string) {
		if v, ok := ParseAmount(c); ok {
			r.CreditAmount = math.Abs(v)
		}
	}},
	{ColRunningBal, func(r *models.CanonicalRow, c string) { r.RunningBalance = ParseOptionalAmount(c) }},
}

func bindingFor(name string) *columnBinding {
	for i := range columnBindings {
		if columnBindings[i].name == name {
			return &columnBindings[i]
		}
	}
	return nil
}

// findHeaderRow scans top-down for the first row carrying the marker column.
// Returns -1 when the table has no recognizable header.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if NormalizeHeader(cell) == ColTransType {
				return i
			}
		}
	}
	return -1
}

// tableToRows converts a sheet-of-cells into canonical rows. Rows whose code
// column is blank are visual spacers, not data, and are skipped. Field
// validation happens later in the loader, not here.
func tableToRows(rows [][]string) (*Result, error) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, &SchemaError{Missing: []string{ColTransType}}
	}

	bindings := make(map[int]*columnBinding)
	var columns []string
	for i, cell := range rows[headerIdx] {
		if b := bindingFor(NormalizeHeader(cell)); b != nil {
			bindings[i] = b
			columns = append(columns, b.name)
		}
	}

	codeIdx := -1
	for i, cell := range rows[headerIdx] {
		if NormalizeHeader(cell) == ColTransType {
			codeIdx = i
			break
		}
	}

	var out []models.CanonicalRow
	for _, row := range rows[headerIdx+1:] {
		if codeIdx >= len(row) || strings.TrimSpace(row[codeIdx]) == "" {
			continue
		}
		var canonical models.CanonicalRow
		for i, cell := range row {
			if b, ok := bindings[i]; ok {
				b.assign(&canonical, cell)
			}
		}
		out = append(out, canonical)
	}

	return &Result{Rows: out, Columns: columns}, nil
}
