// src/models/canonical.go
package models

import "time"

// CanonicalRow is the unified, adapter-independent representation of one ledger
// transaction. Each adapter is responsible for populating as many of these fields
// as its source format carries; fields the source does not provide stay at their
// zero value (or nil for the optional numerics).
type CanonicalRow struct {
	TransactionCode string    `json:"transaction_code"` // broker category code, e.g. "OR", "CM", "BI"
	ReferenceNumber string    `json:"reference_number"`
	Date            time.Time `json:"date"`               // anchored at 12:00 UTC; zero value means "no valid date"
	DueDate         time.Time `json:"due_date,omitempty"` // settlement date, optional
	Particulars     string    `json:"particulars"`
	Security        string    `json:"security,omitempty"`
	NumberOfShares  *float64  `json:"number_of_shares,omitempty"`
	UnitPrice       *float64  `json:"unit_price,omitempty"`
	FxAmount        *float64  `json:"fx_amount,omitempty"`
	FxRunningBal    *float64  `json:"fx_running_balance,omitempty"`
	Currency        string    `json:"currency"`
	DebitAmount     float64   `json:"debit_amount"`  // non-negative magnitude
	CreditAmount    float64   `json:"credit_amount"` // non-negative magnitude
	RunningBalance  *float64  `json:"running_balance,omitempty"`
}

// HasDate reports whether the row carries a usable transaction date.
// Rows without one are excluded from aggregation upstream.
func (r CanonicalRow) HasDate() bool {
	return !r.Date.IsZero()
}
