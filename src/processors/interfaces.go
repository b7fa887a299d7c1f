package processors

import "github.com/username/ledgerflow/src/models"

// CashflowProcessor classifies canonical ledger rows and aggregates them into
// a monthly cashflow summary. A targetYear of 0 means "no year filter": only
// months with at least one mapped row appear. With a target year all twelve
// months are materialized, empty or not, and rows outside the year are
// excluded entirely.
type CashflowProcessor interface {
	Aggregate(rows []models.CanonicalRow, targetYear int) models.CashflowSummary
}
