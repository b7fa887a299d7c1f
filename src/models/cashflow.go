package models

// MonthlyBucket holds one calendar month's aggregated cashflow totals.
// Buckets are only ever mutated additively during the aggregation pass and are
// read-only afterwards.
type MonthlyBucket struct {
	MonthLabel string  `json:"month"`
	Deposit    float64 `json:"deposit"`
	Withdraw   float64 `json:"withdraw"`
	Dividends  float64 `json:"dividends"`
}

// CashflowSummary is the aggregation result: months in chronological order plus
// the field-wise totals across all of them. Produced once per report generation.
type CashflowSummary struct {
	Months []MonthlyBucket `json:"months"`
	Totals MonthlyBucket   `json:"totals"`
}
