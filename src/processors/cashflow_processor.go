package processors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/username/ledgerflow/src/models"
	"github.com/username/ledgerflow/src/parsers"
	"github.com/username/ledgerflow/src/utils"
)

// cashflowProcessorImpl implements the CashflowProcessor interface.
type cashflowProcessorImpl struct{}

func NewCashflowProcessor() CashflowProcessor {
	return &cashflowProcessorImpl{}
}

type cashflowOutcome int

const (
	outcomeNone cashflowOutcome = iota
	outcomeDividend
	outcomeTrade
	outcomeDeposit
)

// cashflowRule pairs a predicate with its outcome. The list is evaluated in
// fixed order per row and the first match wins; keeping it as a literal table
// is what makes the business rules auditable when the set grows.
type cashflowRule struct {
	name    string
	matches func(row models.CanonicalRow) bool
	outcome cashflowOutcome
}

var cashflowRules = []cashflowRule{
	{"dividend", func(row models.CanonicalRow) bool {
		if row.TransactionCode != parsers.CodeCoupon {
			return false
		}
		desc := strings.ToUpper(row.Particulars)
		return strings.Contains(desc, "CASH DIVIDEND") || strings.Contains(desc, "COUPON PAYMENT")
	}, outcomeDividend},
	{"trade", func(row models.CanonicalRow) bool {
		return row.TransactionCode == parsers.CodeBuy || row.TransactionCode == parsers.CodeSell
	}, outcomeTrade},
	{"deposit", func(row models.CanonicalRow) bool {
		// "OR" covers more than deposits; only rows the broker tags as a
		// future transaction are genuine cash coming in.
		return row.TransactionCode == parsers.CodeOtherReceipt &&
			strings.HasPrefix(strings.ToUpper(row.Particulars), "FUTURE TRANSACTION")
	}, outcomeDeposit},
}

func classify(row models.CanonicalRow) cashflowOutcome {
	for _, rule := range cashflowRules {
		if rule.matches(row) {
			return rule.outcome
		}
	}
	return outcomeNone
}

// Aggregate walks the rows once, bucketing by calendar month. Malformed rows
// were already degraded to zero-value fields upstream; the only gate here is
// date validity (and the target year when one is given).
func (p *cashflowProcessorImpl) Aggregate(rows []models.CanonicalRow, targetYear int) models.CashflowSummary {
	buckets := make(map[int]*models.MonthlyBucket)

	monthLabel := func(month time.Month) string {
		if targetYear != 0 {
			return fmt.Sprintf("%s %d", month, targetYear)
		}
		return month.String()
	}

	if targetYear != 0 {
		for m := time.January; m <= time.December; m++ {
			buckets[int(m)-1] = &models.MonthlyBucket{MonthLabel: monthLabel(m)}
		}
	}

	for _, row := range rows {
		if !row.HasDate() {
			continue
		}
		if targetYear != 0 && row.Date.Year() != targetYear {
			continue
		}

		key := int(row.Date.Month()) - 1
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.MonthlyBucket{MonthLabel: monthLabel(row.Date.Month())}
			buckets[key] = bucket
		}

		outcome := classify(row)
		switch outcome {
		case outcomeDividend:
			bucket.Dividends += row.CreditAmount
		case outcomeTrade:
			// Trades are cashflow-neutral: the money never left the account's
			// investable pool, it changed form.
		case outcomeDeposit:
			bucket.Deposit += row.CreditAmount
		}

		// Any non-trade, non-dividend row's debit counts as a withdrawal,
		// including rows that just matched the deposit rule. Deposit and
		// withdraw are deliberately not mutually exclusive on one row.
		if outcome != outcomeDividend && outcome != outcomeTrade {
			bucket.Withdraw += row.DebitAmount
		}
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var summary models.CashflowSummary
	for _, k := range keys {
		b := *buckets[k]
		b.Deposit = utils.RoundFloat(b.Deposit, 2)
		b.Withdraw = utils.RoundFloat(b.Withdraw, 2)
		b.Dividends = utils.RoundFloat(b.Dividends, 2)
		summary.Months = append(summary.Months, b)

		summary.Totals.Deposit += b.Deposit
		summary.Totals.Withdraw += b.Withdraw
		summary.Totals.Dividends += b.Dividends
	}
	summary.Totals.MonthLabel = "Total"
	summary.Totals.Deposit = utils.RoundFloat(summary.Totals.Deposit, 2)
	summary.Totals.Withdraw = utils.RoundFloat(summary.Totals.Withdraw, 2)
	summary.Totals.Dividends = utils.RoundFloat(summary.Totals.Dividends, 2)

	return summary
}
