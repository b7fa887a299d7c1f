// src/parsers/statement.go
package parsers

import (
	"math"
	"regexp"
	"strings"

	"github.com/username/ledgerflow/src/models"
)

// StatementParser recovers ledger rows from the linearized text of a rasterized
// account statement. There is no grammar to lean on: a transaction is whatever
// starts at a date+reference line and runs until the next one, and the numeric
// columns have to be told apart from the free text by layout heuristics.
type StatementParser struct {
	currency string
}

func NewStatementParser(currency string) *StatementParser {
	return &StatementParser{currency: currency}
}

var (
	// A transaction block opens with MM/DD/YYYY followed by a reference token.
	txStartPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\S+)(.*)$`)
	// Optionally parenthesized, optionally thousands-grouped, exactly two decimals.
	moneyTokenPattern = regexp.MustCompile(`\(?\d{1,3}(?:,\d{3})*\.\d{2}\)?`)
	// The reference token is a short alphabetic code, optionally hyphenated to
	// a numeric id.
	referencePattern = regexp.MustCompile(`^([A-Za-z]+)(?:-(\d+))?$`)
	// Horizontal rules the statement draws between table sections.
	separatorRulePattern = regexp.MustCompile(`^[-=_\s]+$`)
	// A wrapped-off remnant of a numeric column, e.g. ".00" or "123.45" left
	// dangling at the end of the assembled description.
	strayDecimalPattern = regexp.MustCompile(`\s*\d*\.\d+$`)
)

// Everything after these banners is boilerplate (legends, signature blocks)
// that can contain misleading numeric lines, so scanning stops for good.
var sectionEndMarkers = []string{
	"ENDING POSITION",
	"LEGEND",
	"COMPUTER GENERATED STATEMENT",
}

func (p *StatementParser) Parse(data []byte) (*Result, error) {
	rows := p.ParseText(string(data))
	return &Result{
		Rows:    rows,
		Columns: []string{ColTransType, ColDate, ColParticulars, ColDebit, ColCredit},
	}, nil
}

// ParseText runs the line state machine over page text. Unparseable lines never
// raise; a block that fails to yield a valid leading date is discarded whole.
func (p *StatementParser) ParseText(text string) []models.CanonicalRow {
	var out []models.CanonicalRow
	var block []string
	debitCol, creditCol := -1, -1

	flush := func() {
		if len(block) == 0 {
			return
		}
		boundary := debitCol
		if boundary < 0 {
			boundary = creditCol
		}
		if row, ok := p.parseTransactionBlock(block, boundary); ok {
			out = append(out, row)
		}
		block = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		upper := strings.ToUpper(line)

		if endsSection(upper) {
			flush()
			return out
		}

		// Header lines carry the column start offsets used to keep numeric
		// table columns out of the free-text description.
		if strings.Contains(upper, "PRICE") && strings.Contains(upper, "DEBIT") {
			debitCol = strings.Index(upper, "DEBIT")
		}
		if strings.Contains(upper, "CREDIT") && strings.Contains(upper, "BALANCE") {
			creditCol = strings.Index(upper, "CREDIT")
		}

		if txStartPattern.MatchString(strings.TrimRight(line, " ")) {
			flush()
			block = []string{line}
			continue
		}
		if len(block) > 0 {
			// Blank lines inside a block are kept; they are not separators.
			block = append(block, line)
		}
	}

	flush()
	return out
}

func endsSection(upperLine string) bool {
	for _, marker := range sectionEndMarkers {
		if strings.Contains(upperLine, marker) {
			return true
		}
	}
	return false
}

// parseTransactionBlock finalizes one accumulated block into a canonical row.
func (p *StatementParser) parseTransactionBlock(block []string, debitCol int) (models.CanonicalRow, bool) {
	first := strings.TrimRight(block[0], " ")
	m := txStartPattern.FindStringSubmatch(first)
	if m == nil {
		return models.CanonicalRow{}, false
	}

	date, ok := ParseStatementDate(m[1])
	if !ok {
		return models.CanonicalRow{}, false
	}

	code, refNum := splitReference(m[2])
	if code == "" {
		return models.CanonicalRow{}, false
	}

	amount := p.findMovementAmount(block)
	particulars := p.assembleParticulars(first, m[3], block[1:], debitCol)

	row := models.CanonicalRow{
		TransactionCode: code,
		ReferenceNumber: refNum,
		Date:            date,
		Particulars:     particulars,
		Currency:        p.currency,
	}

	switch classifyMovement(code, particulars) {
	case movementNeutral:
		// Trades and in-kind receipts move no cash.
	case movementCredit:
		row.CreditAmount = amount
	default:
		row.DebitAmount = amount
	}
	return row, true
}

// splitReference breaks "OR-10023" into code "OR" and id "10023". Any token
// that does not fit the code-hyphen-id shape is taken as the code wholesale:
// the block is still a dated transaction, just with an unfamiliar reference.
func splitReference(token string) (code, id string) {
	if m := referencePattern.FindStringSubmatch(token); m != nil {
		return strings.ToUpper(m[1]), m[2]
	}
	return strings.ToUpper(token), ""
}

// findMovementAmount scans the block from the last line backward for the line
// carrying the currency marker and picks its movement token. Statement rows
// render `<quantity> <movement> <currency> <balance>`, so with two or more
// money tokens the true movement is second from the end, not first or last.
func (p *StatementParser) findMovementAmount(block []string) float64 {
	for i := len(block) - 1; i >= 0; i-- {
		if !strings.Contains(block[i], p.currency) {
			continue
		}
		tokens := moneyTokenPattern.FindAllString(block[i], -1)
		if len(tokens) == 0 {
			continue
		}
		pick := tokens[len(tokens)-1]
		if len(tokens) >= 2 {
			pick = tokens[len(tokens)-2]
		}
		if v, ok := ParseAmount(pick); ok {
			return math.Abs(v)
		}
	}
	return 0
}

// assembleParticulars builds the description from the first line's remainder
// (cut at the numeric column boundary so table figures stay out) plus every
// continuation line that is not an amount line, a currency line, or a
// separator rule.
func (p *StatementParser) assembleParticulars(firstLine, firstRemainder string, rest []string, numericCol int) string {
	var parts []string

	remainder := firstRemainder
	if numericCol > 0 {
		offset := len(firstLine) - len(firstRemainder)
		if cut := numericCol - offset; cut > 0 && cut < len(remainder) {
			remainder = remainder[:cut]
		}
	}
	remainder = moneyTokenPattern.ReplaceAllString(remainder, "")
	if s := strings.TrimSpace(remainder); s != "" {
		parts = append(parts, s)
	}

	for _, line := range rest {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || separatorRulePattern.MatchString(trimmed) {
			continue
		}
		if strings.Contains(line, p.currency) {
			continue
		}
		if strings.TrimSpace(moneyTokenPattern.ReplaceAllString(trimmed, "")) == "" {
			continue
		}
		parts = append(parts, trimmed)
	}

	joined := strings.Join(parts, " ")
	joined = strayDecimalPattern.ReplaceAllString(joined, "")
	return strings.TrimSpace(joined)
}

type movementKind int

const (
	movementDebit movementKind = iota
	movementCredit
	movementNeutral
)

// statementRule pairs a predicate with the movement kind it implies. Rules are
// evaluated strictly in order; the first match wins and anything unmatched
// defaults to a debit.
type statementRule struct {
	name    string
	matches func(code, upperDesc string) bool
	kind    movementKind
}

var statementRules = []statementRule{
	{"trade", func(code, _ string) bool {
		return code == CodeBuy || code == CodeSell
	}, movementNeutral},
	{"stock dividend", func(_, desc string) bool {
		return strings.Contains(desc, "STOCK DIVIDEND")
	}, movementNeutral},
	{"bond purchase", func(_, desc string) bool {
		return strings.Contains(desc, "RTB") || strings.Contains(desc, "BOND") || strings.Contains(desc, "TREASURY")
	}, movementNeutral},
	{"cash dividend", func(code, desc string) bool {
		return code == CodeCoupon && strings.Contains(desc, "CASH DIVIDEND")
	}, movementCredit},
	{"coupon payment", func(code, desc string) bool {
		return code == CodeCoupon && strings.Contains(desc, "COUPON PAYMENT")
	}, movementCredit},
	{"future transaction", func(code, desc string) bool {
		return code == CodeOtherReceipt && strings.Contains(desc, "FUTURE TRANSACTION")
	}, movementCredit},
}

func classifyMovement(code, particulars string) movementKind {
	upperDesc := strings.ToUpper(particulars)
	for _, rule := range statementRules {
		if rule.matches(code, upperDesc) {
			return rule.kind
		}
	}
	return movementDebit
}
