// src/parsers/amount.go
package parsers

import (
	"math"
	"strconv"
	"strings"
)

// blankSeparators are the whitespace-like runes broker exports pad numeric cells
// with. Figure space and narrow no-break space show up in spreadsheet exports of
// right-aligned money columns.
var blankSeparators = strings.NewReplacer(
	" ", "",
	"\t", "",
	" ", "", // no-break space
	" ", "", // figure space
	" ", "", // narrow no-break space
)

// ParseAmount converts a raw cell token into a signed amount. The second return
// value is false when the token is blank, a lone dash sentinel, or not a finite
// number. Parenthesized tokens are negative magnitudes, thousands commas are
// ignored. It never panics on malformed input; absence is the only failure signal.
func ParseAmount(raw string) (float64, bool) {
	s := blankSeparators.Replace(strings.TrimSpace(raw))
	if s == "" || s == "-" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -math.Abs(v)
	}
	return v, true
}

// ParseOptionalAmount is ParseAmount for the trade-detail fields, returning nil
// for absent values so "no value" stays distinguishable from zero.
func ParseOptionalAmount(raw string) *float64 {
	v, ok := ParseAmount(raw)
	if !ok {
		return nil
	}
	return &v
}
