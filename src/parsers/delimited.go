// src/parsers/delimited.go
package parsers

import "strings"

// DelimitedParser ingests the broker's comma-delimited text export. The field
// splitter is quote-aware: fields may be double-quote wrapped, embedded quotes
// are escaped by doubling, and commas inside quotes do not split. The export's
// ragged preamble rows rule out a fixed-record CSV reader here; header location
// and coercion are shared with the sheet adapter.
type DelimitedParser struct{}

func NewDelimitedParser() *DelimitedParser {
	return &DelimitedParser{}
}

func (p *DelimitedParser) Parse(data []byte) (*Result, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var table [][]string
	for _, line := range strings.Split(text, "\n") {
		table = append(table, splitDelimitedLine(line))
	}

	return tableToRows(table)
}

func splitDelimitedLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				// Doubled quote inside a quoted field is a literal quote.
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}
	fields = append(fields, field.String())
	return fields
}
