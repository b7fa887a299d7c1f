// src/parsers/pdftext.go
package parsers

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// approxCharWidthPt maps PDF points to character columns when linearizing page
// text. The statement's column-boundary heuristics only need offsets that are
// consistent between the header line and the data lines, not typographically
// exact ones.
const approxCharWidthPt = 5.0

// ExtractStatementText linearizes a PDF into plain text, one page after
// another, preserving line breaks and approximate horizontal positions.
func ExtractStatementText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction crashed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, linearizePage(page))
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("pdf has no extractable pages")
	}
	return strings.Join(pages, "\n"), nil
}

// linearizePage groups text items into rows by Y coordinate (PDF Y grows
// bottom-up) and lays each row out at approximate character columns.
func linearizePage(page pdf.Page) string {
	content := page.Content()

	type textItem struct {
		x float64
		s string
	}
	rowMap := make(map[int][]textItem)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
	}

	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var lines []string
	for _, y := range yKeys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

		var line strings.Builder
		for _, item := range items {
			col := int(item.x / approxCharWidthPt)
			if line.Len() > 0 && col <= line.Len() {
				// Adjacent items can round to touching columns; keep a gap.
				line.WriteByte(' ')
			}
			for line.Len() < col {
				line.WriteByte(' ')
			}
			line.WriteString(item.s)
		}
		lines = append(lines, strings.TrimRight(line.String(), " "))
	}
	return strings.Join(lines, "\n")
}
