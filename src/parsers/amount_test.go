package parsers

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"plain number", "1000", 1000, true},
		{"decimal", "1234.56", 1234.56, true},
		{"thousands commas", "1,234,567.89", 1234567.89, true},
		{"parenthesized is negative", "(1,234.56)", -1234.56, true},
		{"explicit negative", "-42.10", -42.10, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"lone dash sentinel", "-", 0, false},
		{"dash padded with figure space", " - ", 0, false},
		{"figure space grouping", "1 234.50", 1234.50, true},
		{"narrow no-break space grouping", "9 876.00", 9876.00, true},
		{"not a number", "N/A", 0, false},
		{"garbage with digits", "12ab", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOptionalAmount(t *testing.T) {
	if v := ParseOptionalAmount("-"); v != nil {
		t.Errorf("expected nil for sentinel, got %v", *v)
	}
	v := ParseOptionalAmount("250.00")
	if v == nil || *v != 250.00 {
		t.Errorf("expected 250.00, got %v", v)
	}
}
