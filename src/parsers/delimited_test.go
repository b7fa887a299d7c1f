package parsers

import (
	"testing"
)

const delimitedFixture = `ACCOUNT LEDGER REPORT
Account No: 1234-5678,,
,,,,,,,
TRANS. TYPE,REF. NO.,DATE,DUE DATE,PARTICULARS,CURRENCY,DEBIT AMOUNT,CREDIT AMOUNT
OR,OR-10023,16/1/2024,,FUTURE TRANSACTION - DEPOSIT,PHP,,"10,000.00"
,,,,,,,
CM,CM-221,5/2/2024,,"CASH DIVIDEND, XYZ CORP",PHP,,250.00
BI,BI-98,10/2/2024,,"BUY ""XYZ"" CORP COMMON",PHP,"5,000.00",
`

func TestDelimitedParser(t *testing.T) {
	res, err := NewDelimitedParser().Parse([]byte(delimitedFixture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}

	deposit := res.Rows[0]
	if deposit.TransactionCode != "OR" || deposit.CreditAmount != 10000 {
		t.Errorf("deposit row: %+v", deposit)
	}
	if deposit.Date.Format("2006-01-02") != "2024-01-16" {
		t.Errorf("deposit date = %s", deposit.Date.Format("2006-01-02"))
	}

	dividend := res.Rows[1]
	if dividend.Particulars != "CASH DIVIDEND, XYZ CORP" {
		t.Errorf("quoted comma not preserved: %q", dividend.Particulars)
	}
	if dividend.CreditAmount != 250 {
		t.Errorf("dividend credit = %v", dividend.CreditAmount)
	}

	trade := res.Rows[2]
	if trade.Particulars != `BUY "XYZ" CORP COMMON` {
		t.Errorf("doubled quote not unescaped: %q", trade.Particulars)
	}
	if trade.DebitAmount != 5000 {
		t.Errorf("trade debit = %v", trade.DebitAmount)
	}
}

func TestDelimitedParserCRLF(t *testing.T) {
	data := "TRANS. TYPE,DATE,PARTICULARS,DEBIT AMOUNT,CREDIT AMOUNT\r\nIN,3/1/2024,INTEREST,,12.34\r\n"
	res, err := NewDelimitedParser().Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].CreditAmount != 12.34 {
		t.Errorf("rows = %+v", res.Rows)
	}
}

func TestSplitDelimitedLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `a,"b,c",d`, []string{"a", "b,c", "d"}},
		{"doubled quotes", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"trailing empty field", "a,b,", []string{"a", "b", ""}},
		{"single field", "only", []string{"only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitDelimitedLine(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitDelimitedLine(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
