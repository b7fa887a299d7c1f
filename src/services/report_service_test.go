package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerflow/src/database"
	"github.com/username/ledgerflow/src/logger"
	"github.com/username/ledgerflow/src/parsers"
	"github.com/username/ledgerflow/src/processors"
	"github.com/username/ledgerflow/src/report"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")

	dir, err := os.MkdirTemp("", "ledgerflow-test-")
	if err != nil {
		os.Exit(1)
	}
	database.InitDB(filepath.Join(dir, "test.db"))

	code := m.Run()
	database.DB.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

// stubRenderer records the markup it was asked to rasterize and returns a
// fixed document.
type stubRenderer struct {
	markup string
	err    error
}

func (r *stubRenderer) RenderToDocument(_ context.Context, markup string, _ report.PageOptions) ([]byte, error) {
	r.markup = markup
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

func newTestService(renderer report.DocumentRenderer) ReportService {
	return NewReportService(
		parsers.NewLedgerLoader("PHP"),
		processors.NewCashflowProcessor(),
		renderer,
		cache.New(time.Minute, time.Minute),
		"Account Cashflow Report",
	)
}

const uploadFixture = `TRANS. TYPE,REF. NO.,DATE,PARTICULARS,DEBIT AMOUNT,CREDIT AMOUNT
OR,OR-10023,16/1/2024,FUTURE TRANSACTION - DEPOSIT,,"10,000.00"
CM,CM-221,5/2/2024,CASH DIVIDEND XYZ CORP,,250.00
BI,BI-98,10/2/2024,BUY XYZ CORP,"5,000.00",
`

func TestProcessUploadAndGetSummary(t *testing.T) {
	svc := newTestService(&stubRenderer{})

	result, err := svc.ProcessUpload("ledger.csv", []byte(uploadFixture), 2024)
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if result.UploadID == 0 {
		t.Fatal("upload id was not assigned")
	}
	if result.Summary.Totals.Deposit != 10000 || result.Summary.Totals.Dividends != 250 {
		t.Errorf("totals = %+v", result.Summary.Totals)
	}

	// A fresh service has a cold cache, so this summary is rebuilt from the
	// persisted rows.
	fresh := newTestService(&stubRenderer{})
	reloaded, err := fresh.GetSummary(result.UploadID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if reloaded.Filename != "ledger.csv" || reloaded.TargetYear != 2024 {
		t.Errorf("reloaded identity: %+v", reloaded)
	}
	if reloaded.Summary.Totals.Deposit != 10000 || reloaded.Summary.Totals.Dividends != 250 {
		t.Errorf("reloaded totals = %+v", reloaded.Summary.Totals)
	}
	if len(reloaded.Summary.Months) != 12 {
		t.Errorf("reloaded summary has %d months, want 12", len(reloaded.Summary.Months))
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	svc := newTestService(&stubRenderer{})
	if _, err := svc.GetSummary(999999); !errors.Is(err, ErrUploadNotFound) {
		t.Fatalf("err = %v, want ErrUploadNotFound", err)
	}
}

func TestProcessUploadRejectsBadPayload(t *testing.T) {
	svc := newTestService(&stubRenderer{})
	if _, err := svc.ProcessUpload("ledger.csv", nil, 0); !errors.Is(err, parsers.ErrMissingData) {
		t.Errorf("empty payload err = %v", err)
	}
	if _, err := svc.ProcessUpload("ledger.docx", []byte("x"), 0); !errors.Is(err, parsers.ErrUnsupportedFormat) {
		t.Errorf("bad extension err = %v", err)
	}
}

func TestRenderReport(t *testing.T) {
	renderer := &stubRenderer{}
	svc := newTestService(renderer)

	result, err := svc.ProcessUpload("ledger.csv", []byte(uploadFixture), 2024)
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	doc, err := svc.RenderReport(context.Background(), result.UploadID)
	if err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	if string(doc) != "%PDF-1.4 stub" {
		t.Errorf("doc = %q", doc)
	}
	if !strings.Contains(renderer.markup, "Cashflow summary for ledger.csv, year 2024") {
		t.Errorf("markup subtitle missing, got: %.200s", renderer.markup)
	}
	if !strings.Contains(renderer.markup, "10,000.00") {
		t.Error("markup missing formatted deposit")
	}
}

func TestRenderReportRendererDown(t *testing.T) {
	renderer := &stubRenderer{err: report.ErrRendererUnavailable}
	svc := newTestService(renderer)

	result, err := svc.ProcessUpload("ledger.csv", []byte(uploadFixture), 0)
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if _, err := svc.RenderReport(context.Background(), result.UploadID); !errors.Is(err, report.ErrRendererUnavailable) {
		t.Fatalf("err = %v, want ErrRendererUnavailable", err)
	}
}
