package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/username/ledgerflow/src/config"
	"github.com/username/ledgerflow/src/logger"
	"github.com/username/ledgerflow/src/models"
	"github.com/username/ledgerflow/src/parsers"
	"github.com/username/ledgerflow/src/report"
	"github.com/username/ledgerflow/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 10 * 1024 * 1024}
	os.Exit(m.Run())
}

// fakeReportService scripts the pipeline responses so handler behavior can be
// tested without a database or renderer.
type fakeReportService struct {
	processErr error
	summaryErr error
	renderErr  error
	result     *services.ReportResult
}

func (f *fakeReportService) ProcessUpload(filename string, data []byte, targetYear int) (*services.ReportResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.result, nil
}

func (f *fakeReportService) GetSummary(uploadID int64) (*services.ReportResult, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return f.result, nil
}

func (f *fakeReportService) RenderReport(ctx context.Context, uploadID int64) ([]byte, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return []byte("%PDF-1.4 stub"), nil
}

func sampleResult() *services.ReportResult {
	return &services.ReportResult{
		UploadID:   7,
		Filename:   "ledger.csv",
		TargetYear: 2024,
		Summary: models.CashflowSummary{
			Months: []models.MonthlyBucket{{MonthLabel: "January 2024", Deposit: 10000}},
			Totals: models.MonthlyBucket{MonthLabel: "Total", Deposit: 10000},
		},
	}
}

func multipartUpload(t *testing.T, filename, content, year string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if year != "" {
		writer.WriteField("year", year)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleUpload(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	rec := httptest.NewRecorder()
	handler.HandleUpload(rec, multipartUpload(t, "ledger.csv", "TRANS. TYPE,DATE\n", "2024"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result services.ReportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.UploadID != 7 || result.Summary.Totals.Deposit != 10000 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleUploadInvalidYear(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	for _, year := range []string{"abc", "1776", "9999"} {
		rec := httptest.NewRecorder()
		handler.HandleUpload(rec, multipartUpload(t, "ledger.csv", "data", year))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("year %q: status = %d, want 400", year, rec.Code)
		}
	}
}

func TestHandleUploadMissingFileField(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("year", "2024")
	writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.HandleUpload(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing data", parsers.ErrMissingData, http.StatusBadRequest},
		{"unsupported format", parsers.ErrUnsupportedFormat, http.StatusBadRequest},
		{"incomplete schema", &parsers.SchemaError{Missing: []string{"TRANS_TYPE"}}, http.StatusUnprocessableEntity},
		{"not found", services.ErrUploadNotFound, http.StatusNotFound},
		{"renderer down", report.ErrRendererUnavailable, http.StatusBadGateway},
		{"anything else", bytes.ErrTooLarge, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReportHandler(&fakeReportService{processErr: tt.err})
			rec := httptest.NewRecorder()
			handler.HandleUpload(rec, multipartUpload(t, "ledger.csv", "data", ""))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func summaryRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/uploads/"+id+"/summary", nil)
	req.SetPathValue("id", id)
	return req
}

func TestHandleGetSummary(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	rec := httptest.NewRecorder()
	handler.HandleGetSummary(rec, summaryRequest("7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("expected an ETag header")
	}

	// Replaying the request with the returned ETag short-circuits.
	req := summaryRequest("7")
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec2 := httptest.NewRecorder()
	handler.HandleGetSummary(rec2, req)
	if rec2.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", rec2.Code)
	}
}

func TestHandleGetSummaryInvalidID(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})
	for _, id := range []string{"abc", "0", "-4"} {
		rec := httptest.NewRecorder()
		handler.HandleGetSummary(rec, summaryRequest(id))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", id, rec.Code)
		}
	}
}

func TestHandleExportSummaryCSV(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	rec := httptest.NewRecorder()
	handler.HandleExportSummaryCSV(rec, summaryRequest("7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Month,Deposit,Withdraw,Dividends") {
		t.Error("missing CSV header row")
	}
	if !strings.Contains(body, "January 2024,10000.00,0.00,0.00") {
		t.Errorf("missing month row, body: %s", body)
	}
	if !strings.Contains(body, "Total,10000.00,0.00,0.00") {
		t.Errorf("missing totals row, body: %s", body)
	}
}

func TestHandleRenderReport(t *testing.T) {
	handler := NewReportHandler(&fakeReportService{result: sampleResult()})

	rec := httptest.NewRecorder()
	handler.HandleRenderReport(rec, summaryRequest("7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != "%PDF-1.4 stub" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
