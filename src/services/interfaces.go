package services

import (
	"context"
	"errors"

	"github.com/username/ledgerflow/src/models"
)

var (
	// ErrUploadNotFound means the requested upload id has no stored rows.
	ErrUploadNotFound = errors.New("upload not found")
)

// ReportResult is what one processed upload yields: the stored upload id plus
// the aggregated cashflow summary.
type ReportResult struct {
	UploadID   int64                  `json:"upload_id"`
	Filename   string                 `json:"filename"`
	TargetYear int                    `json:"target_year,omitempty"`
	Summary    models.CashflowSummary `json:"summary"`
}

// ReportService is the core pipeline entry point: normalize an uploaded ledger
// export, aggregate it, and render the printable report. Parsing and
// aggregation are synchronous and deterministic; only RenderReport blocks on
// an external call and takes a context.
type ReportService interface {
	ProcessUpload(filename string, data []byte, targetYear int) (*ReportResult, error)
	GetSummary(uploadID int64) (*ReportResult, error)
	RenderReport(ctx context.Context, uploadID int64) ([]byte, error)
}
