// src/services/report_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerflow/src/database"
	"github.com/username/ledgerflow/src/logger"
	"github.com/username/ledgerflow/src/models"
	"github.com/username/ledgerflow/src/parsers"
	"github.com/username/ledgerflow/src/processors"
	"github.com/username/ledgerflow/src/report"
	"github.com/username/ledgerflow/src/utils"
)

const (
	ckUploadSummary = "res_upload_summary_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	loader      *parsers.LedgerLoader
	processor   processors.CashflowProcessor
	renderer    report.DocumentRenderer
	reportCache *cache.Cache
	reportTitle string
}

func NewReportService(
	loader *parsers.LedgerLoader,
	processor processors.CashflowProcessor,
	renderer report.DocumentRenderer,
	reportCache *cache.Cache,
	reportTitle string,
) ReportService {
	return &reportServiceImpl{
		loader:      loader,
		processor:   processor,
		renderer:    renderer,
		reportCache: reportCache,
		reportTitle: reportTitle,
	}
}

func (s *reportServiceImpl) ProcessUpload(filename string, data []byte, targetYear int) (*ReportResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "filename", filename, "targetYear", targetYear)

	rows, err := s.loader.LoadRows(filename, data)
	if err != nil {
		return nil, err
	}

	uploadID, err := s.storeUpload(filename, targetYear, rows)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{
		UploadID:   uploadID,
		Filename:   filename,
		TargetYear: targetYear,
		Summary:    s.processor.Aggregate(rows, targetYear),
	}
	s.reportCache.Set(fmt.Sprintf(ckUploadSummary, uploadID), result, DefaultCacheExpiration)

	logger.L.Info("ProcessUpload END", "uploadID", uploadID, "rows", len(rows), "duration", time.Since(overallStartTime))
	return result, nil
}

func (s *reportServiceImpl) GetSummary(uploadID int64) (*ReportResult, error) {
	cacheKey := fmt.Sprintf(ckUploadSummary, uploadID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for upload summary", "uploadID", uploadID)
		return cached.(*ReportResult), nil
	}

	var filename string
	var targetYear int
	err := database.DB.QueryRow(`SELECT filename, target_year FROM uploads WHERE id = ?`, uploadID).
		Scan(&filename, &targetYear)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying upload %d: %w", uploadID, err)
	}

	rows, err := fetchUploadRows(uploadID)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{
		UploadID:   uploadID,
		Filename:   filename,
		TargetYear: targetYear,
		Summary:    s.processor.Aggregate(rows, targetYear),
	}
	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

func (s *reportServiceImpl) RenderReport(ctx context.Context, uploadID int64) ([]byte, error) {
	result, err := s.GetSummary(uploadID)
	if err != nil {
		return nil, err
	}

	subtitle := fmt.Sprintf("Cashflow summary for %s", result.Filename)
	if result.TargetYear != 0 {
		subtitle = fmt.Sprintf("Cashflow summary for %s, year %d", result.Filename, result.TargetYear)
	}

	markup, err := report.RenderHTML(result.Summary, report.RenderOptions{
		Title:    s.reportTitle,
		Subtitle: subtitle,
	})
	if err != nil {
		return nil, err
	}

	return s.renderer.RenderToDocument(ctx, markup, report.PageOptions{Format: "A4", MarginIn: 0.5})
}

func (s *reportServiceImpl) storeUpload(filename string, targetYear int, rows []models.CanonicalRow) (int64, error) {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.Exec(`INSERT INTO uploads (filename, target_year) VALUES (?, ?)`, filename, targetYear)
	if err != nil {
		return 0, fmt.Errorf("error inserting upload record: %w", err)
	}
	uploadID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading upload id: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO ledger_rows (upload_id, transaction_code, reference_number, date, due_date, particulars, security, number_of_shares, unit_price, fx_amount, fx_running_balance, currency, debit_amount, credit_amount, running_balance) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(uploadID, row.TransactionCode, row.ReferenceNumber,
			utils.FormatStoredDate(row.Date), utils.FormatStoredDate(row.DueDate),
			row.Particulars, row.Security,
			row.NumberOfShares, row.UnitPrice, row.FxAmount, row.FxRunningBal,
			row.Currency, row.DebitAmount, row.CreditAmount, row.RunningBalance)
		if err != nil {
			return 0, fmt.Errorf("error inserting ledger row (ref %s): %w", row.ReferenceNumber, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing upload: %w", err)
	}
	return uploadID, nil
}

func fetchUploadRows(uploadID int64) ([]models.CanonicalRow, error) {
	logger.L.Debug("Fetching ledger rows from DB", "uploadID", uploadID)
	dbRows, err := database.DB.Query(`SELECT transaction_code, reference_number, date, due_date, particulars, security, number_of_shares, unit_price, fx_amount, fx_running_balance, currency, debit_amount, credit_amount, running_balance FROM ledger_rows WHERE upload_id = ? ORDER BY id ASC`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger rows for upload %d: %w", uploadID, err)
	}
	defer dbRows.Close()

	var rows []models.CanonicalRow
	for dbRows.Next() {
		var row models.CanonicalRow
		var date, dueDate, refNum, particulars, security, currency sql.NullString
		var shares, unitPrice, fxAmount, fxRunningBal, runningBal sql.NullFloat64
		if err := dbRows.Scan(&row.TransactionCode, &refNum, &date, &dueDate, &particulars, &security,
			&shares, &unitPrice, &fxAmount, &fxRunningBal, &currency,
			&row.DebitAmount, &row.CreditAmount, &runningBal); err != nil {
			return nil, fmt.Errorf("error scanning ledger row for upload %d: %w", uploadID, err)
		}
		row.ReferenceNumber = refNum.String
		row.Particulars = particulars.String
		row.Security = security.String
		row.Currency = currency.String
		row.Date = utils.ParseStoredDate(date.String)
		row.DueDate = utils.ParseStoredDate(dueDate.String)
		row.NumberOfShares = nullableFloat(shares)
		row.UnitPrice = nullableFloat(unitPrice)
		row.FxAmount = nullableFloat(fxAmount)
		row.FxRunningBal = nullableFloat(fxRunningBal)
		row.RunningBalance = nullableFloat(runningBal)
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows for upload %d: %w", uploadID, err)
	}
	return rows, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
