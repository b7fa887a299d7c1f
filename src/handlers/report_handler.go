// src/handlers/report_handler.go
package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/username/ledgerflow/src/config"
	"github.com/username/ledgerflow/src/logger"
	"github.com/username/ledgerflow/src/parsers"
	"github.com/username/ledgerflow/src/report"
	"github.com/username/ledgerflow/src/security/validation"
	"github.com/username/ledgerflow/src/services"
	"github.com/username/ledgerflow/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: service,
	}
}

func (h *ReportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	targetYear := 0
	if yearStr := strings.TrimSpace(r.FormValue("year")); yearStr != "" {
		targetYear, err = strconv.Atoi(yearStr)
		if err != nil || targetYear < 1900 || targetYear > 2200 {
			utils.SendJSONError(w, fmt.Sprintf("Invalid year %q", yearStr), http.StatusBadRequest)
			return
		}
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated", "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)

	data, err := io.ReadAll(file)
	if err != nil {
		logger.L.Error("Failed reading upload body", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file.", http.StatusInternalServerError)
		return
	}

	filename := validation.StripUnprintable(filepath.Base(fileHeader.Filename))
	result, err := h.reportService.ProcessUpload(filename, data, targetYear)
	if err != nil {
		h.sendPipelineError(w, filename, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding JSON response for upload result", "error", err)
	}
}

// sendPipelineError maps pipeline failures to client responses. Bad input is
// the caller's problem; a broken rendering environment is ours.
func (h *ReportHandler) sendPipelineError(w http.ResponseWriter, filename string, err error) {
	var schemaErr *parsers.SchemaError
	switch {
	case errors.Is(err, parsers.ErrMissingData):
		utils.SendJSONError(w, "The uploaded file contains no ledger data.", http.StatusBadRequest)
	case errors.Is(err, parsers.ErrUnsupportedFormat):
		utils.SendJSONError(w, "Unsupported file format. Upload an .xlsx, .csv, .txt or .pdf ledger export.", http.StatusBadRequest)
	case errors.As(err, &schemaErr):
		utils.SendJSONError(w, fmt.Sprintf("Ledger file is missing required columns: %s", strings.Join(schemaErr.Missing, ", ")), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrUploadNotFound):
		utils.SendJSONError(w, "Upload not found.", http.StatusNotFound)
	case errors.Is(err, report.ErrRendererUnavailable):
		logger.L.Error("Document renderer unavailable", "filename", filename, "error", err)
		utils.SendJSONError(w, "The report rendering service is unavailable. Try again later.", http.StatusBadGateway)
	default:
		logger.L.Error("Internal error processing ledger", "filename", filename, "error", err)
		utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
	}
}

func (h *ReportHandler) uploadIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uploadID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || uploadID <= 0 {
		utils.SendJSONError(w, "Invalid upload id.", http.StatusBadRequest)
		return 0, false
	}
	return uploadID, true
}

func (h *ReportHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	uploadID, ok := h.uploadIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetSummary(uploadID)
	if err != nil {
		h.sendPipelineError(w, "", err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, etagErr := utils.GenerateETag(result); etagErr == nil && etag != "" {
		quotedETag := fmt.Sprintf("%q", etag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding summary response", "uploadID", uploadID, "error", err)
	}
}

func (h *ReportHandler) HandleExportSummaryCSV(w http.ResponseWriter, r *http.Request) {
	uploadID, ok := h.uploadIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetSummary(uploadID)
	if err != nil {
		h.sendPipelineError(w, "", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cashflow-%d.csv"`, uploadID))

	writer := csv.NewWriter(w)
	writer.Write([]string{"Month", "Deposit", "Withdraw", "Dividends"})
	for _, month := range result.Summary.Months {
		writer.Write([]string{
			validation.SanitizeForFormulaInjection(month.MonthLabel),
			strconv.FormatFloat(month.Deposit, 'f', 2, 64),
			strconv.FormatFloat(month.Withdraw, 'f', 2, 64),
			strconv.FormatFloat(month.Dividends, 'f', 2, 64),
		})
	}
	writer.Write([]string{
		validation.SanitizeForFormulaInjection(result.Summary.Totals.MonthLabel),
		strconv.FormatFloat(result.Summary.Totals.Deposit, 'f', 2, 64),
		strconv.FormatFloat(result.Summary.Totals.Withdraw, 'f', 2, 64),
		strconv.FormatFloat(result.Summary.Totals.Dividends, 'f', 2, 64),
	})
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.L.Error("Error writing summary CSV", "uploadID", uploadID, "error", err)
	}
}

func (h *ReportHandler) HandleRenderReport(w http.ResponseWriter, r *http.Request) {
	uploadID, ok := h.uploadIDFromPath(w, r)
	if !ok {
		return
	}

	doc, err := h.reportService.RenderReport(r.Context(), uploadID)
	if err != nil {
		h.sendPipelineError(w, "", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="cashflow-report-%d.pdf"`, uploadID))
	if _, err := w.Write(doc); err != nil {
		logger.L.Error("Error writing rendered report", "uploadID", uploadID, "error", err)
	}
}
