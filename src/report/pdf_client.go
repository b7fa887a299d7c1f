// src/report/pdf_client.go
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/username/ledgerflow/src/logger"
)

// ErrRendererUnavailable distinguishes "broken rendering environment" from
// "bad input file" for operators. It wraps every failure of the external
// rasterization call.
var ErrRendererUnavailable = errors.New("document rendering service unavailable")

// PageOptions is the page setup forwarded to the rasterization service.
type PageOptions struct {
	Format    string  `json:"format"`
	Landscape bool    `json:"landscape"`
	MarginIn  float64 `json:"margin_inches"`
}

// DocumentRenderer is the single opaque operation the core delegates final
// rasterization to.
type DocumentRenderer interface {
	RenderToDocument(ctx context.Context, markup string, opts PageOptions) ([]byte, error)
}

// httpRenderer posts markup to a Chromium-based HTML-to-PDF service.
type httpRenderer struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPRenderer(url string, timeout time.Duration) DocumentRenderer {
	return &httpRenderer{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *httpRenderer) RenderToDocument(ctx context.Context, markup string, opts PageOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(struct {
		HTML string `json:"html"`
		PageOptions
	}{HTML: markup, PageOptions: opts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid renderer URL %q: %v", ErrRendererUnavailable, r.url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request to %s failed (is the renderer running?): %v", ErrRendererUnavailable, r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: renderer returned %d: %s", ErrRendererUnavailable, resp.StatusCode, bytes.TrimSpace(body))
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed reading rendered document: %v", ErrRendererUnavailable, err)
	}

	if logger.L != nil {
		logger.L.Info("Document rendered", "bytes", len(doc), "duration", time.Since(start))
	}
	return doc, nil
}
