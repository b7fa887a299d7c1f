package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPRendererSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	renderer := NewHTTPRenderer(srv.URL, 5*time.Second)
	doc, err := renderer.RenderToDocument(context.Background(), "<html></html>", PageOptions{
		Format:   "A4",
		MarginIn: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc) != "%PDF-1.4 fake" {
		t.Errorf("doc = %q", doc)
	}
	if gotBody["html"] != "<html></html>" || gotBody["format"] != "A4" {
		t.Errorf("request payload = %v", gotBody)
	}
}

func TestHTTPRendererServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	renderer := NewHTTPRenderer(srv.URL, 5*time.Second)
	_, err := renderer.RenderToDocument(context.Background(), "<html></html>", PageOptions{})
	if !errors.Is(err, ErrRendererUnavailable) {
		t.Fatalf("err = %v, want ErrRendererUnavailable", err)
	}
}

func TestHTTPRendererUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	renderer := NewHTTPRenderer(srv.URL, time.Second)
	_, err := renderer.RenderToDocument(context.Background(), "<html></html>", PageOptions{})
	if !errors.Is(err, ErrRendererUnavailable) {
		t.Fatalf("err = %v, want ErrRendererUnavailable", err)
	}
}
