package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgallion1/reportgest/internal/record"
)

func TestPutRecord(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody PutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	defer c.Close()
	rec := &record.Record{SKU: "widget-market", File: "Widget-Market.docx", Title: "Widget"}
	if err := c.PutRecord(context.Background(), rec, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/kv/catalog/records/widget-market" {
		t.Errorf("expected %q, got %q", "/kv/catalog/records/widget-market", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected %q, got %q", "Bearer secret", gotAuth)
	}
	if gotBody.Value == nil || gotBody.Value.Title != "Widget" || gotBody.Source != "Widget-Market.docx" {
		t.Errorf("unexpected body: %+v", gotBody)
	}
}

func TestPutRecord_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"server error", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL, "k").PutRecord(context.Background(), &record.Record{SKU: "x"}, false)
			if err == nil {
				t.Fatal("expected error")
			}
			var re *RetryableError
			if got := errors.As(err, &re); got != tt.retryable {
				t.Errorf("expected retryable=%v, got %v (%v)", tt.retryable, got, err)
			}
		})
	}

	if err := NewClient("http://unused", "k").PutRecord(context.Background(), &record.Record{}, false); err == nil {
		t.Error("expected error for missing sku")
	}
}

func TestGetRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/kv/catalog/records/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"key_path": "catalog/records/a",
			"value":    record.Record{SKU: "a", Title: "Alpha"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	rec, err := c.GetRecord(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Title != "Alpha" {
		t.Errorf("expected Alpha record, got %+v", rec)
	}

	rec, err = c.GetRecord(context.Background(), "missing")
	if err != nil || rec != nil {
		t.Errorf("expected nil, nil for missing record, got %+v, %v", rec, err)
	}
}

func TestDeleteRecord(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, "k").DeleteRecord(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", method)
	}
}

func TestKey(t *testing.T) {
	if got := Key("a b"); got != "catalog/records/a%20b" {
		t.Errorf("expected %q, got %q", "catalog/records/a%20b", got)
	}
}
