package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/reportgest/internal/config"
	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/pipeline"
	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
)

const testKey = "test-key"

const reportText = `1. Report Title: Global Widget Market
# Introduction and Strategic Context
Widgets <everywhere>.
`

type testEnv struct {
	srv   *Server
	orch  *pipeline.Orchestrator
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Config{APIKey: testKey, MaxUploadBytes: 1 << 20}
	ex := pipeline.NewExtractor(record.NewAssembler(record.Options{}), parser.Options{}, time.Second, nil)
	orch := pipeline.NewOrchestrator(pipeline.Options{Workers: 1, QueueSize: 4}, ex, pipeline.NewPublisher(st, nil, log), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testEnv{srv: NewServer(orch, log, cfg), orch: orch, store: st}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, field string, files map[string]string, extra map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	for k, v := range extra {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong", "Bearer nope"},
		{"not bearer", "Basic " + testKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestExtract_Sync(t *testing.T) {
	env := newTestEnv(t)
	req := uploadRequest(t, "/api/extract", "file", map[string]string{"Widget-Market.txt": reportText}, map[string]string{"store": "true"})
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Record record.Record `json:"record"`
		Error  string        `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "" {
		t.Errorf("unexpected error %q", body.Error)
	}
	if body.Record.SKU != "widget-market" {
		t.Errorf("expected sku %q, got %q", "widget-market", body.Record.SKU)
	}
	if _, err := env.store.Get(context.Background(), "widget-market"); err != nil {
		t.Errorf("expected stored record, got %v", err)
	}
}

func TestExtract_Rejects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, uploadRequest(t, "/api/extract", "file", map[string]string{"notes.odt": "x"}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}

	rec = env.do(t, uploadRequest(t, "/api/extract", "other", map[string]string{"a.txt": "x"}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without file field, got %d", rec.Code)
	}

	env.srv.cfg.MaxUploadBytes = 4
	rec = env.do(t, uploadRequest(t, "/api/extract", "file", map[string]string{"a.txt": "too long"}, nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func pollJob(t *testing.T, env *testEnv, jobID string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/ingest/"+jobID+"/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatal(err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusPartial || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", jobID)
	return pipeline.JobSnapshot{}
}

func TestIngest_AndRecords(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, uploadRequest(t, "/api/ingest", "file", map[string]string{"Widget-Market.txt": reportText}, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	json.NewDecoder(rec.Body).Decode(&accepted)
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" {
		t.Fatalf("expected job id, got %v", accepted)
	}
	if snap := pollJob(t, env, jobID); snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Errors)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	var list struct {
		Records []store.Entry `json:"records"`
	}
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Records) != 1 || list.Records[0].SKU != "widget-market" {
		t.Errorf("expected one listed record, got %+v", list.Records)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records/widget-market", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sku":"widget-market"`) {
		t.Errorf("expected record json, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records/widget-market/preview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "<h2>Introduction And Strategic Context</h2>") {
		t.Errorf("expected description heading in preview, got %q", page)
	}
	if !strings.Contains(page, "Widgets &lt;everywhere&gt;.") {
		t.Errorf("expected escaped text in preview, got %q", page)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/records/widget-market", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/records/widget-market", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/records/widget-market", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", rec.Code)
	}
}

func TestIngest_Batch(t *testing.T) {
	env := newTestEnv(t)
	req := uploadRequest(t, "/api/ingest/batch", "files", map[string]string{
		"a.txt":     reportText,
		"notes.odt": "x",
	}, nil)
	rec := env.do(t, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var body struct {
		Jobs []map[string]any `json:"jobs"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(body.Jobs))
	}
	accepted, rejected := 0, 0
	for _, j := range body.Jobs {
		if _, ok := j["error"]; ok {
			rejected++
		} else {
			accepted++
		}
	}
	if accepted != 1 || rejected != 1 {
		t.Errorf("expected 1 accepted and 1 rejected, got %d/%d", accepted, rejected)
	}
}

func TestIngestStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/ingest/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestExtractStats(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, uploadRequest(t, "/api/extract", "file", map[string]string{"a.txt": reportText}, nil))

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil))
	var body struct {
		Stats pipeline.StatsSnapshot `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.Documents != 1 {
		t.Errorf("expected 1 document, got %d", body.Stats.Documents)
	}
}

func TestPreviewSanitises(t *testing.T) {
	html := previewPolicy().Sanitize(previewHTML(&record.Record{
		Title:       "A <b>",
		Description: `<p onclick="x()">ok</p><script>alert(1)</script>`,
		Report:      `<table><tbody><tr><td style="background-color:#ffffff; padding:4px">v</td></tr></tbody></table>`,
	}))
	if strings.Contains(html, "<script") || strings.Contains(html, "alert(") || strings.Contains(html, "onclick") {
		t.Errorf("expected script stripped, got %q", html)
	}
	if !strings.Contains(html, "<h1>A &lt;b&gt;</h1>") {
		t.Errorf("expected escaped title, got %q", html)
	}
	if !strings.Contains(html, "background-color") {
		t.Errorf("expected table styles kept, got %q", html)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"report.docx", "report.docx"},
		{"../../etc/passwd", "passwd"},
		{`C:\docs\a.docx`, "a.docx"},
		{"", "unnamed"},
		{"a..b.txt", "a_b.txt"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
