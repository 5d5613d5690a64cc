package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/reportgest/internal/catalog"
	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
	"github.com/dgallion1/reportgest/internal/title"
)

const reportText = `1. Report Title: Global Widget Market
# Introduction and Strategic Context
Widgets are everywhere.
- Demand rises
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExtractor(timeout time.Duration) *Extractor {
	asm := record.NewAssembler(record.Options{
		Now: func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) },
	})
	return NewExtractor(asm, parser.Options{}, timeout, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_Text(t *testing.T) {
	ex := testExtractor(time.Second)
	res := ex.Extract(context.Background(), []byte(reportText), "Widget-Market.txt")
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Record.SKU != "widget-market" {
		t.Errorf("expected sku %q, got %q", "widget-market", res.Record.SKU)
	}
	if res.Record.TitleSource != title.SourceHeading {
		t.Errorf("expected heading title, got %q", res.Record.TitleSource)
	}
	if !strings.Contains(res.Record.Description, "<li>Demand rises</li>") {
		t.Errorf("expected list item in description, got %q", res.Record.Description)
	}
	if snap := ex.Stats().Snapshot(); snap.Documents != 1 || snap.Failed != 0 {
		t.Errorf("expected one ok sample, got %+v", snap)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	ex := testExtractor(time.Second)
	res := ex.Extract(context.Background(), []byte("x"), "notes.odt")
	if !errors.Is(res.Err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", res.Err)
	}
	if !strings.HasPrefix(res.Record.Merged, "ERROR: ") {
		t.Errorf("expected diagnostic, got %q", res.Record.Merged)
	}
	if snap := ex.Stats().Snapshot(); snap.Failed != 1 {
		t.Errorf("expected one failed sample, got %d", snap.Failed)
	}
}

func TestExtract_BadDocx(t *testing.T) {
	res := testExtractor(time.Second).Extract(context.Background(), []byte("not a zip"), "broken.docx")
	if res.OK() {
		t.Fatal("expected parse failure")
	}
	if res.Record.File != "broken.docx" {
		t.Errorf("expected %q, got %q", "broken.docx", res.Record.File)
	}
}

func TestExtract_Timeout(t *testing.T) {
	ex := testExtractor(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	ex.run = func(data []byte, filename string) record.Result {
		<-release
		return record.Result{Record: &record.Record{}}
	}

	res := ex.Extract(context.Background(), nil, "slow.docx")
	if !errors.Is(res.Err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", res.Err)
	}
	if res.Record.SKU != "slow" {
		t.Errorf("expected diagnostic record for slow, got %q", res.Record.SKU)
	}
}

func TestExtract_RecoversReaderPanic(t *testing.T) {
	ex := testExtractor(time.Second)
	ex.run = func(data []byte, filename string) record.Result { panic("corrupt table") }

	res := ex.Extract(context.Background(), nil, "bad.docx")
	if res.OK() || !strings.Contains(res.Err.Error(), "corrupt table") {
		t.Fatalf("expected recovered panic, got %v", res.Err)
	}
}

func TestListInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "a.docx", "~$a.docx", ".~lock.b.docx#", ".hidden.docx", "notes.md", "image.png"} {
		writeFile(t, dir, name, "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.docx"), 0o750); err != nil {
		t.Fatal(err)
	}

	got, err := ListInputs(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.docx"), filepath.Join(dir, "b.docx")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}

	all, err := ListInputs(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 inputs with all formats, got %v", all)
	}

	if _, err := ListInputs(filepath.Join(dir, "missing"), false); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestBatch_OrderAndFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-report.txt", reportText)
	writeFile(t, dir, "b-report.docx", "not a zip")
	writeFile(t, dir, "c-report.md", "# Full Title: Gadget Outlook\n")

	var seen atomic.Int32
	ex := testExtractor(time.Second)
	results, err := ex.Batch(context.Background(), dir, BatchOptions{
		AllFormats:  true,
		Concurrency: 2,
		OnResult:    func(string, record.Result) { seen.Add(1) },
	}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantFiles := []string{"a-report.txt", "b-report.docx", "c-report.md"}
	for i, want := range wantFiles {
		if results[i].Record.File != want {
			t.Errorf("result %d: expected %q, got %q", i, want, results[i].Record.File)
		}
	}
	if !results[0].OK() || results[1].OK() {
		t.Errorf("expected only the docx to fail, got %v / %v", results[0].Err, results[1].Err)
	}
	if seen.Load() != 3 {
		t.Errorf("expected 3 callbacks, got %d", seen.Load())
	}
}

func TestBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", reportText)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testExtractor(time.Second).Batch(ctx, dir, BatchOptions{AllFormats: true}, testLogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPublisher_StoreAndCatalogRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := openStore(t)
	pub := NewPublisher(st, catalog.NewClient(srv.URL, "k"), testLogger())
	pub.backoff = func(int) time.Duration { return 0 }

	res := record.Result{Record: &record.Record{SKU: "widget", File: "widget.docx", Title: "Widget"}}
	if err := pub.Publish(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected a retry, got %d calls", calls.Load())
	}
	got, err := st.Get(context.Background(), "widget")
	if err != nil || got.Title != "Widget" {
		t.Errorf("expected stored record, got %+v, %v", got, err)
	}
}

func TestPublisher_NonRetryable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub := NewPublisher(nil, catalog.NewClient(srv.URL, "k"), testLogger())
	pub.backoff = func(int) time.Duration { return 0 }
	err := pub.Publish(context.Background(), record.Result{Record: &record.Record{SKU: "x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retry, got %d calls", calls.Load())
	}
	if err := pub.Publish(context.Background(), record.Result{}); err == nil {
		t.Error("expected error for nil record")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&catalog.RetryableError{Err: errors.New("503")}) {
		t.Error("expected retryable")
	}
	if IsRetryable(errors.New("400")) {
		t.Error("expected plain error not retryable")
	}
	if b := Backoff(10); b < 30*time.Second || b > 45*time.Second {
		t.Errorf("expected capped backoff, got %s", b)
	}
}

func waitForStatus(t *testing.T, job *Job, want ...JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		for _, w := range want {
			if snap.Status == w {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job did not reach %v, last %q", want, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	st := openStore(t)
	orch := NewOrchestrator(Options{Workers: 2, QueueSize: 4}, testExtractor(time.Second), NewPublisher(st, nil, testLogger()), testLogger())
	orch.Start(context.Background())
	defer orch.Stop()

	good := NewJob("Widget-Market.txt", []byte(reportText))
	bad := NewJob("broken.docx", []byte("nope"))
	for _, job := range []*Job{good, bad} {
		if err := orch.Submit(job); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	snap := waitForStatus(t, good, StatusCompleted)
	if snap.Result == nil || snap.Result.SKU != "widget-market" {
		t.Errorf("unexpected result: %+v", snap.Result)
	}
	if good.FileData() != nil {
		t.Error("expected upload released after extraction")
	}

	snap = waitForStatus(t, bad, StatusPartial)
	if len(snap.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Errors)
	}
	if orch.GetJob(bad.ID) != bad {
		t.Error("expected job lookup by id")
	}

	n, err := st.Count(context.Background())
	if err != nil || n != 2 {
		t.Errorf("expected 2 stored records, got %d (%v)", n, err)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	orch := NewOrchestrator(Options{Workers: 1, QueueSize: 1}, testExtractor(time.Second), nil, testLogger())
	if err := orch.Submit(NewJob("a.txt", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job := NewJob("b.txt", nil)
	if err := orch.Submit(job); err == nil {
		t.Fatal("expected queue full error")
	}
	if job.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed job, got %q", job.Snapshot().Status)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", orch.QueueDepth())
	}
}
