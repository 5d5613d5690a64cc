package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
)

func (s *Server) recordStore(w http.ResponseWriter) *store.Store {
	st := s.orchestrator.Publisher().Store()
	if st == nil {
		jsonError(w, "record store unavailable", http.StatusServiceUnavailable)
	}
	return st
}

// handleListRecords lists stored records, newest first.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	st := s.recordStore(w)
	if st == nil {
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := st.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"records": entries})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// handleDeleteRecord removes a record locally and from the catalog when one
// is configured.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	st := s.recordStore(w)
	if st == nil {
		return
	}
	sku := chi.URLParam(r, "sku")
	if err := st.Delete(r.Context(), sku); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "record not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to delete record: "+err.Error(), http.StatusInternalServerError)
		return
	}

	catalogDeleted := false
	if cat := s.orchestrator.Publisher().Catalog(); cat != nil {
		if err := cat.DeleteRecord(r.Context(), sku); err != nil {
			s.log.Warn("catalog delete failed", "sku", sku, "error", err)
		} else {
			catalogDeleted = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sku":             sku,
		"deleted":         true,
		"catalog_deleted": catalogDeleted,
	})
}

// handlePreviewRecord renders the record's markup fields as one sanitised
// HTML page.
func (s *Server) handlePreviewRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecord(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(s.preview.Sanitize(previewHTML(rec))))
}

func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request) (*record.Record, bool) {
	st := s.recordStore(w)
	if st == nil {
		return nil, false
	}
	rec, err := st.Get(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "record not found", http.StatusNotFound)
			return nil, false
		}
		jsonError(w, "failed to load record: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}

// previewPolicy allows user content plus the inline styles the coverage
// table is rendered with.
func previewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles("background-color", "border", "vertical-align", "padding", "width").OnElements("td", "th")
	p.AllowElements("section")
	return p
}

func previewHTML(rec *record.Record) string {
	var b strings.Builder
	b.WriteString("<article>")
	b.WriteString("<h1>" + htmlText(rec.Title) + "</h1>")
	for _, sec := range []struct{ name, body string }{
		{"description", rec.Description},
		{"toc", rec.TOC},
		{"report", rec.Report},
		{"faq", rec.Methodology},
	} {
		if sec.body == "" {
			continue
		}
		b.WriteString(`<section id="` + sec.name + `">`)
		b.WriteString(sec.body)
		b.WriteString("</section>")
	}
	b.WriteString("</article>")
	return b.String()
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func htmlText(s string) string { return htmlReplacer.Replace(s) }
