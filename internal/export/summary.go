package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/dgallion1/reportgest/internal/record"
)

// WriteSummary writes a Markdown report of a batch run: totals, then one row
// per document with its title source and any error.
func WriteSummary(w io.Writer, results []record.Result, elapsed time.Duration) error {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	md := markdown.NewMarkdown(w)
	md.H1("Extraction Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Documents", strconv.Itoa(len(results))},
			{"Succeeded", strconv.Itoa(len(results) - failed)},
			{"Failed", strconv.Itoa(failed)},
			{"Elapsed", elapsed.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if failed > 0 {
		md.Warningf("%d document(s) produced diagnostic rows.", failed)
		md.PlainText("")
	}

	md.H2("Documents")
	md.PlainText("")
	if len(results) == 0 {
		md.PlainText("No documents processed.")
		return md.Build()
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, summaryRow(r))
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Title", "Source", "Parts", "Status"},
		Rows:   rows,
	})
	return md.Build()
}

func summaryRow(r record.Result) []string {
	rec := r.Record
	if rec == nil {
		rec = &record.Record{}
	}
	status := "ok"
	if !r.OK() {
		status = "error: " + r.Err.Error()
	}
	return []string{
		cell(rec.File),
		cell(rec.Title),
		string(rec.TitleSource),
		strconv.Itoa(len(rec.MergedParts)),
		cell(status),
	}
}

// cell keeps a value on one table line.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
