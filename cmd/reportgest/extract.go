package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/reportgest/internal/catalog"
	"github.com/dgallion1/reportgest/internal/config"
	"github.com/dgallion1/reportgest/internal/export"
	"github.com/dgallion1/reportgest/internal/pipeline"
	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
)

type extractFlags struct {
	output      string
	db          string
	push        bool
	summary     string
	allFormats  bool
	concurrency int
	timeout     time.Duration
}

func extractCmd(gf *globalFlags) *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract <dir>",
		Short: "Extract every report in a directory into one spreadsheet",
		Long: `Extract reads the .docx reports directly inside <dir> (every supported
format with --all-formats), skipping editor lock and hidden files, and writes
one row per document. The output format follows the file extension: .xlsx or
.csv. Documents that fail still produce a row carrying the error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := gf.setup(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runExtract(ctx, cmd, cfg, log, args[0], f)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "output.xlsx", "output file (.xlsx or .csv)")
	cmd.Flags().StringVar(&f.db, "db", "", "also store records in this SQLite database (\"default\" uses DB_PATH)")
	cmd.Flags().BoolVar(&f.push, "push", false, "push records to the catalog at CATALOG_URL")
	cmd.Flags().StringVar(&f.summary, "summary", "", "write a Markdown run summary to this file (\"-\" for stdout)")
	cmd.Flags().BoolVar(&f.allFormats, "all-formats", false, "accept every supported format, not only .docx")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "c", 0, "documents in flight (default WORKER_COUNT)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-document bound (default DOC_TIMEOUT)")
	return cmd
}

func runExtract(ctx context.Context, cmd *cobra.Command, cfg config.Config, log *slog.Logger, dir string, f *extractFlags) error {
	if _, err := export.FormatFor(f.output); err != nil {
		return err
	}
	if f.timeout > 0 {
		cfg.DocTimeout = f.timeout
	}
	if f.concurrency <= 0 {
		f.concurrency = cfg.WorkerCount
	}

	ex, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	pub, cleanup, err := openSinks(cfg, f, log)
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()
	results, err := ex.Batch(ctx, dir, pipeline.BatchOptions{
		AllFormats:  f.allFormats,
		Concurrency: f.concurrency,
		OnResult: func(path string, res record.Result) {
			if err := pub.Publish(ctx, res); err != nil {
				log.Error("publish failed", "file", path, "error", err)
			}
		},
	}, log)
	if err != nil {
		return fmt.Errorf("extract %s: %w", dir, err)
	}
	if len(results) == 0 {
		log.Warn("no input documents found", "dir", dir, "all_formats", f.allFormats)
	}

	records := make([]*record.Record, len(results))
	failed := 0
	for i, res := range results {
		records[i] = res.Record
		if !res.OK() {
			failed++
		}
	}
	if err := export.WriteFile(f.output, records); err != nil {
		return err
	}
	log.Info("wrote records", "output", f.output, "documents", len(records), "failed", failed)

	if f.summary != "" {
		if err := writeSummary(cmd, f.summary, results, time.Since(start)); err != nil {
			return err
		}
	}
	return nil
}

// openSinks returns the publisher for the --db and --push flags. The cleanup
// function closes whatever was opened.
func openSinks(cfg config.Config, f *extractFlags, log *slog.Logger) (*pipeline.Publisher, func(), error) {
	var st *store.Store
	var cat *catalog.Client
	cleanup := func() {
		if st != nil {
			st.Close()
		}
		if cat != nil {
			cat.Close()
		}
	}

	if f.db != "" {
		path := f.db
		if path == "default" {
			path = cfg.DBPath
		}
		var err error
		if st, err = store.Open(path); err != nil {
			return nil, cleanup, err
		}
	}
	if f.push {
		if cfg.CatalogURL == "" {
			cleanup()
			return nil, func() {}, fmt.Errorf("--push requires CATALOG_URL")
		}
		cat = catalog.NewClient(cfg.CatalogURL, cfg.CatalogAPIKey)
	}
	if st == nil && cat == nil {
		return nil, cleanup, nil
	}
	return pipeline.NewPublisher(st, cat, log), cleanup, nil
}

func writeSummary(cmd *cobra.Command, path string, results []record.Result, elapsed time.Duration) error {
	if path == "-" {
		return export.WriteSummary(cmd.OutOrStdout(), results, elapsed)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	if err := export.WriteSummary(out, results, elapsed); err != nil {
		out.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	return out.Close()
}
