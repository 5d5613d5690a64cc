package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/record"
)

// BatchOptions controls a directory run.
type BatchOptions struct {
	// AllFormats accepts every supported reader, not only .docx.
	AllFormats bool
	// Concurrency bounds the documents in flight. Zero means 4.
	Concurrency int
	// OnResult, if set, is called once per document as it finishes. Calls may
	// come from several goroutines.
	OnResult func(path string, res record.Result)
}

// ListInputs returns the eligible files directly inside dir, sorted by name.
// Subdirectories, editor lock files and hidden files are skipped.
func ListInputs(dir string, allFormats bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || parser.IsTemporary(name) {
			continue
		}
		if allFormats {
			if !parser.IsSupportedExtension(name) {
				continue
			}
		} else if !parser.IsDOCX(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	slices.Sort(paths)
	return paths, nil
}

// Batch extracts every eligible file in dir. Results follow the input order
// and hold one entry per file; failed documents carry diagnostic records. The
// error is non-nil only when the directory cannot be read or ctx ends.
func (e *Extractor) Batch(ctx context.Context, dir string, opts BatchOptions, log *slog.Logger) ([]record.Result, error) {
	paths, err := ListInputs(dir, opts.AllFormats)
	if err != nil {
		return nil, err
	}
	return e.BatchFiles(ctx, paths, opts, log)
}

// BatchFiles is Batch over an explicit file list.
func (e *Extractor) BatchFiles(ctx context.Context, paths []string, opts BatchOptions, log *slog.Logger) ([]record.Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	log.Info("starting batch", "documents", len(paths), "concurrency", opts.Concurrency)
	start := time.Now()

	results := make([]record.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := e.ExtractFile(gctx, path)
			results[i] = res

			if res.OK() {
				log.Debug("document extracted", "file", path, "title_source", res.Record.TitleSource)
			} else {
				log.Warn("document failed", "file", path, "error", res.Err)
			}
			if opts.OnResult != nil {
				opts.OnResult(path, res)
			}
			// Failures are recorded in the result; other documents continue.
			return nil
		})
	}

	err := g.Wait()
	log.Info("batch complete", "documents", len(paths), "elapsed", time.Since(start))
	return results, err
}
