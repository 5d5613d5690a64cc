package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/reportgest/internal/parser"
	"github.com/dgallion1/reportgest/internal/record"
)

// ErrTimeout is reported when a document exceeds the per-document bound.
var ErrTimeout = errors.New("document extraction timed out")

// Extractor turns raw document bytes into a record result. It is safe for
// concurrent use.
type Extractor struct {
	asm     *record.Assembler
	parsers parser.Options
	timeout time.Duration
	stats   *Stats
	run     func(data []byte, filename string) record.Result
}

// NewExtractor returns an Extractor. A zero timeout disables the bound.
func NewExtractor(asm *record.Assembler, parsers parser.Options, timeout time.Duration, stats *Stats) *Extractor {
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	e := &Extractor{asm: asm, parsers: parsers, timeout: timeout, stats: stats}
	e.run = e.extract
	return e
}

// Stats returns the latency window the extractor records into.
func (e *Extractor) Stats() *Stats { return e.stats }

// Extract parses data as filename and assembles its record. Unsupported
// formats, parse errors, panics and timeouts come back as diagnostic results
// rather than errors.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) record.Result {
	start := time.Now()
	res := e.extractBounded(ctx, data, filename)
	e.stats.Observe(time.Since(start), !res.OK())
	return res
}

// ExtractFile reads path and extracts it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) record.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return e.asm.Failure(path, fmt.Errorf("read file: %w", err))
	}
	return e.Extract(ctx, data, path)
}

func (e *Extractor) extractBounded(ctx context.Context, data []byte, filename string) record.Result {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// The readers do not take a context; an abandoned run finishes in the
	// background and its result is dropped.
	done := make(chan record.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- e.asm.Failure(filename, fmt.Errorf("read %s: %v", filepath.Base(filename), r))
			}
		}()
		done <- e.run(data, filename)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return e.asm.Failure(filename, err)
	}
}

func (e *Extractor) extract(data []byte, filename string) record.Result {
	p, err := parser.ForFile(filename, e.parsers)
	if err != nil {
		return e.asm.Failure(filename, err)
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return e.asm.Failure(filename, fmt.Errorf("parse: %w", err))
	}
	return e.asm.Assemble(doc, filepath.Base(filename))
}
