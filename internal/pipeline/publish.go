package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/reportgest/internal/catalog"
	"github.com/dgallion1/reportgest/internal/record"
	"github.com/dgallion1/reportgest/internal/store"
)

// Publisher writes finished records to the local store and the downstream
// catalog. Either sink may be nil.
type Publisher struct {
	store   *store.Store
	catalog *catalog.Client
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewPublisher(st *store.Store, cat *catalog.Client, log *slog.Logger) *Publisher {
	return &Publisher{store: st, catalog: cat, log: log, backoff: Backoff}
}

// Store returns the local record store, or nil.
func (p *Publisher) Store() *store.Store {
	if p == nil {
		return nil
	}
	return p.store
}

// Publish stores res and pushes it to the catalog. Both sinks are attempted;
// the returned error joins their failures. A nil Publisher does nothing.
func (p *Publisher) Publish(ctx context.Context, res record.Result) error {
	if p == nil {
		return nil
	}
	if res.Record == nil {
		return errors.New("publish: nil record")
	}
	var errs []error
	if p.store != nil {
		if err := p.store.Put(ctx, res.Record, !res.OK()); err != nil {
			errs = append(errs, err)
		}
	}
	if p.catalog != nil {
		if err := p.push(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) push(ctx context.Context, res record.Result) error {
	log := p.log.With("sku", res.Record.SKU)
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = p.catalog.PutRecord(ctx, res.Record, !res.OK())
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable catalog error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(p.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if lastErr != nil {
		return fmt.Errorf("catalog push %s: %w", res.Record.SKU, lastErr)
	}
	return nil
}

// Catalog returns the downstream catalog client, or nil.
func (p *Publisher) Catalog() *catalog.Client {
	if p == nil {
		return nil
	}
	return p.catalog
}
