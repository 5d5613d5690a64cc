package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Worker processes a single extraction job.
type Worker struct {
	extractor *Extractor
	publisher *Publisher
	log       *slog.Logger
}

func NewWorker(ex *Extractor, pub *Publisher, log *slog.Logger) *Worker {
	return &Worker{extractor: ex, publisher: pub, log: log}
}

// Process extracts the job's upload and publishes the record.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()
	res := w.extractor.Extract(ctx, job.FileData(), job.Filename)
	job.releaseData()
	job.SetResult(res, time.Since(start))

	degraded := false
	if !res.OK() {
		log.Warn("extraction degraded", "error", res.Err)
		job.AddError(fmt.Sprintf("extract: %s", res.Err))
		degraded = true
	}

	if w.publisher != nil {
		job.SetStatus(StatusStoring, "storing")
		if err := w.publisher.Publish(ctx, res); err != nil {
			log.Error("publish failed", "error", err)
			job.AddError(fmt.Sprintf("publish: %s", err))
			job.SetStatus(StatusFailed, "storing")
			return
		}
	}

	log.Info("job complete", "sku", res.Record.SKU, "title_source", res.Record.TitleSource, "degraded", degraded)
	if degraded {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
