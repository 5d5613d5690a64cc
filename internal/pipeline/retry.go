package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/reportgest/internal/catalog"
)

// MaxRetries bounds catalog push attempts per record.
const MaxRetries = 3

// IsRetryable checks if a catalog error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *catalog.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
