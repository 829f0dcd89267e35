package store

import (
	"context"
	"time"

	"github.com/jw6ventures/carrental-console/internal/metrics"
)

func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveSessionStoreLatency(ctx, operation, start)
	}
}
