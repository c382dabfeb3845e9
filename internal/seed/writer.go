package seed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/laurel/internal/adapters/content"
	"github.com/okian/laurel/pkg/logger"
)

// Stats counts the outcome of a seeding or load run.
type Stats struct {
	Generated  int           `json:"generated"`
	Written    int           `json:"written"`
	Submitted  int           `json:"submitted"`
	Accepted   int           `json:"accepted"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration_ns"`
}

// Write stores drafts through w using up to workers goroutines. Individual
// failures are counted, logged and skipped; only cancellation aborts.
func Write(ctx context.Context, w content.Writer, drafts []content.Draft, workers int) (Stats, error) {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	var written, failed int64

	ch := make(chan content.Draft, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range ch {
				if err := w.Put(ctx, d); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Get().Warn(ctx, "seed write failed",
						logger.String("content", d.Item().Ref().String()),
						logger.Error(err))
					continue
				}
				atomic.AddInt64(&written, 1)
			}
		}()
	}

	var err error
feed:
	for _, d := range drafts {
		select {
		case <-ctx.Done():
			err = fmt.Errorf("context cancelled during seeding: %w", ctx.Err())
			break feed
		case ch <- d:
		}
	}
	close(ch)
	wg.Wait()

	stats := Stats{
		Generated: len(drafts),
		Written:   int(written),
		Failed:    int(failed),
		Duration:  time.Since(start),
	}
	logger.Get().Info(ctx, "seeding completed",
		logger.Int("written", stats.Written),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
	return stats, err
}
