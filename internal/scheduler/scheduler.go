// Package scheduler runs the sync and feed refresh loops.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/linqiu/gitfolio/pkg/feed"
	"github.com/linqiu/gitfolio/pkg/portfolio"
)

// Scheduler periodically syncs repositories and refreshes blog feeds.
type Scheduler struct {
	engine       *portfolio.Engine
	fetcher      *feed.Fetcher // nil disables feed refresh
	syncInterval time.Duration
	feedInterval time.Duration
}

// New creates a scheduler. Zero intervals get defaults (1h sync, 6h feeds).
func New(engine *portfolio.Engine, fetcher *feed.Fetcher, syncInterval, feedInterval time.Duration) *Scheduler {
	if syncInterval <= 0 {
		syncInterval = time.Hour
	}
	if feedInterval <= 0 {
		feedInterval = 6 * time.Hour
	}
	return &Scheduler{
		engine:       engine,
		fetcher:      fetcher,
		syncInterval: syncInterval,
		feedInterval: feedInterval,
	}
}

// Run blocks until ctx is cancelled. Both loops fire immediately on start,
// then on their intervals.
func (s *Scheduler) Run(ctx context.Context) {
	syncTicker := time.NewTicker(s.syncInterval)
	defer syncTicker.Stop()
	feedTicker := time.NewTicker(s.feedInterval)
	defer feedTicker.Stop()

	s.runSync(ctx)
	s.runFeeds(ctx)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler stopped")
			return
		case <-syncTicker.C:
			s.runSync(ctx)
		case <-feedTicker.C:
			s.runFeeds(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	start := time.Now()
	result, err := s.engine.Sync(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		return
	}
	source := "github"
	if result.Sampled {
		source = "sample data"
	}
	fmt.Fprintf(os.Stderr, "sync done: %d repos from %s in %v\n",
		result.Repos, source, time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) runFeeds(ctx context.Context) {
	if s.fetcher == nil {
		return
	}
	n, err := s.engine.RefreshFeeds(ctx, s.fetcher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "feed refresh failed: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "feed refresh done: %d posts\n", n)
}
