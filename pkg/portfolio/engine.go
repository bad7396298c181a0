// Package portfolio orchestrates the sync pipeline: fetch repository
// snapshots, score them, and cache visitor-targeted insights.
package portfolio

import (
	"context"
	"fmt"
	"os"

	"github.com/linqiu/gitfolio/internal/metrics"
	"github.com/linqiu/gitfolio/internal/store"
	"github.com/linqiu/gitfolio/pkg/feed"
	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/insight"
	"github.com/linqiu/gitfolio/pkg/persona"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

// RepoSource supplies repository snapshots. Implemented by github.Client;
// tests stub it.
type RepoSource interface {
	Username() string
	ListRepos(ctx context.Context) ([]github.Snapshot, error)
	FetchAll(ctx context.Context) ([]github.Snapshot, error)
}

// Engine runs the portfolio pipeline.
type Engine struct {
	store    store.Store
	source   RepoSource
	scorer   *scoring.Scorer
	cache    *scoring.Cache
	insights *insight.Generator // optional, nil = fallback content only
	metrics  *metrics.Metrics   // optional
	enrich   bool
}

// NewEngine creates a portfolio engine. gen may be nil to disable LLM
// insights; m may be nil to disable instrumentation.
func NewEngine(s store.Store, src RepoSource, cache *scoring.Cache, gen *insight.Generator, m *metrics.Metrics, enrich bool) *Engine {
	if cache == nil {
		cache = scoring.NewCache()
	}
	return &Engine{
		store:    s,
		source:   src,
		scorer:   scoring.NewScorer(cache),
		cache:    cache,
		insights: gen,
		metrics:  m,
		enrich:   enrich,
	}
}

// SyncResult reports what a sync run did.
type SyncResult struct {
	Repos   int  `json:"repos"`
	Sampled bool `json:"sampled"`
}

// Sync fetches the account's repositories, scores each snapshot, and
// persists both. When GitHub is unreachable it falls back to the fixed
// sample set so the portfolio always has content.
func (e *Engine) Sync(ctx context.Context) (SyncResult, error) {
	var (
		snaps []github.Snapshot
		err   error
	)
	if e.enrich {
		snaps, err = e.source.FetchAll(ctx)
	} else {
		snaps, err = e.source.ListRepos(ctx)
	}

	result := SyncResult{}
	if err != nil {
		fmt.Fprintf(os.Stderr, "  github fetch error (using sample data): %v\n", err)
		if e.metrics != nil {
			e.metrics.GitHubFetchError.Inc()
			e.metrics.SampleFallbacks.Inc()
		}
		snaps = github.SampleRepos()
		result.Sampled = true
	}

	if err := e.store.UpsertRepos(ctx, snaps); err != nil {
		return result, fmt.Errorf("store repos: %w", err)
	}

	hitsBefore, _ := e.cache.Stats()
	for i := range snaps {
		bundle := e.scorer.Score(snaps[i])
		if err := e.store.UpsertScore(ctx, snaps[i].ID, snaps[i].UpdatedAt, bundle); err != nil {
			return result, fmt.Errorf("store score: %w", err)
		}
		result.Repos++
	}
	if e.metrics != nil {
		hitsAfter, _ := e.cache.Stats()
		e.metrics.ReposScored.Add(float64(result.Repos))
		e.metrics.ScoreCacheHits.Add(float64(hitsAfter - hitsBefore))
		e.metrics.ScoreCacheMisses.Add(float64(int64(result.Repos) - (hitsAfter - hitsBefore)))
	}

	return result, nil
}

// InsightFor returns the cached insight for (project, visitor type),
// generating and caching it on first request. Never fails into the caller's
// response path: LLM errors degrade to deterministic fallback content.
func (e *Engine) InsightFor(ctx context.Context, p *store.Project, visitorType string) (*store.StoredInsight, error) {
	profile := persona.Select(visitorType)
	key := string(profile.Type)

	if cached, err := e.store.GetInsight(ctx, p.ID, key); err == nil {
		return cached, nil
	}

	var (
		ins      *insight.Insight
		fallback bool
	)
	if e.insights != nil {
		if e.metrics != nil {
			e.metrics.InsightCalls.Inc()
		}
		generated, err := e.insights.Generate(ctx, p.Snapshot, p.Bundle, profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  insight error for %s (using fallback): %v\n", p.FullName, err)
			ins = nil
		} else {
			ins = generated
		}
	}
	if ins == nil {
		ins = insight.Fallback(p.Snapshot, p.Bundle, profile)
		fallback = true
		if e.metrics != nil {
			e.metrics.InsightFallbacks.Inc()
		}
	}

	if err := e.store.UpsertInsight(ctx, p.ID, key, ins, fallback); err != nil {
		return nil, err
	}
	return e.store.GetInsight(ctx, p.ID, key)
}

// RefreshFeeds replaces the stored blog posts with a fresh fetch.
func (e *Engine) RefreshFeeds(ctx context.Context, fetcher *feed.Fetcher) (int, error) {
	posts, err := fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feeds: %w", err)
	}
	if err := e.store.ReplacePosts(ctx, posts); err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.PostsFetched.Add(float64(len(posts)))
	}
	return len(posts), nil
}
