// Package metrics exposes Prometheus counters for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus instruments. A single instance is
// created at startup and shared by the scheduler and server.
type Metrics struct {
	ReposScored      prometheus.Counter
	ScoreCacheHits   prometheus.Counter
	ScoreCacheMisses prometheus.Counter
	GitHubFetchError prometheus.Counter
	SampleFallbacks  prometheus.Counter
	InsightCalls     prometheus.Counter
	InsightFallbacks prometheus.Counter
	PostsFetched     prometheus.Counter
}

// New registers the service metrics on the given registerer (nil uses the
// default registry).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReposScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "repos_scored_total",
			Help:      "Repositories run through the heuristic scorer.",
		}),
		ScoreCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "score_cache_hits_total",
			Help:      "Score lookups served from the memo cache.",
		}),
		ScoreCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "score_cache_misses_total",
			Help:      "Score lookups that required recomputation.",
		}),
		GitHubFetchError: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "github_fetch_errors_total",
			Help:      "Failed GitHub API fetches.",
		}),
		SampleFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "sample_fallbacks_total",
			Help:      "Sync runs that fell back to sample repository data.",
		}),
		InsightCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "insight_calls_total",
			Help:      "LLM insight generation attempts.",
		}),
		InsightFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "insight_fallbacks_total",
			Help:      "Insights served from static fallback content.",
		}),
		PostsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gitfolio",
			Name:      "posts_fetched_total",
			Help:      "Blog posts collected from configured feeds.",
		}),
	}
}
