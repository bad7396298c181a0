package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linqiu/gitfolio/pkg/github"
)

func TestCacheKeyedByUpdateTime(t *testing.T) {
	cache := NewCache()
	updated := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	_, ok := cache.Get(1, updated)
	assert.False(t, ok, "empty cache misses")

	cache.Put(1, updated, Bundle{Complexity: 7})

	b, ok := cache.Get(1, updated)
	assert.True(t, ok)
	assert.Equal(t, 7, b.Complexity)

	_, ok = cache.Get(1, updated.Add(time.Hour))
	assert.False(t, ok, "changed update time is a new key")

	_, ok = cache.Get(2, updated)
	assert.False(t, ok, "different repo is a new key")

	assert.Equal(t, 1, cache.Len())
}

func TestCacheStats(t *testing.T) {
	cache := NewCache()
	updated := time.Now()

	cache.Get(1, updated)
	cache.Put(1, updated, Bundle{})
	cache.Get(1, updated)
	cache.Get(1, updated)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestScorerUsesCache(t *testing.T) {
	cache := NewCache()
	scorer := NewScorer(cache).WithClock(func() time.Time { return testNow })

	snap := github.Snapshot{
		ID:        7,
		Language:  "Go",
		Stars:     30,
		UpdatedAt: testNow.AddDate(0, 0, -1),
	}

	first := scorer.Score(snap)
	second := scorer.Score(snap)
	assert.Equal(t, first, second)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits, "second score is a cache hit")
	assert.Equal(t, int64(1), misses)

	// Metadata changes without a new update time reuse the stale entry.
	changed := snap
	changed.Stars = 5000
	assert.Equal(t, first, scorer.Score(changed))

	// A new update time forces recomputation.
	changed.UpdatedAt = snap.UpdatedAt.Add(time.Minute)
	rescored := scorer.Score(changed)
	assert.NotEqual(t, first.Innovation, rescored.Innovation)
	assert.Equal(t, 2, cache.Len())
}
