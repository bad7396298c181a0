// Package scoring derives project assessment scores from repository
// metadata. All scores are deterministic table lookups and bounded linear
// formulas; every lookup has a default, so scoring never fails.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/linqiu/gitfolio/pkg/github"
)

// Tier is the qualitative complexity tier derived from the complexity score.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierExpert       Tier = "expert"
)

// Bundle is the set of derived assessments for one repository snapshot.
// Every numeric score is clamped to [1,10].
type Bundle struct {
	Complexity      int      `json:"complexity" db:"complexity"`
	Maintainability int      `json:"maintainability" db:"maintainability"`
	Scalability     int      `json:"scalability" db:"scalability"`
	Innovation      int      `json:"innovation" db:"innovation"`
	Priority        int      `json:"priority" db:"priority"`
	Category        Category `json:"category" db:"category"`
	Tier            Tier     `json:"tier" db:"tier"`
	Tags            []string `json:"tags" db:"-"`
}

const maxTags = 8

// languageComplexity maps a primary language to a 1-10 complexity weight.
// Unlisted languages score the neutral 5.
var languageComplexity = map[string]float64{
	"Assembly":   10,
	"C++":        9,
	"C":          8,
	"Rust":       8,
	"Haskell":    8,
	"Go":         7,
	"Scala":      7,
	"Java":       6,
	"C#":         6,
	"Swift":      6,
	"Kotlin":     6,
	"Python":     5,
	"TypeScript": 5,
	"JavaScript": 4,
	"PHP":        4,
	"Ruby":       4,
	"Shell":      3,
	"HTML":       2,
	"CSS":        2,
	"Markdown":   1,
}

// Topic keyword sets. Each dimension counts how many of a repository's
// topics fall in its set and turns the count into a 5..10 sub-score.
var (
	architectureTopics = keywordSet(
		"architecture", "microservices", "distributed", "event-driven",
		"grpc", "api", "kubernetes", "docker", "serverless",
	)
	performanceTopics = keywordSet(
		"performance", "optimization", "concurrency", "parallel",
		"low-latency", "caching", "scalability", "high-availability",
	)
	testingTopics = keywordSet(
		"testing", "tdd", "ci", "cd", "ci-cd", "coverage", "quality",
		"automation",
	)
	noveltyTopics = keywordSet(
		"ai", "ml", "machine-learning", "deep-learning", "llm",
		"blockchain", "quantum", "ar", "vr", "research", "innovation",
	)
	modularityTopics = keywordSet(
		"plugin", "modular", "library", "framework", "sdk", "components",
	)
)

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Scorer computes score bundles, memoizing results in an injected cache so
// an unchanged repository is never rescored.
type Scorer struct {
	cache *Cache
	now   func() time.Time
}

// NewScorer creates a scorer backed by the given cache. A nil cache disables
// memoization.
func NewScorer(cache *Cache) *Scorer {
	return &Scorer{cache: cache, now: time.Now}
}

// WithClock overrides the scorer's notion of "now". Recency bonuses depend
// on the distance between now and the snapshot's update time.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score derives the bundle for a snapshot, consulting the cache first.
func (s *Scorer) Score(snap github.Snapshot) Bundle {
	if s.cache != nil {
		if b, ok := s.cache.Get(snap.ID, snap.UpdatedAt); ok {
			return b
		}
	}

	b := s.compute(snap)

	if s.cache != nil {
		s.cache.Put(snap.ID, snap.UpdatedAt, b)
	}
	return b
}

func (s *Scorer) compute(snap github.Snapshot) Bundle {
	lang := languageScore(snap.Language)
	size := sizeScore(snap.SizeKB)
	recency := recencyBonus(s.now().Sub(snap.UpdatedAt))

	archSub := topicSubScore(snap.Topics, architectureTopics)
	perfSub := topicSubScore(snap.Topics, performanceTopics)
	testSub := topicSubScore(snap.Topics, testingTopics)
	noveltySub := topicSubScore(snap.Topics, noveltyTopics)
	modSub := topicSubScore(snap.Topics, modularityTopics)

	complexity := clamp(0.4*lang + 0.3*size + 0.3*archSub + bounded(snap.Stars, 50, 2))

	maintainability := 2.5 + 0.5*testSub + float64(recency)
	if snap.HasWiki {
		maintainability++
	}
	if snap.Description != "" {
		maintainability++
	}

	scalability := clamp(0.6*perfSub + 0.4*modSub)
	innovation := clamp(noveltySub + bounded(snap.Stars, 100, 2))

	priority := clamp(bounded(snap.Stars, 20, 3) + bounded(snap.Forks, 10, 2) +
		float64(recency) + float64(complexity)/2 + float64(innovation)/2)

	category := Classify(snap.Description, snap.Topics)
	tier := tierFor(complexity)

	return Bundle{
		Complexity:      complexity,
		Maintainability: clamp(maintainability),
		Scalability:     scalability,
		Innovation:      innovation,
		Priority:        priority,
		Category:        category,
		Tier:            tier,
		Tags:            deriveTags(snap, category, tier),
	}
}

func languageScore(language string) float64 {
	if v, ok := languageComplexity[language]; ok {
		return v
	}
	return 5
}

// sizeScore is a monotonic step function over the repository's size in KB.
func sizeScore(sizeKB int) float64 {
	switch {
	case sizeKB < 1_000:
		return 2
	case sizeKB < 10_000:
		return 4
	case sizeKB < 50_000:
		return 6
	case sizeKB < 200_000:
		return 8
	default:
		return 10
	}
}

// topicSubScore maps the intersection count between topics and a keyword set
// to a 5..10 sub-score.
func topicSubScore(topics []string, set map[string]bool) float64 {
	matches := 0
	for _, t := range topics {
		if set[strings.ToLower(t)] {
			matches++
		}
	}
	return math.Min(5+2*float64(matches), 10)
}

// bounded returns count/divisor capped at max.
func bounded(count, divisor int, max float64) float64 {
	return math.Min(float64(count)/float64(divisor), max)
}

// recencyBonus buckets days-since-update into a 0..3 bonus.
func recencyBonus(sinceUpdate time.Duration) int {
	days := sinceUpdate.Hours() / 24
	switch {
	case days < 7:
		return 3
	case days < 30:
		return 2
	case days < 90:
		return 1
	default:
		return 0
	}
}

func tierFor(complexity int) Tier {
	switch {
	case complexity <= 3:
		return TierBeginner
	case complexity <= 5:
		return TierIntermediate
	case complexity <= 8:
		return TierAdvanced
	default:
		return TierExpert
	}
}

// deriveTags builds the display tag list: language first, then topics, then
// derived tags, deduplicated in insertion order and truncated to 8.
func deriveTags(snap github.Snapshot, category Category, tier Tier) []string {
	var candidates []string
	if snap.Language != "" {
		candidates = append(candidates, strings.ToLower(snap.Language))
	}
	for _, t := range snap.Topics {
		candidates = append(candidates, strings.ToLower(t))
	}
	candidates = append(candidates,
		strings.ReplaceAll(string(category), "-", " "),
		string(tier),
	)
	if snap.Stars > 100 {
		candidates = append(candidates, "popular")
	}
	if snap.Forks > 10 {
		candidates = append(candidates, "community")
	}
	if snap.OpenIssues > 0 {
		candidates = append(candidates, "active")
	}

	seen := make(map[string]bool, len(candidates))
	tags := make([]string, 0, maxTags)
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		tags = append(tags, c)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// clamp rounds and bounds a raw score into [1,10].
func clamp(x float64) int {
	v := int(math.Round(x))
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
