package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiu/gitfolio/pkg/feed"
	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/insight"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot(id int64, name string) github.Snapshot {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return github.Snapshot{
		ID:          id,
		Name:        name,
		FullName:    "alice/" + name,
		Description: "Test repository",
		URL:         "https://github.com/alice/" + name,
		Language:    "Go",
		SizeKB:      1200,
		Stars:       42,
		Forks:       7,
		OpenIssues:  2,
		Topics:      []string{"api", "testing"},
		HasWiki:     true,
		CreatedAt:   now.AddDate(-1, 0, 0),
		UpdatedAt:   now,
		FetchedAt:   now,
	}
}

func TestRepoRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := testSnapshot(1, "pipeline")
	snap.Languages = map[string]int64{"Go": 1000}
	require.NoError(t, s.UpsertRepo(ctx, &snap))

	repos, err := s.ListRepos(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 1)

	got := repos[0]
	assert.Equal(t, snap.FullName, got.FullName)
	assert.Equal(t, snap.Topics, got.Topics)
	assert.Equal(t, snap.Languages, got.Languages)
	assert.True(t, got.HasWiki)
}

func TestUpsertRepoUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := testSnapshot(1, "pipeline")
	require.NoError(t, s.UpsertRepo(ctx, &snap))

	snap.Stars = 100
	snap.Description = "Updated description"
	require.NoError(t, s.UpsertRepo(ctx, &snap))

	repos, err := s.ListRepos(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, 100, repos[0].Stars)
	assert.Equal(t, "Updated description", repos[0].Description)
}

func TestProjects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := testSnapshot(1, "notes")
	high := testSnapshot(2, "pipeline")
	require.NoError(t, s.UpsertRepos(ctx, []github.Snapshot{low, high}))

	require.NoError(t, s.UpsertScore(ctx, low.ID, low.UpdatedAt, scoring.Bundle{
		Complexity: 3, Maintainability: 5, Scalability: 4, Innovation: 3, Priority: 2,
		Category: scoring.CategoryOther, Tier: scoring.TierBeginner,
		Tags: []string{"go", "other"},
	}))
	require.NoError(t, s.UpsertScore(ctx, high.ID, high.UpdatedAt, scoring.Bundle{
		Complexity: 8, Maintainability: 7, Scalability: 8, Innovation: 6, Priority: 9,
		Category: scoring.CategoryBackend, Tier: scoring.TierAdvanced,
		Tags: []string{"go", "api", "backend"},
	}))

	t.Run("list orders by priority", func(t *testing.T) {
		projects, err := s.ListProjects(ctx, ProjectListOpts{})
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "pipeline", projects[0].Name)
		assert.Equal(t, 9, projects[0].Priority)
		assert.Equal(t, []string{"go", "api", "backend"}, projects[0].Tags)
	})

	t.Run("category filter", func(t *testing.T) {
		projects, err := s.ListProjects(ctx, ProjectListOpts{Category: scoring.CategoryBackend})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "pipeline", projects[0].Name)
	})

	t.Run("limit", func(t *testing.T) {
		projects, err := s.ListProjects(ctx, ProjectListOpts{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, projects, 1)
	})

	t.Run("get by name or full name", func(t *testing.T) {
		p, err := s.GetProject(ctx, "pipeline")
		require.NoError(t, err)
		assert.Equal(t, scoring.CategoryBackend, p.Category)

		p, err = s.GetProject(ctx, "alice/notes")
		require.NoError(t, err)
		assert.Equal(t, "notes", p.Name)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := s.GetProject(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("category counts", func(t *testing.T) {
		counts, err := s.CountProjectsByCategory(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[scoring.CategoryBackend])
		assert.Equal(t, 1, counts[scoring.CategoryOther])
	})
}

func TestStaleScoreIsNotListed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := testSnapshot(1, "pipeline")
	require.NoError(t, s.UpsertRepo(ctx, &snap))
	require.NoError(t, s.UpsertScore(ctx, snap.ID, snap.UpdatedAt, scoring.Bundle{Priority: 5}))

	// Repo moves forward without a fresh score.
	snap.UpdatedAt = snap.UpdatedAt.Add(time.Hour)
	require.NoError(t, s.UpsertRepo(ctx, &snap))

	projects, err := s.ListProjects(ctx, ProjectListOpts{})
	require.NoError(t, err)
	assert.Empty(t, projects, "score for an old update time does not join")

	require.NoError(t, s.UpsertScore(ctx, snap.ID, snap.UpdatedAt, scoring.Bundle{Priority: 6}))
	projects, err = s.ListProjects(ctx, ProjectListOpts{})
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestInsightRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := testSnapshot(1, "pipeline")
	require.NoError(t, s.UpsertRepo(ctx, &snap))

	ins := &insight.Insight{
		Summary:    "A dependable data pipeline",
		Highlights: []string{"Built with Go", "42 GitHub stars"},
	}
	require.NoError(t, s.UpsertInsight(ctx, snap.ID, "technical", ins, true))

	got, err := s.GetInsight(ctx, snap.ID, "technical")
	require.NoError(t, err)
	assert.Equal(t, ins.Summary, got.Summary)
	assert.Equal(t, ins.Highlights, got.Highlights)
	assert.True(t, got.Fallback)

	_, err = s.GetInsight(ctx, snap.ID, "hr")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first := []feed.Post{
		{ID: "blog:1", FeedName: "blog", Title: "Old", PublishedAt: now.Add(-time.Hour), FetchedAt: now},
		{ID: "blog:2", FeedName: "blog", Title: "New", PublishedAt: now, FetchedAt: now},
	}
	require.NoError(t, s.ReplacePosts(ctx, first))

	posts, err := s.ListPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "New", posts[0].Title, "newest first")

	// Replace drops posts that disappeared upstream.
	require.NoError(t, s.ReplacePosts(ctx, first[1:]))
	posts, err = s.ListPosts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "technical")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "technical", sess.VisitorType)
	assert.Equal(t, 1, sess.Visits)

	touched, err := s.TouchSession(ctx, sess.ID, "business")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, touched.ID)
	assert.Equal(t, "business", touched.VisitorType)
	assert.Equal(t, 2, touched.Visits)

	_, err = s.TouchSession(ctx, "missing", "hr")
	assert.ErrorIs(t, err, ErrNotFound)
}
