package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/linqiu/gitfolio/pkg/feed"
	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/insight"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Project is a repository snapshot joined with its score bundle.
type Project struct {
	github.Snapshot
	scoring.Bundle
	TagsJSON   string    `json:"-" db:"score_tags"`
	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}

// StoredInsight is a cached insight row for one (repo, visitor type) pair.
type StoredInsight struct {
	RepoID         int64     `json:"repo_id" db:"repo_id"`
	VisitorType    string    `json:"visitor_type" db:"visitor_type"`
	Summary        string    `json:"summary" db:"summary"`
	Highlights     []string  `json:"highlights" db:"-"`
	HighlightsJSON string    `json:"-" db:"highlights"`
	Fallback       bool      `json:"fallback" db:"fallback"`
	GeneratedAt    time.Time `json:"generated_at" db:"generated_at"`
}

// Session tracks one visitor's type choice across visits.
type Session struct {
	ID          string    `json:"id" db:"id"`
	VisitorType string    `json:"visitor_type" db:"visitor_type"`
	FirstSeen   time.Time `json:"first_seen" db:"first_seen"`
	LastSeen    time.Time `json:"last_seen" db:"last_seen"`
	Visits      int       `json:"visits" db:"visits"`
}

// ProjectListOpts controls project listing.
type ProjectListOpts struct {
	Category scoring.Category
	Limit    int
}

// Store is the persistence interface.
type Store interface {
	UpsertRepo(ctx context.Context, snap *github.Snapshot) error
	UpsertRepos(ctx context.Context, snaps []github.Snapshot) error
	ListRepos(ctx context.Context) ([]github.Snapshot, error)

	UpsertScore(ctx context.Context, repoID int64, updatedAt time.Time, b scoring.Bundle) error
	ListProjects(ctx context.Context, opts ProjectListOpts) ([]Project, error)
	GetProject(ctx context.Context, name string) (*Project, error)
	CountProjectsByCategory(ctx context.Context) (map[scoring.Category]int, error)

	UpsertInsight(ctx context.Context, repoID int64, visitorType string, ins *insight.Insight, fallback bool) error
	GetInsight(ctx context.Context, repoID int64, visitorType string) (*StoredInsight, error)

	ReplacePosts(ctx context.Context, posts []feed.Post) error
	ListPosts(ctx context.Context, limit int) ([]feed.Post, error)

	CreateSession(ctx context.Context, visitorType string) (*Session, error)
	TouchSession(ctx context.Context, id, visitorType string) (*Session, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertRepo(ctx context.Context, snap *github.Snapshot) error {
	topicsJSON, _ := json.Marshal(snap.Topics)
	languagesJSON, _ := json.Marshal(snap.Languages)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repos (id, name, full_name, description, url, language, size_kb, stars, forks, open_issues, topics, has_wiki, fork, languages, contributors, created_at, updated_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			language = excluded.language,
			size_kb = excluded.size_kb,
			stars = excluded.stars,
			forks = excluded.forks,
			open_issues = excluded.open_issues,
			topics = excluded.topics,
			has_wiki = excluded.has_wiki,
			languages = excluded.languages,
			contributors = excluded.contributors,
			updated_at = excluded.updated_at,
			fetched_at = excluded.fetched_at
	`, snap.ID, snap.Name, snap.FullName, snap.Description, snap.URL, snap.Language,
		snap.SizeKB, snap.Stars, snap.Forks, snap.OpenIssues, string(topicsJSON),
		snap.HasWiki, snap.Fork, string(languagesJSON), snap.Contributors,
		snap.CreatedAt, snap.UpdatedAt, snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert repo %s: %w", snap.FullName, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertRepos(ctx context.Context, snaps []github.Snapshot) error {
	for i := range snaps {
		if err := s.UpsertRepo(ctx, &snaps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListRepos(ctx context.Context) ([]github.Snapshot, error) {
	var snaps []github.Snapshot
	err := s.db.SelectContext(ctx, &snaps, "SELECT * FROM repos ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	for i := range snaps {
		unmarshalSnapshotJSON(&snaps[i])
	}
	return snaps, nil
}

func (s *SQLiteStore) UpsertScore(ctx context.Context, repoID int64, updatedAt time.Time, b scoring.Bundle) error {
	tagsJSON, _ := json.Marshal(b.Tags)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (repo_id, repo_updated_at, complexity, maintainability, scalability, innovation, priority, category, tier, tags, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, repo_updated_at) DO UPDATE SET
			complexity = excluded.complexity,
			maintainability = excluded.maintainability,
			scalability = excluded.scalability,
			innovation = excluded.innovation,
			priority = excluded.priority,
			category = excluded.category,
			tier = excluded.tier,
			tags = excluded.tags,
			computed_at = excluded.computed_at
	`, repoID, updatedAt, b.Complexity, b.Maintainability, b.Scalability,
		b.Innovation, b.Priority, b.Category, b.Tier, string(tagsJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert score %d: %w", repoID, err)
	}
	return nil
}

const projectColumns = `
	r.id, r.name, r.full_name, r.description, r.url, r.language, r.size_kb,
	r.stars, r.forks, r.open_issues, r.topics, r.has_wiki, r.fork,
	r.languages, r.contributors, r.created_at, r.updated_at, r.fetched_at,
	s.complexity, s.maintainability, s.scalability, s.innovation, s.priority,
	s.category, s.tier, s.tags AS score_tags, s.computed_at`

func (s *SQLiteStore) ListProjects(ctx context.Context, opts ProjectListOpts) ([]Project, error) {
	query := "SELECT " + projectColumns + `
		FROM repos r
		JOIN scores s ON s.repo_id = r.id AND s.repo_updated_at = r.updated_at
		WHERE 1=1`
	var args []any

	if opts.Category != "" {
		query += " AND s.category = ?"
		args = append(args, opts.Category)
	}

	query += " ORDER BY s.priority DESC, r.stars DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var projects []Project
	if err := s.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	for i := range projects {
		unmarshalProjectJSON(&projects[i])
	}
	return projects, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, name string) (*Project, error) {
	var p Project
	err := s.db.GetContext(ctx, &p, "SELECT "+projectColumns+`
		FROM repos r
		JOIN scores s ON s.repo_id = r.id AND s.repo_updated_at = r.updated_at
		WHERE r.name = ? OR r.full_name = ?`, name, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	unmarshalProjectJSON(&p)
	return &p, nil
}

func (s *SQLiteStore) CountProjectsByCategory(ctx context.Context) (map[scoring.Category]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT category, COUNT(*) AS cnt FROM scores GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count projects by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[scoring.Category]int)
	for rows.Next() {
		var category string
		var cnt int
		if err := rows.Scan(&category, &cnt); err != nil {
			return nil, err
		}
		counts[scoring.Category(category)] = cnt
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) UpsertInsight(ctx context.Context, repoID int64, visitorType string, ins *insight.Insight, fallback bool) error {
	highlightsJSON, _ := json.Marshal(ins.Highlights)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (repo_id, visitor_type, summary, highlights, fallback, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, visitor_type) DO UPDATE SET
			summary = excluded.summary,
			highlights = excluded.highlights,
			fallback = excluded.fallback,
			generated_at = excluded.generated_at
	`, repoID, visitorType, ins.Summary, string(highlightsJSON), fallback, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert insight %d/%s: %w", repoID, visitorType, err)
	}
	return nil
}

func (s *SQLiteStore) GetInsight(ctx context.Context, repoID int64, visitorType string) (*StoredInsight, error) {
	var ins StoredInsight
	err := s.db.GetContext(ctx, &ins,
		"SELECT * FROM insights WHERE repo_id = ? AND visitor_type = ?", repoID, visitorType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get insight %d/%s: %w", repoID, visitorType, err)
	}
	json.Unmarshal([]byte(ins.HighlightsJSON), &ins.Highlights)
	return &ins, nil
}

func (s *SQLiteStore) ReplacePosts(ctx context.Context, posts []feed.Post) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin posts tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	for _, p := range posts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (id, feed_name, title, url, summary, published_at, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, p.ID, p.FeedName, p.Title, p.URL, p.Summary, p.PublishedAt, p.FetchedAt)
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListPosts(ctx context.Context, limit int) ([]feed.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	var posts []feed.Post
	err := s.db.SelectContext(ctx, &posts,
		"SELECT * FROM posts ORDER BY published_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context, visitorType string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:          uuid.NewString(),
		VisitorType: visitorType,
		FirstSeen:   now,
		LastSeen:    now,
		Visits:      1,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, visitor_type, first_seen, last_seen, visits)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.VisitorType, sess.FirstSeen, sess.LastSeen, sess.Visits)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) TouchSession(ctx context.Context, id, visitorType string) (*Session, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET visitor_type = ?, last_seen = ?, visits = visits + 1
		WHERE id = ?
	`, visitorType, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("touch session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	var sess Session
	if err := s.db.GetContext(ctx, &sess, "SELECT * FROM sessions WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &sess, nil
}

func unmarshalSnapshotJSON(snap *github.Snapshot) {
	json.Unmarshal([]byte(snap.TopicsJSON), &snap.Topics)
	json.Unmarshal([]byte(snap.LanguagesJSON), &snap.Languages)
	if snap.Topics == nil {
		snap.Topics = []string{}
	}
}

func unmarshalProjectJSON(p *Project) {
	unmarshalSnapshotJSON(&p.Snapshot)
	json.Unmarshal([]byte(p.TagsJSON), &p.Tags)
}
