package store

const schema = `
CREATE TABLE IF NOT EXISTS repos (
    id           INTEGER PRIMARY KEY,
    name         TEXT NOT NULL,
    full_name    TEXT NOT NULL UNIQUE,
    description  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    language     TEXT NOT NULL DEFAULT '',
    size_kb      INTEGER NOT NULL DEFAULT 0,
    stars        INTEGER NOT NULL DEFAULT 0,
    forks        INTEGER NOT NULL DEFAULT 0,
    open_issues  INTEGER NOT NULL DEFAULT 0,
    topics       TEXT NOT NULL DEFAULT '[]',
    has_wiki     BOOLEAN NOT NULL DEFAULT 0,
    fork         BOOLEAN NOT NULL DEFAULT 0,
    languages    TEXT NOT NULL DEFAULT '{}',
    contributors INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL,
    fetched_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_repos_name ON repos(name);
CREATE INDEX IF NOT EXISTS idx_repos_updated_at ON repos(updated_at);

CREATE TABLE IF NOT EXISTS scores (
    repo_id         INTEGER NOT NULL REFERENCES repos(id),
    repo_updated_at DATETIME NOT NULL,
    complexity      INTEGER NOT NULL,
    maintainability INTEGER NOT NULL,
    scalability     INTEGER NOT NULL,
    innovation      INTEGER NOT NULL,
    priority        INTEGER NOT NULL,
    category        TEXT NOT NULL,
    tier            TEXT NOT NULL,
    tags            TEXT NOT NULL DEFAULT '[]',
    computed_at     DATETIME NOT NULL,
    PRIMARY KEY (repo_id, repo_updated_at)
);

CREATE INDEX IF NOT EXISTS idx_scores_priority ON scores(priority);
CREATE INDEX IF NOT EXISTS idx_scores_category ON scores(category);

CREATE TABLE IF NOT EXISTS insights (
    repo_id      INTEGER NOT NULL REFERENCES repos(id),
    visitor_type TEXT NOT NULL,
    summary      TEXT NOT NULL,
    highlights   TEXT NOT NULL DEFAULT '[]',
    fallback     BOOLEAN NOT NULL DEFAULT 0,
    generated_at DATETIME NOT NULL,
    PRIMARY KEY (repo_id, visitor_type)
);

CREATE TABLE IF NOT EXISTS posts (
    id           TEXT PRIMARY KEY,
    feed_name    TEXT NOT NULL,
    title        TEXT NOT NULL,
    url          TEXT NOT NULL DEFAULT '',
    summary      TEXT NOT NULL DEFAULT '',
    published_at DATETIME NOT NULL,
    fetched_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at);

CREATE TABLE IF NOT EXISTS sessions (
    id           TEXT PRIMARY KEY,
    visitor_type TEXT NOT NULL,
    first_seen   DATETIME NOT NULL,
    last_seen    DATETIME NOT NULL,
    visits       INTEGER NOT NULL DEFAULT 1
);
`
