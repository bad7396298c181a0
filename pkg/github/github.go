package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://api.github.com"

// Snapshot is an immutable point-in-time record of a repository's
// externally observable attributes. It is the only input contract of the
// scoring engine; the client substitutes safe defaults (empty topics,
// empty description) when upstream data is missing.
type Snapshot struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	FullName    string    `json:"full_name" db:"full_name"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url" db:"url"`
	Language    string    `json:"language" db:"language"`
	SizeKB      int       `json:"size_kb" db:"size_kb"`
	Stars       int       `json:"stars" db:"stars"`
	Forks       int       `json:"forks" db:"forks"`
	OpenIssues  int       `json:"open_issues" db:"open_issues"`
	Topics      []string  `json:"topics" db:"-"`
	HasWiki     bool      `json:"has_wiki" db:"has_wiki"`
	Fork        bool      `json:"fork" db:"fork"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	FetchedAt   time.Time `json:"fetched_at" db:"fetched_at"`

	// Optional enrichment, filled by FetchAll when enabled.
	Languages    map[string]int64 `json:"languages,omitempty" db:"-"`
	Contributors int              `json:"contributors" db:"contributors"`

	TopicsJSON    string `json:"-" db:"topics"`
	LanguagesJSON string `json:"-" db:"languages"`
}

// Client fetches a user's repositories from the GitHub REST API.
type Client struct {
	client   *http.Client
	baseURL  string
	token    string
	username string
}

// NewClient creates a GitHub client for the given account. Token is optional
// (unauthenticated requests share GitHub's lower rate limit).
func NewClient(username, token string) *Client {
	return &Client{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  defaultBaseURL,
		token:    token,
		username: username,
	}
}

// Username returns the account this client fetches.
func (c *Client) Username() string { return c.username }

// ListRepos fetches the account's public repositories, most recently pushed
// first. Forked repositories are skipped.
func (c *Client) ListRepos(ctx context.Context) ([]Snapshot, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	params.Set("sort", "updated")
	params.Set("type", "owner")

	reqURL := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, c.username, params.Encode())

	var repos []ghRepo
	if err := c.getJSON(ctx, reqURL, &repos); err != nil {
		return nil, fmt.Errorf("list repos for %s: %w", c.username, err)
	}

	now := time.Now().UTC()
	var snaps []Snapshot
	for _, r := range repos {
		if r.Fork {
			continue
		}
		topics := r.Topics
		if topics == nil {
			topics = []string{}
		}
		snaps = append(snaps, Snapshot{
			ID:          r.ID,
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			URL:         r.HTMLURL,
			Language:    r.Language,
			SizeKB:      r.Size,
			Stars:       r.Stars,
			Forks:       r.Forks,
			OpenIssues:  r.OpenIssues,
			Topics:      topics,
			HasWiki:     r.HasWiki,
			Fork:        r.Fork,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.PushedAt,
			FetchedAt:   now,
		})
	}
	return snaps, nil
}

// FetchAll lists the account's repositories and enriches each with its
// language byte counts and contributor count. Enrichment runs with bounded
// concurrency; a failed enrichment leaves the snapshot usable as-is.
func (c *Client) FetchAll(ctx context.Context) ([]Snapshot, error) {
	snaps, err := c.ListRepos(ctx)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for i := range snaps {
		i := i
		g.Go(func() error {
			if langs, err := c.fetchLanguages(gCtx, snaps[i].FullName); err == nil {
				snaps[i].Languages = langs
			}
			if n, err := c.fetchContributorCount(gCtx, snaps[i].FullName); err == nil {
				snaps[i].Contributors = n
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

func (c *Client) fetchLanguages(ctx context.Context, fullName string) (map[string]int64, error) {
	var langs map[string]int64
	reqURL := fmt.Sprintf("%s/repos/%s/languages", c.baseURL, fullName)
	if err := c.getJSON(ctx, reqURL, &langs); err != nil {
		return nil, fmt.Errorf("fetch languages %s: %w", fullName, err)
	}
	return langs, nil
}

func (c *Client) fetchContributorCount(ctx context.Context, fullName string) (int, error) {
	var contributors []struct {
		Login string `json:"login"`
	}
	reqURL := fmt.Sprintf("%s/repos/%s/contributors?per_page=100", c.baseURL, fullName)
	if err := c.getJSON(ctx, reqURL, &contributors); err != nil {
		return 0, fmt.Errorf("fetch contributors %s: %w", fullName, err)
	}
	return len(contributors), nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github API status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type ghRepo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Size        int       `json:"size"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	OpenIssues  int       `json:"open_issues_count"`
	Topics      []string  `json:"topics"`
	HasWiki     bool      `json:"has_wiki"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	PushedAt    time.Time `json:"pushed_at"`
}
