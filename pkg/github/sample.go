package github

import "time"

// SampleRepos returns a fixed set of snapshots used when the GitHub API is
// unreachable or rate-limited, so the rest of the pipeline always has valid
// input to work with.
func SampleRepos() []Snapshot {
	now := time.Now().UTC()
	return []Snapshot{
		{
			ID:          1,
			Name:        "portfolio-engine",
			FullName:    "sample/portfolio-engine",
			Description: "Interactive 3D portfolio with AI-assisted project analysis",
			URL:         "https://github.com/sample/portfolio-engine",
			Language:    "TypeScript",
			SizeKB:      24000,
			Stars:       128,
			Forks:       14,
			OpenIssues:  3,
			Topics:      []string{"web", "react", "ai", "portfolio"},
			HasWiki:     true,
			CreatedAt:   now.AddDate(-1, 0, 0),
			UpdatedAt:   now.AddDate(0, 0, -2),
			FetchedAt:   now,
		},
		{
			ID:          2,
			Name:        "trade-pipeline",
			FullName:    "sample/trade-pipeline",
			Description: "High-throughput market data pipeline with pluggable sinks",
			URL:         "https://github.com/sample/trade-pipeline",
			Language:    "Go",
			SizeKB:      61000,
			Stars:       342,
			Forks:       41,
			OpenIssues:  12,
			Topics:      []string{"performance", "concurrency", "microservices", "api"},
			HasWiki:     false,
			CreatedAt:   now.AddDate(-2, 0, 0),
			UpdatedAt:   now.AddDate(0, 0, -10),
			FetchedAt:   now,
		},
		{
			ID:          3,
			Name:        "sentiment-lab",
			FullName:    "sample/sentiment-lab",
			Description: "Notebooks and models for multilingual sentiment analysis",
			URL:         "https://github.com/sample/sentiment-lab",
			Language:    "Python",
			SizeKB:      15000,
			Stars:       150,
			Forks:       20,
			OpenIssues:  3,
			Topics:      []string{"ai", "ml"},
			HasWiki:     false,
			CreatedAt:   now.AddDate(-1, -6, 0),
			UpdatedAt:   now.AddDate(0, 0, -2),
			FetchedAt:   now,
		},
		{
			ID:          4,
			Name:        "dotfiles",
			FullName:    "sample/dotfiles",
			Description: "",
			URL:         "https://github.com/sample/dotfiles",
			Language:    "Shell",
			SizeKB:      300,
			Stars:       2,
			Forks:       0,
			OpenIssues:  0,
			Topics:      []string{},
			HasWiki:     false,
			CreatedAt:   now.AddDate(-3, 0, 0),
			UpdatedAt:   now.AddDate(0, -8, 0),
			FetchedAt:   now,
		},
	}
}
