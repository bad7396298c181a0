package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/linqiu/gitfolio/internal/config"
	"github.com/linqiu/gitfolio/internal/metrics"
	"github.com/linqiu/gitfolio/internal/scheduler"
	"github.com/linqiu/gitfolio/internal/store"
	"github.com/linqiu/gitfolio/pkg/feed"
	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/insight"
	"github.com/linqiu/gitfolio/pkg/persona"
	"github.com/linqiu/gitfolio/pkg/portfolio"
	"github.com/linqiu/gitfolio/pkg/scoring"
	"github.com/linqiu/gitfolio/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildGenerator(cfg *config.Config) *insight.Generator {
	if !cfg.Insight.Enabled || cfg.Insight.APIKey == "" {
		return nil
	}
	fmt.Fprintf(os.Stderr, "insight generator: %s\n", cfg.Insight.Model)
	return insight.NewGenerator(cfg.Insight.BaseURL, cfg.Insight.APIKey, cfg.Insight.Model)
}

func buildFetcher(cfg *config.Config) *feed.Fetcher {
	if !cfg.Feeds.Enabled || len(cfg.Feeds.Feeds) == 0 {
		return nil
	}
	feeds := make([]feed.Feed, len(cfg.Feeds.Feeds))
	for i, f := range cfg.Feeds.Feeds {
		feeds[i] = feed.Feed{Name: f.Name, URL: f.URL}
	}
	return feed.NewFetcher(feeds, cfg.Feeds.Limit)
}

func buildEngine(cfg *config.Config, db store.Store, m *metrics.Metrics) *portfolio.Engine {
	client := github.NewClient(cfg.GitHub.Username, cfg.GitHub.Token)
	gen := buildGenerator(cfg)
	return portfolio.NewEngine(db, client, scoring.NewCache(), gen, m, cfg.GitHub.Enrich)
}

func runSync() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	engine := buildEngine(cfg, db, nil)

	ctx := context.Background()
	fmt.Fprintf(os.Stderr, "syncing repositories for %s...\n", cfg.GitHub.Username)
	result, err := engine.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if result.Sampled {
		fmt.Fprintln(os.Stderr, "  github unreachable, stored sample data")
	}
	fmt.Fprintf(os.Stderr, "  scored %d repositories\n", result.Repos)

	if fetcher := buildFetcher(cfg); fetcher != nil {
		n, err := engine.RefreshFeeds(ctx, fetcher)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  feed error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "  fetched %d blog posts\n", n)
		}
	}
	return nil
}

func runProjects(jsonOutput bool, category string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	projects, err := db.ListProjects(context.Background(), store.ProjectListOpts{
		Category: scoring.Category(category),
		Limit:    limit,
	})
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	if len(projects) == 0 {
		fmt.Println("no projects found (try syncing first: gitfolio sync)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tCOMPLEXITY\tCATEGORY\tTIER\tSTARS\tNAME")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%s\n",
			p.Priority, p.Complexity, p.Category, p.Tier, p.Stars, p.Name)
	}
	return w.Flush()
}

func runProfiles() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tTONE\tFOCUS")
	for _, p := range persona.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.Type, p.Label, p.Tone, strings.Join(p.FocusAreas, ", "))
	}
	return w.Flush()
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	engine := buildEngine(cfg, db, m)

	srv := server.New(db, engine, registry, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	engine := buildEngine(cfg, db, m)
	fetcher := buildFetcher(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(engine, fetcher,
		cfg.Schedule.ParseSyncInterval(),
		cfg.Schedule.ParseFeedInterval(),
	)

	// Start scheduler in background.
	go sched.Run(ctx)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	srv := server.New(db, engine, registry, port)
	return srv.ListenAndServe()
}
