package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linqiu/gitfolio/internal/store"
	"github.com/linqiu/gitfolio/pkg/persona"
	"github.com/linqiu/gitfolio/pkg/portfolio"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

// Server provides the HTTP API.
type Server struct {
	store    store.Store
	engine   *portfolio.Engine
	gatherer prometheus.Gatherer // nil disables /metrics
	port     int
}

// New creates a new HTTP server.
func New(s store.Store, engine *portfolio.Engine, gatherer prometheus.Gatherer, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:    s,
		engine:   engine,
		gatherer: gatherer,
		port:     port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("gitfolio server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the API routes. Split from ListenAndServe for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/projects", s.handleProjects)
	mux.HandleFunc("/api/v1/projects/", s.handleProject)
	mux.HandleFunc("/api/v1/profiles", s.handleProfiles)
	mux.HandleFunc("/api/v1/categories", s.handleCategories)
	mux.HandleFunc("/api/v1/posts", s.handlePosts)
	mux.HandleFunc("/api/v1/sessions", s.handleSessions)
	mux.HandleFunc("/api/v1/sync", s.handleSync)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.ProjectListOpts{Limit: 50}
	if c := r.URL.Query().Get("category"); c != "" {
		opts.Category = scoring.Category(c)
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	projects, err := s.store.ListProjects(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	profile := persona.Select(r.URL.Query().Get("visitor"))
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    projects,
		"count":   len(projects),
		"profile": profile,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/projects/")
	if name == "" {
		s.handleProjects(w, r)
		return
	}

	project, err := s.store.GetProject(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "project not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	profile := persona.Select(r.URL.Query().Get("visitor"))
	ins, err := s.engine.InsightFor(r.Context(), project, string(profile.Type))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":    project,
		"insight": ins,
		"profile": profile,
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	profiles := persona.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  profiles,
		"count": len(profiles),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	counts, err := s.store.CountProjectsByCategory(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type categoryInfo struct {
		Name     scoring.Category `json:"name"`
		Projects int              `json:"projects"`
	}

	var infos []categoryInfo
	for _, c := range scoring.AllCategories() {
		if n := counts[c]; n > 0 {
			infos = append(infos, categoryInfo{Name: c, Projects: n})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	posts, err := s.store.ListPosts(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  posts,
		"count": len(posts),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID   string `json:"session_id"`
		VisitorType string `json:"visitor_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	profile := persona.Select(req.VisitorType)

	var (
		sess *store.Session
		err  error
	)
	if req.SessionID != "" {
		sess, err = s.store.TouchSession(r.Context(), req.SessionID, string(profile.Type))
		if errors.Is(err, store.ErrNotFound) {
			sess, err = s.store.CreateSession(r.Context(), string(profile.Type))
		}
	} else {
		sess, err = s.store.CreateSession(r.Context(), string(profile.Type))
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"profile": profile,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	result, err := s.engine.Sync(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
