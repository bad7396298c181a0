package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linqiu/gitfolio/internal/store"
	"github.com/linqiu/gitfolio/pkg/github"
	"github.com/linqiu/gitfolio/pkg/portfolio"
	"github.com/linqiu/gitfolio/pkg/scoring"
)

type stubSource struct {
	snaps []github.Snapshot
	err   error
}

func (s *stubSource) Username() string { return "alice" }

func (s *stubSource) ListRepos(ctx context.Context) ([]github.Snapshot, error) {
	return s.snaps, s.err
}

func (s *stubSource) FetchAll(ctx context.Context) ([]github.Snapshot, error) {
	return s.snaps, s.err
}

func newTestServer(t *testing.T, src portfolio.RepoSource) (*httptest.Server, store.Store) {
	t.Helper()

	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := portfolio.NewEngine(db, src, scoring.NewCache(), nil, nil, false)
	srv := httptest.NewServer(New(db, engine, nil, 0).Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func seededServer(t *testing.T) *httptest.Server {
	t.Helper()

	now := time.Now().UTC()
	src := &stubSource{snaps: []github.Snapshot{
		{
			ID: 1, Name: "pipeline", FullName: "alice/pipeline",
			Description: "An API server", Language: "Go", SizeKB: 2000,
			Stars: 250, Forks: 20, Topics: []string{"api"},
			CreatedAt: now.AddDate(-1, 0, 0), UpdatedAt: now.AddDate(0, 0, -1), FetchedAt: now,
		},
		{
			ID: 2, Name: "notes", FullName: "alice/notes",
			Language: "Markdown", SizeKB: 10,
			CreatedAt: now.AddDate(-2, 0, 0), UpdatedAt: now.AddDate(0, -6, 0), FetchedAt: now,
		},
	}}

	srv, _ := newTestServer(t, src)
	resp, err := http.Post(srv.URL+"/api/v1/sync", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSyncAndListProjects(t *testing.T) {
	srv := seededServer(t)

	var body struct {
		Data    []store.Project `json:"data"`
		Count   int             `json:"count"`
		Profile struct {
			Type string `json:"type"`
		} `json:"profile"`
	}
	status := getJSON(t, srv.URL+"/api/v1/projects", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "general", body.Profile.Type, "no visitor tag falls back to general")
	assert.Equal(t, "pipeline", body.Data[0].Name, "highest priority first")

	status = getJSON(t, srv.URL+"/api/v1/projects?visitor=technical&limit=1", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "technical", body.Profile.Type)

	status = getJSON(t, srv.URL+"/api/v1/projects?category=backend", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, scoring.CategoryBackend, body.Data[0].Category)
}

func TestSyncFallsBackToSamples(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{err: errors.New("github down")})

	resp, err := http.Post(srv.URL+"/api/v1/sync", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result portfolio.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Sampled)
	assert.Equal(t, len(github.SampleRepos()), result.Repos)
}

func TestProjectDetail(t *testing.T) {
	srv := seededServer(t)

	var body struct {
		Data    store.Project `json:"data"`
		Insight struct {
			VisitorType string   `json:"visitor_type"`
			Summary     string   `json:"summary"`
			Highlights  []string `json:"highlights"`
			Fallback    bool     `json:"fallback"`
		} `json:"insight"`
	}
	status := getJSON(t, srv.URL+"/api/v1/projects/pipeline?visitor=hr", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice/pipeline", body.Data.FullName)
	assert.Equal(t, "hr", body.Insight.VisitorType)
	assert.True(t, body.Insight.Fallback, "no generator configured")
	assert.NotEmpty(t, body.Insight.Summary)
	assert.NotEmpty(t, body.Insight.Highlights)
}

func TestProjectNotFound(t *testing.T) {
	srv := seededServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/api/v1/projects/missing", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "not found")
}

func TestProfiles(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})

	var body struct {
		Count int `json:"count"`
		Data  []struct {
			Type string `json:"type"`
		} `json:"data"`
	}
	status := getJSON(t, srv.URL+"/api/v1/profiles", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, body.Count)
}

func TestCategories(t *testing.T) {
	srv := seededServer(t)

	var body struct {
		Data []struct {
			Name     string `json:"name"`
			Projects int    `json:"projects"`
		} `json:"data"`
	}
	status := getJSON(t, srv.URL+"/api/v1/categories", &body)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Data)
	total := 0
	for _, c := range body.Data {
		assert.Positive(t, c.Projects)
		total += c.Projects
	}
	assert.Equal(t, 2, total)
}

func TestSessions(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})

	post := func(payload map[string]string) (int, map[string]json.RawMessage) {
		t.Helper()
		buf, _ := json.Marshal(payload)
		resp, err := http.Post(srv.URL+"/api/v1/sessions", "application/json", bytes.NewReader(buf))
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	status, body := post(map[string]string{"visitor_type": "business"})
	require.Equal(t, http.StatusOK, status)

	var sess store.Session
	require.NoError(t, json.Unmarshal(body["session"], &sess))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "business", sess.VisitorType)
	assert.Equal(t, 1, sess.Visits)

	// Returning visitor keeps the session, switches type.
	status, body = post(map[string]string{"session_id": sess.ID, "visitor_type": "technical"})
	require.Equal(t, http.StatusOK, status)
	var touched store.Session
	require.NoError(t, json.Unmarshal(body["session"], &touched))
	assert.Equal(t, sess.ID, touched.ID)
	assert.Equal(t, "technical", touched.VisitorType)
	assert.Equal(t, 2, touched.Visits)

	// Unknown session ids get a fresh session instead of an error.
	status, body = post(map[string]string{"session_id": "expired", "visitor_type": "hr"})
	require.Equal(t, http.StatusOK, status)
	var fresh store.Session
	require.NoError(t, json.Unmarshal(body["session"], &fresh))
	assert.NotEqual(t, "expired", fresh.ID)

	// Unrecognized visitor types are stored as general.
	status, body = post(map[string]string{"visitor_type": "HR"})
	require.Equal(t, http.StatusOK, status)
	var general store.Session
	require.NoError(t, json.Unmarshal(body["session"], &general))
	assert.Equal(t, "general", general.VisitorType)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := seededServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/projects", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/api/v1/sync")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
}
