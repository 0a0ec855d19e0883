package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-platform/backend/analyzer"
	"github.com/geo-platform/backend/config"
	"github.com/geo-platform/backend/keywords"
	"github.com/geo-platform/backend/logging"
	"github.com/geo-platform/backend/stats"
	"github.com/geo-platform/backend/visibility"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// citedArticle scores 50: five citations, schema markup, a single h1 and 1600 words.
var citedArticle = `<html><head><script type="application/ld+json">{"name":"x"}</script></head><body>` +
	`<h1>One</h1><p>[1] [2] [3] [4] [5]</p><p>` + strings.Repeat("lorem ", 1600) + `</p></body></html>`

type testEnv struct {
	router   http.Handler
	cfg      *config.Config
	usage    *stats.Storage
	upstream *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, citedArticle)
		}
	}))
	t.Cleanup(upstream.Close)

	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.BlogDir = filepath.Join(root, "blog-data")
	cfg.Content.DataDir = filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(cfg.Content.DataDir, 0o755))

	logger := logging.Discard()
	usage, err := stats.NewStorage(filepath.Join(root, "stats"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { usage.Shutdown() })

	a, err := analyzer.New(context.Background(), analyzer.Options{
		Fetch:  analyzer.FetchOptions{Timeout: 2 * time.Second},
		Stats:  usage,
		Logger: logger,
	})
	require.NoError(t, err)

	store, err := visibility.OpenStore(context.Background(), "sqlite", filepath.Join(root, "visibility.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	statistics, err := logging.NewStatistics(filepath.Join(root, "statistics.json"), true)
	require.NoError(t, err)

	srv := NewServer(Deps{
		Config:     &cfg,
		Analyzer:   a,
		Tracker:    visibility.NewTracker(visibility.Options{Analyzer: a, Store: store, Stats: usage, Logger: logger}),
		Keywords:   keywords.NewResearcher(keywords.Options{Logger: logger}),
		Statistics: statistics,
		Usage:      usage,
		Logger:     logger,
	})
	srv.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return &testEnv{router: srv.Router(), cfg: &cfg, usage: usage, upstream: upstream}
}

func (e *testEnv) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) writeFile(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func (e *testEnv) writePost(t *testing.T, slug string, published time.Time) {
	e.writeFile(t, filepath.Join(e.cfg.Content.BlogDir, slug+".json"), map[string]any{
		"slug":        slug,
		"title":       "Post " + slug,
		"description": "About " + slug,
		"content":     "<p>Body of " + slug + "</p>",
		"publishedAt": published.Format(time.RFC3339),
		"author":      map[string]string{"name": "GEO Team"},
		"tags":        []string{"geo"},
	})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnalysisRoutesRequireInput(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		method, path string
		body         any
		want         string
	}{
		{http.MethodPost, "/api/geo-audit", map[string]string{}, "URL is required"},
		{http.MethodPost, "/api/analyze-website", nil, "URL is required"},
		{http.MethodPost, "/api/visibility-tracker", map[string]string{"domain": ""}, "Domain is required"},
		{http.MethodGet, "/api/visibility-tracker", nil, "Domain parameter required"},
		{http.MethodPost, "/api/keywords", map[string]string{}, "Keyword is required"},
	}
	for _, c := range cases {
		t.Run(c.method+c.path, func(t *testing.T) {
			w := env.do(c.method, c.path, c.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, c.want, decode(t, w)["error"])
		})
	}
}

func TestAnalyzeWebsite(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/analyze-website", map[string]string{"url": env.upstream.URL + "/post"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got analyzer.WebsiteAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 50, got.GeoScore)
	assert.Equal(t, analyzer.AIVisibility{Perplexity: 65, ChatGPT: 50, Claude: 50, Gemini: 60}, got.AIVisibility)
	assert.Equal(t, 1, env.usage.GetCurrentStats().Get(stats.WebsiteAnalyses))

	w = env.do(http.MethodPost, "/api/analyze-website", map[string]string{"url": env.upstream.URL + "/down"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to analyze website", body["error"])
	assert.Equal(t, "Failed to fetch website: 503", body["details"])
}

func TestGeoAudit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/geo-audit", map[string]string{"url": env.upstream.URL + "/post"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Len(t, body["results"], 4)
	assert.Contains(t, body, "overallScore")
	assert.Contains(t, body, "summary")

	w = env.do(http.MethodPost, "/api/geo-audit", map[string]string{"url": env.upstream.URL + "/missing"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Failed to analyze URL", body["error"])
	assert.Equal(t, "Failed to fetch URL: 404", body["details"])
}

func TestVisibilityTracker(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/visibility-tracker?domain="+env.upstream.URL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.Equal(t, false, status["isTracking"])
	assert.Nil(t, status["lastChecked"])

	w = env.do(http.MethodPost, "/api/visibility-tracker", map[string]string{"domain": env.upstream.URL})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Equal(t, visibility.StatusEstimated, result["status"])
	data := result["data"].(map[string]any)
	assert.Len(t, data["platforms"], 5)
	assert.Len(t, data["topQueries"], 5)

	w = env.do(http.MethodGet, "/api/visibility-tracker?domain="+env.upstream.URL, nil)
	status = decode(t, w)
	assert.Equal(t, true, status["isTracking"])
	assert.Equal(t, float64(50), status["lastScore"])

	w = env.do(http.MethodPost, "/api/visibility-tracker", map[string]string{"domain": "nodots"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKeywords(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/keywords", map[string]string{"keyword": "geo"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Keywords []keywords.Keyword `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Keywords, 8)
	assert.Equal(t, "how to geo for beginners", body.Keywords[0].Keyword)
	assert.Equal(t, 1, env.usage.GetCurrentStats().Get(stats.KeywordLookups))
}

func TestFeedRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/feed.xml", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No blog posts found", w.Body.String())

	w = env.do(http.MethodGet, "/news-sitemap.xml", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.writePost(t, "older", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	env.writePost(t, "newer", time.Date(2025, 5, 31, 20, 0, 0, 0, time.UTC))

	w = env.do(http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600, s-maxage=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	feed := w.Body.String()
	assert.Less(t, strings.Index(feed, "/newer</link>"), strings.Index(feed, "/older</link>"))

	w = env.do(http.MethodGet, "/news-sitemap.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(w.Body.String(), "<news:news>"))

	env.writeFile(t, filepath.Join(env.cfg.Content.BlogDir, "broken.json"), map[string]string{"slug": "broken"})
	w = env.do(http.MethodGet, "/feed.xml", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error generating RSS feed", w.Body.String())
}

func TestSitemapAndRobots(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, filepath.Join(env.cfg.Content.DataDir, "industries.json"), []map[string]string{{"slug": "healthcare", "name": "Healthcare"}})

	w := env.do(http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<loc>https://generative-engine.org/industries/healthcare</loc>")

	w = env.do(http.MethodGet, "/robots.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Sitemap: https://generative-engine.org/sitemap.xml")
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(t, filepath.Join(env.cfg.Content.DataDir, "platforms.json"), []map[string]string{
		{"slug": "gpt-4o", "name": "GPT-4o", "type": "Chat", "userBase": "200M"},
		{"slug": "perplexity", "name": "Perplexity", "type": "Search", "userBase": "15M"},
		{"slug": "claude", "name": "Claude", "type": "Chat", "userBase": "50M"},
	})

	w := env.do(http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(3), body["count"])
	top := body["top"].([]any)
	assert.Equal(t, "gpt-4o", top[0].(map[string]any)["slug"])

	w = env.do(http.MethodGet, "/api/platforms?type=Search", nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = env.do(http.MethodGet, "/api/platforms?grouped=true", nil)
	groups := decode(t, w)["groups"].([]any)
	require.Len(t, groups, 2)
	assert.Equal(t, "Chat", groups[0].(map[string]any)["category"])

	w = env.do(http.MethodGet, "/api/platforms/claude", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/platforms/gpt4o", nil)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/api/platforms/gpt-4o", w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/api/platforms/unknown-thing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Platform not found", decode(t, w)["error"])

	w = env.do(http.MethodGet, "/api/comparisons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	env.writeFile(t, filepath.Join(env.cfg.Content.DataDir, "industries.json"), []map[string]string{{"name": "No slug"}})
	w = env.do(http.MethodGet, "/api/industries", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBlogRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/blog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	env.writePost(t, "hello", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	w = env.do(http.MethodGet, "/api/blog/hello", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post hello", decode(t, w)["title"])

	w = env.do(http.MethodGet, "/api/blog/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTipsAndStatistics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/geo/tips", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tips []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tips))
	assert.Len(t, tips, 6)

	env.do(http.MethodPost, "/api/geo-audit", map[string]string{"url": env.upstream.URL + "/post"})
	w = env.do(http.MethodGet, "/api/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["totalRequests"])
	assert.Contains(t, body, "usage")
	assert.Contains(t, body, "cache")
}

func TestRedirectsAreWired(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "http://www.generative-engine.org/blog", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "http://generative-engine.org/blog", w.Header().Get("Location"))
}
