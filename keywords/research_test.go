package keywords

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-platform/backend/logging"
)

func newTestResearcher(t *testing.T, google, wiki, reddit http.HandlerFunc) *Researcher {
	t.Helper()
	opts := Options{UserAgent: "GEO-Platform/1.0", Timeout: 2 * time.Second, Logger: logging.Discard()}
	for _, s := range []struct {
		h   http.HandlerFunc
		dst *string
	}{{google, &opts.GoogleURL}, {wiki, &opts.WikipediaURL}, {reddit, &opts.RedditURL}} {
		if s.h == nil {
			continue
		}
		srv := httptest.NewServer(s.h)
		t.Cleanup(srv.Close)
		*s.dst = srv.URL
	}
	r := NewResearcher(opts)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestResearchCombinesSources(t *testing.T) {
	google := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "firefox", r.URL.Query().Get("client"))
		assert.Equal(t, "geo ", r.URL.Query().Get("q"))
		fmt.Fprint(w, `["geo ",["geo tools","geo meaning"]]`)
	}
	wiki := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		fmt.Fprint(w, `["geo",["Geography"],[""],["https://en.wikipedia.org/wiki/Geography"]]`)
	}
	reddit := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GEO-Platform/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"data":{"children":[
			{"data":{"title":"How do I start with geo?"}},
			{"data":{"title":"My geo results"}},
			{"data":{"title":"geo tools"}}
		]}}`)
	}

	got, err := newTestResearcher(t, google, wiki, reddit).Research(context.Background(), "geo")
	require.NoError(t, err)

	var names []string
	for _, k := range got {
		names = append(names, k.Keyword)
	}
	assert.Equal(t, []string{
		"geo tools",
		"geo meaning",
		"geo Geography",
		"Geography geo",
		"How do I start with geo?",
		"how to geo for beginners",
		"what is geo and how does it work",
		"geo best practices 2025",
		"geo vs alternatives comparison",
		"step by step geo guide",
		"geo tips and tricks",
		"common geo mistakes to avoid",
		"geo for ChatGPT optimization",
	}, names)

	assert.Equal(t, "Google", got[0].Source)
	assert.Equal(t, "Wikipedia", got[2].Source)
	assert.Equal(t, "Reddit", got[4].Source)
	assert.Equal(t, "AI Pattern", got[5].Source)
}

func TestResearchSurvivesFailingSources(t *testing.T) {
	fail := func(w http.ResponseWriter, r *http.Request) { http.Error(w, "nope", http.StatusTooManyRequests) }
	garbage := func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>") }

	got, err := newTestResearcher(t, fail, garbage, fail).Research(context.Background(), "geo")
	require.NoError(t, err)
	require.Len(t, got, aiVariationCount)
	for _, k := range got {
		assert.Equal(t, "AI Pattern", k.Source)
	}
}

func TestResearchCapsAtTwenty(t *testing.T) {
	google := func(w http.ResponseWriter, r *http.Request) {
		list := `"s0"`
		for i := 1; i < 30; i++ {
			list += fmt.Sprintf(`,"s%d"`, i)
		}
		fmt.Fprintf(w, `["x",[%s]]`, list)
	}
	got, err := newTestResearcher(t, google, nil, nil).Research(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestResearchRequiresKeyword(t *testing.T) {
	_, err := newTestResearcher(t, nil, nil, nil).Research(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyKeyword)
}

func TestClassification(t *testing.T) {
	cases := []struct {
		keyword    string
		volume     string
		difficulty string
		intent     string
		ai         bool
	}{
		{"geo", "10K+", "Medium", "General", false},
		{"best geo tools", "1K-5K", "High", "Commercial", false},
		{"how to rank in chatgpt", "500-1K", "Low", "Tutorial", true},
		{"what is generative engine optimization", "500-1K", "Low", "Informational", true},
		{"geo vs seo", "1K-5K", "High", "Comparative", false},
		{"geo case study for small retail shops online", "100-500", "Medium", "Research", true},
	}
	for _, c := range cases {
		t.Run(c.keyword, func(t *testing.T) {
			assert.Equal(t, c.volume, SearchVolume(c.keyword))
			assert.Equal(t, c.difficulty, Difficulty(c.keyword))
			assert.Equal(t, c.intent, Intent(c.keyword))
			assert.Equal(t, c.ai, AIOptimized(c.keyword))
		})
	}
}
