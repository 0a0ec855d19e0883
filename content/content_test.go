package content

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"

	"github.com/geo-platform/backend/logging"
)

const testBase = "https://generative-engine.org"

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testPost(slug string, published time.Time) map[string]any {
	return map[string]any{
		"slug":        slug,
		"title":       "Post " + slug,
		"description": "About " + slug,
		"content":     "<p>First paragraph of " + slug + ".</p><p>More text here.</p>",
		"publishedAt": published.UTC().Format(time.RFC3339),
		"author":      map[string]string{"name": "GEO Team", "bio": "Writers"},
		"tags":        []string{"geo", "ai"},
		"keywords":    []string{"one", "two", "three", "four", "five", "six"},
	}
}

func writePosts(t *testing.T, n int, start time.Time) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		slug := fmt.Sprintf("post-%02d", i)
		writeJSON(t, filepath.Join(dir, slug+".json"), testPost(slug, start.Add(time.Duration(i)*time.Hour)))
	}
	return dir
}

func TestLoadPosts(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("NewestFirst", func(t *testing.T) {
		posts, err := LoadPosts(writePosts(t, 3, start))
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "post-02", posts[0].Slug)
		assert.Equal(t, "post-00", posts[2].Slug)
	})

	t.Run("DerivedMetrics", func(t *testing.T) {
		posts, err := LoadPosts(writePosts(t, 1, start))
		require.NoError(t, err)
		assert.Equal(t, 7, posts[0].Metrics.WordCount)
		assert.Equal(t, 1, posts[0].Metrics.ReadingTime)
		assert.Equal(t, "First paragraph of post-00.", posts[0].Excerpt)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		_, err := LoadPosts(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, ErrNoPosts)
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		_, err := LoadPosts(t.TempDir())
		assert.ErrorIs(t, err, ErrNoPosts)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		dir := t.TempDir()
		post := testPost("broken", start)
		delete(post, "title")
		writeJSON(t, filepath.Join(dir, "broken.json"), post)

		_, err := LoadPosts(dir)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("BadDate", func(t *testing.T) {
		dir := t.TempDir()
		post := testPost("late", start)
		post["publishedAt"] = "next tuesday"
		writeJSON(t, filepath.Join(dir, "late.json"), post)

		_, err := LoadPosts(dir)
		assert.ErrorContains(t, err, "publishedAt")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "one two...", truncate("one two three four", 10))
}

func TestBuildFeed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NoPosts", func(t *testing.T) {
		_, err := BuildFeed(testBase, nil, now)
		assert.ErrorIs(t, err, ErrNoPosts)
	})

	for _, n := range []int{1, 20, 25} {
		t.Run(fmt.Sprintf("%dPosts", n), func(t *testing.T) {
			posts, err := LoadPosts(writePosts(t, n, now.Add(-100*time.Hour)))
			require.NoError(t, err)

			out, err := BuildFeed(testBase, posts, now)
			require.NoError(t, err)

			var doc struct {
				Channel struct {
					Title string `xml:"title"`
					Items []struct {
						Link    string `xml:"link"`
						PubDate string `xml:"pubDate"`
					} `xml:"item"`
				} `xml:"channel"`
			}
			require.NoError(t, xml.Unmarshal(out, &doc))
			assert.Equal(t, FeedTitle, doc.Channel.Title)
			require.Len(t, doc.Channel.Items, min(n, 20))
			assert.Equal(t, fmt.Sprintf("%s/post-%02d", testBase, n-1), doc.Channel.Items[0].Link)

			var prev time.Time
			for i, item := range doc.Channel.Items {
				ts, err := time.Parse(rssDateLayout, item.PubDate)
				require.NoError(t, err)
				if i > 0 {
					assert.False(t, ts.After(prev), "items must be newest first")
				}
				prev = ts
			}
		})
	}

	t.Run("ItemBody", func(t *testing.T) {
		posts, err := LoadPosts(writePosts(t, 1, now))
		require.NoError(t, err)
		posts[0].Metrics.WordCount = 1234

		out, err := BuildFeed(testBase, posts, now)
		require.NoError(t, err)
		body := string(out)
		assert.Contains(t, body, `xmlns:content="http://purl.org/rss/1.0/modules/content/"`)
		assert.Contains(t, body, "<![CDATA[<h2>Summary</h2>")
		assert.Contains(t, body, "<li>five</li>")
		assert.NotContains(t, body, "<li>six</li>")
		assert.Contains(t, body, "<h2>Key Topics</h2>")
		assert.Contains(t, body, "<strong>Word Count:</strong> 1,234 words</p>")
		assert.Contains(t, body, "<p>Read the full article at: <a href=")
		assert.Contains(t, body, testBase+"/api/og?title=Post+post-00")
		assert.Contains(t, body, "Copyright 2025 GEO Platform")
	})
}

func locs(t *testing.T, out []byte) []string {
	t.Helper()
	var doc struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))
	var l []string
	for _, u := range doc.URLs {
		l = append(l, u.Loc)
	}
	return l
}

func TestBuildSitemap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts, err := LoadPosts(writePosts(t, 2, now))
	require.NoError(t, err)

	src := SitemapSources{
		Posts:       posts,
		Industries:  []Industry{{Slug: "healthcare", Name: "Healthcare"}, {Slug: "finance", Name: "Finance"}},
		Platforms:   []Platform{{Slug: "chatgpt", Name: "ChatGPT"}},
		Comparisons: []Comparison{{Slug: "geo-vs-seo", Title: "GEO vs SEO"}},
	}
	out, err := BuildSitemap(testBase, src, now)
	require.NoError(t, err)
	all := locs(t, out)

	seen := map[string]int{}
	for _, l := range all {
		seen[l]++
	}
	for l, n := range seen {
		assert.Equal(t, 1, n, "duplicate %s", l)
	}

	var industries, platforms, comparisons []string
	for _, l := range all {
		switch {
		case strings.HasPrefix(l, testBase+"/industries/"):
			industries = append(industries, strings.TrimPrefix(l, testBase+"/industries/"))
		case strings.HasPrefix(l, testBase+"/platforms/"):
			platforms = append(platforms, strings.TrimPrefix(l, testBase+"/platforms/"))
		case strings.HasPrefix(l, testBase+"/compare/"):
			comparisons = append(comparisons, strings.TrimPrefix(l, testBase+"/compare/"))
		}
	}
	assert.ElementsMatch(t, []string{"healthcare", "finance"}, industries)
	assert.ElementsMatch(t, []string{"chatgpt"}, platforms)
	assert.ElementsMatch(t, []string{"geo-vs-seo"}, comparisons)

	assert.Contains(t, all, testBase)
	assert.Contains(t, all, testBase+"/post-01")
	assert.Contains(t, all, testBase+"/entities/vector-embeddings")
	assert.Len(t, all, len(staticPages)+len(EntitySlugs)-2+2+2+1+1)
	assert.Contains(t, string(out), "<image:caption>GEO Article Thumbnail</image:caption>")
}

func TestBuildNewsSitemap(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "fresh.json"), testPost("fresh", now.Add(-time.Hour)))
	writeJSON(t, filepath.Join(dir, "stale.json"), testPost("stale", now.Add(-72*time.Hour)))
	posts, err := LoadPosts(dir)
	require.NoError(t, err)

	out, err := BuildNewsSitemap(testBase, "GEO Platform", posts, now)
	require.NoError(t, err)
	body := string(out)

	assert.Equal(t, []string{testBase + "/fresh", testBase + "/stale"}, locs(t, out))
	assert.Equal(t, 1, strings.Count(body, "<news:news>"))
	assert.Contains(t, body, "<news:name>GEO Platform</news:name>")
	assert.Contains(t, body, "<news:keywords>one, two, three, four, five, six</news:keywords>")
	assert.Contains(t, body, "<news:genres>Blog, Opinion</news:genres>")

	_, err = BuildNewsSitemap(testBase, "GEO Platform", nil, now)
	assert.ErrorIs(t, err, ErrNoPosts)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage(""))
	assert.Equal(t, "en", DetectLanguage("How generative engines choose which sources to cite in their answers"))
	assert.Equal(t, "es", DetectLanguage("Cómo los motores generativos eligen qué fuentes citar en sus respuestas"))
}

func TestLoadSitemapSourcesSkipsFailures(t *testing.T) {
	data := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(data, IndustriesFile), []byte("{broken"), 0o644))
	writeJSON(t, filepath.Join(data, PlatformsFile), []map[string]string{{"slug": "claude", "name": "Claude"}})

	src := LoadSitemapSources(filepath.Join(data, "missing-blog"), NewCatalog(data), logging.Discard())
	assert.Nil(t, src.Posts)
	assert.Nil(t, src.Industries)
	assert.Len(t, src.Platforms, 1)
	assert.Empty(t, src.Comparisons)
}

func TestCatalog(t *testing.T) {
	data := t.TempDir()
	writeJSON(t, filepath.Join(data, IndustriesFile), []map[string]string{
		{"slug": "retail", "name": "Retail", "category": "Commerce", "marketSize": "$5.1T"},
		{"slug": "ecommerce", "name": "E-commerce", "category": "Commerce", "marketSize": "$6.3T"},
		{"slug": "law", "name": "Legal", "category": "Services", "marketSize": "$900B"},
		{"slug": "misc", "name": "Misc", "marketSize": "n/a"},
	})
	catalog := NewCatalog(data)

	industries, err := catalog.Industries()
	require.NoError(t, err)
	require.Len(t, industries, 4)

	t.Run("Find", func(t *testing.T) {
		got, err := Find(industries, "law")
		require.NoError(t, err)
		assert.Equal(t, "Legal", got.Name)
		_, err = Find(industries, "space")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GroupByCategory", func(t *testing.T) {
		groups := GroupByCategory(industries)
		require.Len(t, groups, 3)
		assert.Equal(t, "Commerce", groups[0].Category)
		assert.Equal(t, 2, groups[0].Count)
		assert.Equal(t, "Other", groups[2].Category)
	})

	t.Run("Filter", func(t *testing.T) {
		assert.Len(t, Filter(industries, "Services"), 1)
		assert.Len(t, Filter(industries, ""), 4)
	})

	t.Run("TopIndustries", func(t *testing.T) {
		top := TopIndustries(industries, 2)
		require.Len(t, top, 2)
		assert.Equal(t, "law", top[0].Slug)
		assert.Equal(t, "ecommerce", top[1].Slug)
	})

	t.Run("MissingFileIsEmpty", func(t *testing.T) {
		comparisons, err := catalog.Comparisons()
		require.NoError(t, err)
		assert.Empty(t, comparisons)
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		writeJSON(t, filepath.Join(data, PlatformsFile), []map[string]string{
			{"slug": "claude", "name": "Claude"},
			{"slug": "claude", "name": "Claude again"},
		})
		_, err := catalog.Platforms()
		assert.ErrorContains(t, err, "duplicate slug")
	})

	t.Run("UnknownWinner", func(t *testing.T) {
		c := Comparison{Slug: "x", Title: "X", KeyDifferences: []KeyDifference{{Aspect: "Speed", Winner: "SEO"}}}
		assert.Error(t, c.Validate())
	})
}

func TestTopPlatforms(t *testing.T) {
	platforms := []Platform{
		{Slug: "a", UserBase: "100M+"},
		{Slug: "b", UserBase: "1,500,000,000"},
		{Slug: "c", UserBase: "unknown"},
	}
	top := TopPlatforms(platforms, 6)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{top[0].Slug, top[1].Slug, top[2].Slug})
}

func TestCanonicalPlatformSlug(t *testing.T) {
	cases := map[string]string{
		"gpt-4o":      "gpt-4o",
		"GPT4O":       "gpt-4o",
		"bard":        "google-gemini",
		"gemini-2.5":  "gemini-2-5-pro",
		"11labs":      "elevenlabs",
		"bing-chat":   "microsoft-copilot",
		"perplexity":  "perplexity",
		"openai-03":   "openai-o3",
		"runway-ml":   "runwayml",
		"mid-journey": "midjourney",
	}
	for in, want := range cases {
		got, ok := CanonicalPlatformSlug(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := CanonicalPlatformSlug("not-a-platform")
	assert.False(t, ok)
}

func TestRobotsTxt(t *testing.T) {
	body := RobotsTxt(testBase)
	assert.True(t, strings.HasPrefix(body, "# Generative Engine Optimization Robots.txt\n"))
	assert.True(t, strings.HasSuffix(body, "User-agent: Claude-Web\nAllow: /"))
	assert.Contains(t, body, "Sitemap: "+testBase+"/news-sitemap.xml")

	robots, err := robotstxt.FromString(body)
	require.NoError(t, err)
	assert.Len(t, robots.Sitemaps, 2)
	for _, agent := range append([]string{"Googlebot"}, aiCrawlers...) {
		assert.True(t, robots.TestAgent("/blog/some-post", agent), agent)
	}
}

func TestTips(t *testing.T) {
	got := Tips()
	require.Len(t, got, 6)
	assert.Equal(t, "Optimize for AI Context", got[0].Title)
	got[0].Title = "changed"
	assert.Equal(t, "Optimize for AI Context", Tips()[0].Title)
}
