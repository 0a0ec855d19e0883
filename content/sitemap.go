package content

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

const (
	sitemapNS     = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapNewsNS = "http://www.google.com/schemas/sitemap-news/0.9"
	sitemapImgNS  = "http://www.google.com/schemas/sitemap-image/1.1"

	newsMaxURLs    = 1000
	newsWindow     = 48 * time.Hour
	newsMaxKeyword = 10
	isoLayout      = "2006-01-02T15:04:05.000Z"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	NewsNS  string       `xml:"xmlns:news,attr,omitempty"`
	ImageNS string       `xml:"xmlns:image,attr,omitempty"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   string        `xml:"priority,omitempty"`
	News       *newsEntry    `xml:"news:news,omitempty"`
	Image      *sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc     string `xml:"image:loc"`
	Caption string `xml:"image:caption"`
}

type newsEntry struct {
	Publication     newsPublication `xml:"news:publication"`
	PublicationDate string          `xml:"news:publication_date"`
	Title           string          `xml:"news:title"`
	Keywords        string          `xml:"news:keywords,omitempty"`
	Genres          string          `xml:"news:genres"`
}

type newsPublication struct {
	Name     string `xml:"news:name"`
	Language string `xml:"news:language"`
}

type page struct {
	path       string
	changeFreq string
	priority   string
}

var staticPages = []page{
	{"", "daily", "1.0"},
	{"/blog", "daily", "0.9"},
	{"/about", "monthly", "0.8"},
	{"/resources", "weekly", "0.8"},
	{"/glossary", "weekly", "0.7"},
	{"/guide", "weekly", "0.8"},
	{"/tech-view", "monthly", "0.6"},
	{"/tools", "weekly", "0.8"},
	{"/tools/visibility-tracker", "weekly", "0.9"},
	{"/tools/content-optimizer", "weekly", "0.8"},
	{"/tools/geo-audit", "weekly", "0.8"},
	{"/tools/keyword-research", "weekly", "0.8"},
	{"/entities", "weekly", "0.7"},
	{"/entities/generative-engine-optimization", "weekly", "0.9"},
	{"/entities/chatgpt-optimization", "weekly", "0.8"},
}

// EntitySlugs are the glossary entity pages.
var EntitySlugs = []string{
	"ai-citations",
	"ai-seo",
	"authority-signals",
	"bing-chat-optimization",
	"chatgpt-optimization",
	"citation-optimization",
	"claude-optimization",
	"content-structuring",
	"conversational-search-optimization",
	"generative-engine-optimization",
	"gpt-4-optimization",
	"llm-optimization",
	"perplexity-optimization",
	"prompt-engineering",
	"rag-optimization",
	"vector-embeddings",
}

// SitemapSources is what the main sitemap lists beyond the static pages.
// A nil slice means the source failed to load and its section is skipped.
type SitemapSources struct {
	Posts       []BlogPost
	Industries  []Industry
	Platforms   []Platform
	Comparisons []Comparison
}

// BuildSitemap renders sitemap.xml. Each location appears once.
func BuildSitemap(baseURL string, src SitemapSources, now time.Time) ([]byte, error) {
	set := urlSet{NS: sitemapNS, ImageNS: sitemapImgNS}
	seen := make(map[string]struct{})
	add := func(u sitemapURL) {
		if _, dup := seen[u.Loc]; dup {
			return
		}
		seen[u.Loc] = struct{}{}
		set.URLs = append(set.URLs, u)
	}

	today := now.UTC().Format(isoLayout)
	for _, p := range staticPages {
		add(sitemapURL{Loc: baseURL + p.path, LastMod: today, ChangeFreq: p.changeFreq, Priority: p.priority})
	}
	for _, slug := range EntitySlugs {
		add(sitemapURL{Loc: baseURL + "/entities/" + slug, LastMod: today, ChangeFreq: "weekly", Priority: "0.7"})
	}
	for _, post := range src.Posts {
		add(sitemapURL{
			Loc:        baseURL + "/" + post.Slug,
			LastMod:    post.LastModified().Format(isoLayout),
			ChangeFreq: "monthly",
			Priority:   "0.7",
			Image: &sitemapImage{
				Loc:     baseURL + "/api/og?title=" + url.QueryEscape(post.Slug),
				Caption: "GEO Article Thumbnail",
			},
		})
	}
	for _, ind := range src.Industries {
		add(sitemapURL{Loc: baseURL + "/industries/" + ind.Slug, LastMod: today, ChangeFreq: "weekly", Priority: "0.7"})
	}
	for _, p := range src.Platforms {
		add(sitemapURL{Loc: baseURL + "/platforms/" + p.Slug, LastMod: today, ChangeFreq: "weekly", Priority: "0.8"})
	}
	for _, c := range src.Comparisons {
		add(sitemapURL{Loc: baseURL + "/compare/" + c.Slug, LastMod: today, ChangeFreq: "monthly", Priority: "0.7"})
	}

	return encodeURLSet(set)
}

// BuildNewsSitemap renders news-sitemap.xml. Posts published within the last
// two days carry a news entry. posts must already be sorted newest first.
func BuildNewsSitemap(baseURL, publication string, posts []BlogPost, now time.Time) ([]byte, error) {
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	set := urlSet{NS: sitemapNS, NewsNS: sitemapNewsNS}
	cutoff := now.Add(-newsWindow)

	for _, post := range posts[:min(len(posts), newsMaxURLs)] {
		u := sitemapURL{
			Loc:        baseURL + "/" + post.Slug,
			LastMod:    post.LastModified().Format(isoLayout),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if post.Published().After(cutoff) {
			u.News = &newsEntry{
				Publication: newsPublication{
					Name:     publication,
					Language: DetectLanguage(post.Title + ". " + post.Description),
				},
				PublicationDate: post.Published().Format(isoLayout),
				Title:           post.Title,
				Keywords:        strings.Join(post.Keywords[:min(len(post.Keywords), newsMaxKeyword)], ", "),
				Genres:          "Blog, Opinion",
			}
		}
		set.URLs = append(set.URLs, u)
	}
	return encodeURLSet(set)
}

func encodeURLSet(set urlSet) ([]byte, error) {
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// LoadSitemapSources loads every section, logging and skipping the ones that fail.
func LoadSitemapSources(blogDir string, catalog *Catalog, logger *slog.Logger) SitemapSources {
	var src SitemapSources
	var err error

	if src.Posts, err = LoadPosts(blogDir); err != nil {
		logger.Warn("sitemap: skipping blog posts", "error", err)
	}
	if src.Industries, err = catalog.Industries(); err != nil {
		logger.Warn("sitemap: skipping industries", "error", err)
	}
	if src.Platforms, err = catalog.Platforms(); err != nil {
		logger.Warn("sitemap: skipping platforms", "error", err)
	}
	if src.Comparisons, err = catalog.Comparisons(); err != nil {
		logger.Warn("sitemap: skipping comparisons", "error", err)
	}
	return src
}
