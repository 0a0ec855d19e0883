package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	wordsPerMinute   = 200
	excerptMaxLength = 160
)

// LoadPosts reads every *.json file in dir as a BlogPost, newest first.
// A missing directory or one without posts yields ErrNoPosts. A malformed
// post fails the whole load.
func LoadPosts(dir string) ([]BlogPost, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoPosts
		}
		return nil, fmt.Errorf("read blog directory: %w", err)
	}

	posts := make([]BlogPost, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		post, err := loadPost(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	SortByPublished(posts)
	return posts, nil
}

func loadPost(path string) (BlogPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BlogPost{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var post BlogPost
	if err := json.Unmarshal(data, &post); err != nil {
		return BlogPost{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if err := post.Validate(); err != nil {
		return BlogPost{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := enrich(&post); err != nil {
		return BlogPost{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return post, nil
}

// enrich fills the metrics and excerpt when the file leaves them out.
func enrich(post *BlogPost) error {
	if post.Metrics.WordCount > 0 && post.Metrics.ReadingTime > 0 && post.Excerpt != "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(post.Content))
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	doc.Find("script, style").Remove()

	if post.Metrics.WordCount == 0 {
		post.Metrics.WordCount = countWords(doc)
	}
	if post.Metrics.ReadingTime == 0 {
		post.Metrics.ReadingTime = max(1, int(math.Ceil(float64(post.Metrics.WordCount)/wordsPerMinute)))
	}
	if post.Excerpt == "" {
		first := strings.TrimSpace(doc.Find("p").First().Text())
		if first == "" {
			first = post.Description
		}
		post.Excerpt = truncate(strings.Join(strings.Fields(first), " "), excerptMaxLength)
	}
	return nil
}

// countWords counts per text node so adjacent blocks do not run together.
func countWords(doc *goquery.Document) int {
	n := 0
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if node := s.Get(0); node.Type == html.TextNode {
			n += len(strings.Fields(node.Data))
		}
	})
	return n
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// SortByPublished orders posts newest first. Ties keep slug order.
func SortByPublished(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Published(), posts[j].Published()
		if !a.Equal(b) {
			return a.After(b)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// FindPost returns the post with the given slug.
func FindPost(posts []BlogPost, slug string) (BlogPost, error) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, fmt.Errorf("blog post %q: %w", slug, ErrNotFound)
}

// PostSummary is the list view of a post, without its body.
type PostSummary struct {
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Excerpt     string      `json:"excerpt"`
	PublishedAt string      `json:"publishedAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	Author      Author      `json:"author"`
	Tags        []string    `json:"tags"`
	Metrics     PostMetrics `json:"metrics"`
}

func Summaries(posts []BlogPost) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{
			Slug:        p.Slug,
			Title:       p.Title,
			Description: p.Description,
			Excerpt:     p.Excerpt,
			PublishedAt: p.PublishedAt,
			UpdatedAt:   p.UpdatedAt,
			Author:      p.Author,
			Tags:        p.Tags,
			Metrics:     p.Metrics,
		}
	}
	return out
}
