// Package keywords builds keyword ideas for a seed term from free suggestion
// sources and classifies them for GEO use.
package keywords

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	maxKeywords       = 20
	maxKeywordLength  = 200
	wikipediaLimit    = 5
	redditLimit       = 10
	redditMaxQuestion = 5
	aiVariationCount  = 8
	maxResponseBytes  = 1 << 20
)

// ErrEmptyKeyword is returned when the seed keyword is blank.
var ErrEmptyKeyword = errors.New("keyword is required")

// Keyword is one classified keyword idea.
type Keyword struct {
	Keyword      string `json:"keyword"`
	SearchVolume string `json:"searchVolume"`
	Difficulty   string `json:"difficulty"`
	Intent       string `json:"intent"`
	AIOptimized  bool   `json:"aiOptimized"`
	Source       string `json:"source"`
}

// Options configures the suggestion sources. Empty URLs disable a source.
type Options struct {
	GoogleURL    string
	WikipediaURL string
	RedditURL    string
	UserAgent    string
	Timeout      time.Duration
	Client       *http.Client
	Logger       *slog.Logger
}

// Researcher fans a seed keyword out to every source concurrently.
type Researcher struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewResearcher(opts Options) *Researcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Researcher{opts: opts, client: client, logger: logger, now: time.Now}
}

// sources holds what each source returned; a failed source stays empty.
type sources struct {
	google    []string
	wikipedia []string
	reddit    []string
	ai        []string
}

// Research returns at most 20 de-duplicated, classified keywords for seed.
// Source failures are logged and never fail the request.
func (r *Researcher) Research(ctx context.Context, seed string) ([]Keyword, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptyKeyword
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var src sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src.google = r.collect(gctx, "google", seed, r.googleSuggestions)
		return nil
	})
	g.Go(func() error {
		src.wikipedia = r.collect(gctx, "wikipedia", seed, r.wikipediaTopics)
		return nil
	})
	g.Go(func() error {
		src.reddit = r.collect(gctx, "reddit", seed, r.redditQuestions)
		return nil
	})
	src.ai = aiVariations(seed, r.now().Year())
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return combine(seed, src), nil
}

func (r *Researcher) collect(ctx context.Context, name, seed string, fetch func(context.Context, string) ([]string, error)) []string {
	out, err := fetch(ctx, seed)
	if err != nil {
		r.logger.Warn("keyword source failed", "source", name, "keyword", seed, "error", err)
		return nil
	}
	return out
}

func (r *Researcher) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	if r.opts.UserAgent != "" {
		req.Header.Set("User-Agent", r.opts.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// openSearch decodes the [query, [suggestions], ...] shape shared by
// Google suggest and the Wikipedia opensearch API.
func openSearch(raw []json.RawMessage) ([]string, error) {
	if len(raw) < 2 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw[1], &out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out, nil
}

func (r *Researcher) googleSuggestions(ctx context.Context, seed string) ([]string, error) {
	var raw []json.RawMessage
	q := url.Values{"client": {"firefox"}, "q": {seed + " "}}
	if err := r.getJSON(ctx, r.opts.GoogleURL, q, &raw); err != nil {
		return nil, err
	}
	return openSearch(raw)
}

func (r *Researcher) wikipediaTopics(ctx context.Context, seed string) ([]string, error) {
	var raw []json.RawMessage
	q := url.Values{
		"action": {"opensearch"},
		"search": {seed},
		"limit":  {fmt.Sprint(wikipediaLimit)},
		"format": {"json"},
	}
	if err := r.getJSON(ctx, r.opts.WikipediaURL, q, &raw); err != nil {
		return nil, err
	}
	return openSearch(raw)
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title string `json:"title"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Researcher) redditQuestions(ctx context.Context, seed string) ([]string, error) {
	var listing redditListing
	q := url.Values{"q": {seed}, "sort": {"relevance"}, "limit": {fmt.Sprint(redditLimit)}}
	if err := r.getJSON(ctx, r.opts.RedditURL, q, &listing); err != nil {
		return nil, err
	}

	var out []string
	for _, child := range listing.Data.Children {
		if len(out) == redditMaxQuestion {
			break
		}
		if isQuestion(child.Data.Title) {
			out = append(out, child.Data.Title)
		}
	}
	return out, nil
}

func isQuestion(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(title, "?") ||
		strings.HasPrefix(lower, "how") ||
		strings.HasPrefix(lower, "what") ||
		strings.HasPrefix(lower, "why")
}

var variationPatterns = []string{
	"how to %s for beginners",
	"what is %s and how does it work",
	"%s best practices {year}",
	"%s vs alternatives comparison",
	"step by step %s guide",
	"%s tips and tricks",
	"common %s mistakes to avoid",
	"%s for ChatGPT optimization",
	"%s case studies and examples",
	"why %s is important",
	"%s tools and resources",
	"%s tutorial with examples",
	"advanced %s techniques",
	"%s frequently asked questions",
	"%s pros and cons",
}

// aiVariations phrases the seed the way people prompt AI assistants.
func aiVariations(seed string, year int) []string {
	out := make([]string, 0, aiVariationCount)
	for _, p := range variationPatterns[:aiVariationCount] {
		v := fmt.Sprintf(p, seed)
		out = append(out, strings.ReplaceAll(v, "{year}", fmt.Sprint(year)))
	}
	return out
}

// combine merges the sources in order, drops duplicates and overlong
// entries, keeps the first 20 and classifies them.
func combine(seed string, src sources) []Keyword {
	seen := make(map[string]struct{})
	var ordered []string
	add := func(k string) {
		if k == "" || len(k) >= maxKeywordLength {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		ordered = append(ordered, k)
	}

	for _, s := range src.google {
		add(s)
	}
	for _, t := range src.wikipedia {
		add(seed + " " + t)
		add(t + " " + seed)
	}
	for _, q := range src.reddit {
		add(q)
	}
	for _, v := range src.ai {
		add(v)
	}

	ordered = ordered[:min(len(ordered), maxKeywords)]
	out := make([]Keyword, len(ordered))
	for i, k := range ordered {
		out[i] = Keyword{
			Keyword:      k,
			SearchVolume: SearchVolume(k),
			Difficulty:   Difficulty(k),
			Intent:       Intent(k),
			AIOptimized:  AIOptimized(k),
			Source:       src.sourceOf(k),
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s sources) sourceOf(k string) string {
	switch {
	case contains(s.google, k):
		return "Google"
	case contains(s.reddit, k):
		return "Reddit"
	}
	for _, t := range s.wikipedia {
		if strings.Contains(k, t) {
			return "Wikipedia"
		}
	}
	if contains(s.ai, k) {
		return "AI Pattern"
	}
	return "Combined"
}
