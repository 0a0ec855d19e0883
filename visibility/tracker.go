// Package visibility estimates and records how visible a domain is to AI
// assistants.
package visibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/geo-platform/backend/analyzer"
	"github.com/geo-platform/backend/stats"
)

const (
	StatusEstimated = "estimated"
	StatusProbed    = "probed"

	topQueryCount      = 5
	maxRecommendations = 3
	timestampLayout    = "2006-01-02T15:04:05.000Z"
	// citedThreshold is the estimated visibility at which a platform is assumed to cite the domain.
	citedThreshold = 50
)

var ErrInvalidDomain = errors.New("invalid domain")

type PlatformResult struct {
	Platform     string `json:"platform"`
	Visibility   int    `json:"visibility"`
	Citations    int    `json:"citations"`
	Trend        string `json:"trend"`
	TrendPercent int    `json:"trendPercent"`
	Notes        string `json:"notes"`
}

type QueryResult struct {
	Query     string   `json:"query"`
	Platforms []string `json:"platforms"`
	Cited     bool     `json:"cited"`
	Position  *int     `json:"position"`
}

type Recommendation struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Report is the data block of a tracking response.
type Report struct {
	Domain          string           `json:"domain"`
	Brand           string           `json:"brand"`
	Timestamp       string           `json:"timestamp"`
	GeoScore        int              `json:"geoScore"`
	Platforms       []PlatformResult `json:"platforms"`
	TopQueries      []QueryResult    `json:"topQueries"`
	Recommendations []Recommendation `json:"recommendations"`
	NextSteps       []string         `json:"nextSteps"`
}

// Result is the full tracking response.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    Report `json:"data"`
}

// Status answers whether a domain has been checked before.
type Status struct {
	Domain      string  `json:"domain"`
	IsTracking  bool    `json:"isTracking"`
	LastChecked *string `json:"lastChecked"`
	LastScore   *int    `json:"lastScore"`
	Message     string  `json:"message"`
}

var platformNotes = map[string]string{
	"ChatGPT":    "Based on analysis of conversational queries",
	"Claude":     "Technical and detailed query performance",
	"Perplexity": "Strong performance in research queries",
	"Bing Chat":  "Microsoft ecosystem integration",
	"Gemini":     "Google AI search integration",
}

var nextSteps = []string{
	"Run a comprehensive GEO audit to identify optimization opportunities",
	"Implement citation-worthy statistics and quotes in your content",
	"Create FAQ sections targeting conversational queries",
	"Add structured data markup for better AI comprehension",
}

var queryTemplates = []string{
	"what is %s",
	"how does %s work",
	"%s vs competitors",
	"%s reviews and features",
	"best practices for %s",
	"%s pricing and plans",
	"%s tutorial guide",
	"is %s worth it",
}

// Options wires a Tracker. Probers and Stats are optional.
type Options struct {
	Analyzer *analyzer.Analyzer
	Store    Store
	Probers  []Prober
	// ProbeTimeout bounds each question sent to a prober. Zero means no limit.
	ProbeTimeout time.Duration
	Stats        *stats.Storage
	Logger       *slog.Logger
}

// Tracker scores a domain's homepage, optionally probes AI assistants and
// records every check.
type Tracker struct {
	analyzer *analyzer.Analyzer
	store    Store
	probers  []Prober
	timeout  time.Duration
	stats    *stats.Storage
	logger   *slog.Logger
	now      func() time.Time
}

func NewTracker(opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		analyzer: opts.Analyzer,
		store:    opts.Store,
		probers:  opts.Probers,
		timeout:  opts.ProbeTimeout,
		stats:    opts.Stats,
		logger:   logger,
		now:      time.Now,
	}
}

// NormalizeDomain reduces raw input such as "https://www.Example.com/path" to "example.com".
func NormalizeDomain(raw string) (string, error) {
	u, err := url.Parse(analyzer.NormalizeURL(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" || (!strings.Contains(host, ".") && host != "localhost") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, raw)
	}
	return host, nil
}

// Track runs a visibility check for domain and records it. rawDomain may
// carry a scheme or port; the homepage is fetched from it as given.
func (t *Tracker) Track(ctx context.Context, rawDomain string) (*Result, error) {
	domain, err := NormalizeDomain(rawDomain)
	if err != nil {
		return nil, err
	}

	page, signals, err := t.analyzer.Inspect(ctx, rawDomain)
	if err != nil {
		return nil, err
	}
	if t.stats != nil {
		t.stats.Increment(stats.VisibilityChecks, 1)
	}

	now := t.now().UTC()
	geoScore := analyzer.GeoScoreTable.Score(&signals)
	brand := brandName(page, domain)

	var previous map[string]int
	if last, ok, err := t.store.Latest(ctx, domain); err != nil {
		t.logger.Warn("visibility history unavailable", "domain", domain, "error", err)
	} else if ok {
		previous = make(map[string]int, len(last.Platforms))
		for _, p := range last.Platforms {
			previous[p.Platform] = p.Visibility
		}
	}

	queries := topQueries(brand)
	platforms := make([]PlatformResult, 0, len(analyzer.TrackedPlatforms))
	for _, profile := range analyzer.TrackedPlatforms {
		v := profile.Apply(geoScore, &signals)
		p := PlatformResult{
			Platform:   profile.Name,
			Visibility: v,
			Citations:  v * len(queries) / 100,
			Notes:      platformNotes[profile.Name],
		}
		p.Trend, p.TrendPercent = trend(previous, profile.Name, v)
		platforms = append(platforms, p)
	}

	status := StatusEstimated
	message := "Visibility estimated from on-page GEO signals. Configure AI provider keys to probe assistants directly."
	if len(t.probers) > 0 {
		status = StatusProbed
		message = "Visibility measured by asking AI assistants the domain's top queries."
		results := t.probe(ctx, domain, queries)
		for i := range platforms {
			if n, ok := results.citations[platforms[i].Platform]; ok {
				platforms[i].Citations = n
			}
		}
		queries = results.queries
	} else {
		for i := range queries {
			for _, p := range platforms {
				if p.Visibility >= citedThreshold {
					queries[i].Platforms = append(queries[i].Platforms, p.Platform)
				}
			}
			queries[i].Cited = len(queries[i].Platforms) > 0
		}
	}

	if _, err := t.store.Record(ctx, Check{Domain: domain, Score: geoScore, Platforms: platforms, CheckedAt: now}); err != nil {
		return nil, fmt.Errorf("record visibility check: %w", err)
	}
	t.logger.Info("visibility check recorded", "domain", domain, "score", geoScore, "status", status)

	return &Result{
		Status:  status,
		Message: message,
		Data: Report{
			Domain:          domain,
			Brand:           brand,
			Timestamp:       now.Format(timestampLayout),
			GeoScore:        geoScore,
			Platforms:       platforms,
			TopQueries:      queries,
			Recommendations: recommendations(&signals),
			NextSteps:       append([]string(nil), nextSteps...),
		},
	}, nil
}

// Status reports the last recorded check for domain.
func (t *Tracker) Status(ctx context.Context, rawDomain string) (Status, error) {
	domain, err := NormalizeDomain(rawDomain)
	if err != nil {
		return Status{}, err
	}
	last, ok, err := t.store.Latest(ctx, domain)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{
			Domain:  domain,
			Message: "Domain not currently being tracked. Use POST to start tracking.",
		}, nil
	}
	checked := last.CheckedAt.UTC().Format(timestampLayout)
	score := last.Score
	return Status{
		Domain:      domain,
		IsTracking:  true,
		LastChecked: &checked,
		LastScore:   &score,
		Message:     "Domain is being tracked. Use POST to run a new check.",
	}, nil
}

func brandName(page *analyzer.Page, domain string) string {
	pageURL, err := url.Parse(page.FinalURL)
	if err != nil || page.FinalURL == "" {
		pageURL = &url.URL{Scheme: "https", Host: domain}
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(page.HTML), pageURL)
	if err == nil && strings.TrimSpace(article.SiteName) != "" {
		return strings.TrimSpace(article.SiteName)
	}
	return domain
}

func trend(previous map[string]int, platform string, current int) (string, int) {
	before, ok := previous[platform]
	if !ok {
		return "stable", 0
	}
	switch diff := current - before; {
	case diff > 0:
		return "up", diff
	case diff < 0:
		return "down", -diff
	default:
		return "stable", 0
	}
}

func topQueries(brand string) []QueryResult {
	out := make([]QueryResult, topQueryCount)
	for i, tmpl := range queryTemplates[:topQueryCount] {
		out[i] = QueryResult{Query: fmt.Sprintf(tmpl, brand), Platforms: []string{}}
	}
	return out
}

type probeResults struct {
	queries   []QueryResult
	citations map[string]int
}

// probe asks every prober every query. A failed answer counts as not cited.
func (t *Tracker) probe(ctx context.Context, domain string, queries []QueryResult) probeResults {
	res := probeResults{citations: make(map[string]int, len(t.probers))}
	for _, p := range t.probers {
		res.citations[p.Platform()] = 0
	}

	for _, q := range queries {
		for _, p := range t.probers {
			answer, err := t.ask(ctx, p, q.Query)
			if err != nil {
				t.logger.Warn("AI probe failed", "platform", p.Platform(), "query", q.Query, "error", err)
				continue
			}
			pos, cited := citationPosition(answer, domain)
			if !cited {
				continue
			}
			q.Platforms = append(q.Platforms, p.Platform())
			res.citations[p.Platform()]++
			if q.Position == nil || pos < *q.Position {
				q.Position = &pos
			}
		}
		q.Cited = len(q.Platforms) > 0
		res.queries = append(res.queries, q)
	}
	return res
}

func (t *Tracker) ask(ctx context.Context, p Prober, query string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return p.Ask(ctx, query)
}

var domainPattern = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}\b`)

// citationPosition finds domain among the distinct domains mentioned in
// answer and returns its 1-based rank.
func citationPosition(answer, domain string) (int, bool) {
	seen := make(map[string]struct{})
	rank := 0
	for _, m := range domainPattern.FindAllString(answer, -1) {
		host := strings.TrimPrefix(strings.ToLower(m), "www.")
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		rank++
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return rank, true
		}
	}
	return 0, false
}

var allRecommendations = []struct {
	Recommendation
	applies func(*analyzer.PageSignals) bool
}{
	{Recommendation{"high", "Add Authoritative Citations", "Include 3-5 citations from credible sources per article to increase authority signals", "+40% visibility on Perplexity"},
		func(s *analyzer.PageSignals) bool { return s.Citations < 3 }},
	{Recommendation{"high", "Implement FAQ Sections", "Create comprehensive FAQ sections addressing common questions in conversational format", "+35% visibility on ChatGPT"},
		func(s *analyzer.PageSignals) bool { return s.FAQSections == 0 }},
	{Recommendation{"medium", "Add Statistical Data", "Include relevant statistics with sources to improve factual credibility", "+32% visibility across all platforms"},
		func(s *analyzer.PageSignals) bool { return s.Statistics < 3 }},
	{Recommendation{"medium", "Optimize Content Structure", "Use clear heading hierarchy and bullet points for better content extraction", "+25% overall improvement"},
		func(s *analyzer.PageSignals) bool { return s.Headings.Outline() < 3 }},
	{Recommendation{"low", "Enhance Schema Markup", "Implement Article, FAQ, and HowTo schema for better AI understanding", "+20% technical SEO benefit"},
		func(s *analyzer.PageSignals) bool { return !s.HasSchema }},
}

// recommendations returns up to three suggestions for the weakest signals, highest priority first.
func recommendations(s *analyzer.PageSignals) []Recommendation {
	out := []Recommendation{}
	for _, r := range allRecommendations {
		if len(out) == maxRecommendations {
			break
		}
		if r.applies(s) {
			out = append(out, r.Recommendation)
		}
	}
	return out
}
