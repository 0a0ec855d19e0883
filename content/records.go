package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoPosts means the blog directory is missing or holds no posts.
	ErrNoPosts = errors.New("no blog posts found")
	// ErrNotFound is returned by slug lookups.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a record missing a required field.
type ValidationError struct {
	Kind  string
	Slug  string
	Field string
}

func (e *ValidationError) Error() string {
	if e.Slug == "" {
		return fmt.Sprintf("%s: missing required field %q", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s %q: missing required field %q", e.Kind, e.Slug, e.Field)
}

func requireFields(kind, slug string, fields map[string]string) error {
	// deterministic order so the first missing field is reported consistently
	for _, name := range []string{"slug", "title", "name", "description", "publishedAt"} {
		value, ok := fields[name]
		if ok && strings.TrimSpace(value) == "" {
			return &ValidationError{Kind: kind, Slug: slug, Field: name}
		}
	}
	return nil
}

type Author struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

type PostMetrics struct {
	ReadingTime int `json:"readingTime"`
	WordCount   int `json:"wordCount"`
}

// BlogPost is one article from the blog data directory.
type BlogPost struct {
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Excerpt     string      `json:"excerpt"`
	Content     string      `json:"content"`
	PublishedAt string      `json:"publishedAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	Author      Author      `json:"author"`
	Tags        []string    `json:"tags"`
	Keywords    []string    `json:"keywords"`
	Metrics     PostMetrics `json:"metrics"`

	published time.Time
	updated   time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Validate checks required fields and parses the dates.
func (p *BlogPost) Validate() error {
	if err := requireFields("blog post", p.Slug, map[string]string{
		"slug":        p.Slug,
		"title":       p.Title,
		"description": p.Description,
		"publishedAt": p.PublishedAt,
	}); err != nil {
		return err
	}

	published, err := parseDate(p.PublishedAt)
	if err != nil {
		return fmt.Errorf("blog post %q: publishedAt: %w", p.Slug, err)
	}
	p.published = published
	p.updated = published

	if strings.TrimSpace(p.UpdatedAt) != "" {
		updated, err := parseDate(p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("blog post %q: updatedAt: %w", p.Slug, err)
		}
		p.updated = updated
	}
	return nil
}

// Published is the parsed publishedAt timestamp.
func (p BlogPost) Published() time.Time { return p.published }

// LastModified is updatedAt, falling back to publishedAt.
func (p BlogPost) LastModified() time.Time { return p.updated }

type CaseStudy struct {
	Company     string `json:"company"`
	Improvement string `json:"improvement"`
	Strategy    string `json:"strategy"`
}

// Industry is an entry of industries.json.
type Industry struct {
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	Category         string         `json:"category"`
	Description      string         `json:"description"`
	MarketSize       string         `json:"marketSize"`
	Growth           string         `json:"growth"`
	AIAdoption       string         `json:"aiAdoption"`
	SearchVolume     int            `json:"searchVolume"`
	CommercialIntent string         `json:"commercialIntent"`
	Challenges       []string       `json:"challenges"`
	GeoOpportunities []string       `json:"geoOpportunities"`
	KeyMetrics       map[string]any `json:"keyMetrics,omitempty"`
	Tools            []string       `json:"tools"`
	CaseStudies      []CaseStudy    `json:"caseStudies"`
}

func (i Industry) Key() string   { return i.Slug }
func (i Industry) Group() string { return i.Category }

func (i Industry) Validate() error {
	return requireFields("industry", i.Slug, map[string]string{"slug": i.Slug, "name": i.Name})
}

type GeoWeights struct {
	CitationWeight       float64 `json:"citationWeight"`
	StatisticsWeight     float64 `json:"statisticsWeight"`
	FAQWeight            float64 `json:"faqWeight"`
	ConversationalWeight float64 `json:"conversationalWeight"`
	AuthorityWeight      float64 `json:"authorityWeight"`
}

// Platform is an entry of platforms.json.
type Platform struct {
	Slug                   string     `json:"slug"`
	Name                   string     `json:"name"`
	Company                string     `json:"company"`
	Type                   string     `json:"type"`
	UserBase               string     `json:"userBase"`
	Launch                 string     `json:"launch"`
	PrimaryUse             string     `json:"primaryUse"`
	GeoOptimization        GeoWeights `json:"geoOptimization"`
	KeyFeatures            []string   `json:"keyFeatures"`
	OptimizationStrategies []string   `json:"optimizationStrategies"`
	ContentPreferences     []string   `json:"contentPreferences"`
	Industries             []string   `json:"industries"`
}

func (p Platform) Key() string   { return p.Slug }
func (p Platform) Group() string { return p.Type }

func (p Platform) Validate() error {
	return requireFields("platform", p.Slug, map[string]string{"slug": p.Slug, "name": p.Name})
}

type KeyDifference struct {
	Aspect      string `json:"aspect"`
	Geo         string `json:"geo"`
	Traditional string `json:"traditional"`
	Winner      string `json:"winner"`
}

// Comparison is an entry of comparisons.json.
type Comparison struct {
	Slug                  string          `json:"slug"`
	Title                 string          `json:"title"`
	Subtitle              string          `json:"subtitle"`
	Category              string          `json:"category"`
	Difficulty            string          `json:"difficulty"`
	Impact                string          `json:"impact"`
	TimeToImplement       string          `json:"timeToImplement"`
	CostLevel             string          `json:"costLevel"`
	GeoAdvantages         []string        `json:"geoAdvantages"`
	TraditionalAdvantages []string        `json:"traditionalAdvantages"`
	KeyDifferences        []KeyDifference `json:"keyDifferences"`
}

func (c Comparison) Key() string   { return c.Slug }
func (c Comparison) Group() string { return c.Category }

func (c Comparison) Validate() error {
	if err := requireFields("comparison", c.Slug, map[string]string{"slug": c.Slug, "title": c.Title}); err != nil {
		return err
	}
	for _, d := range c.KeyDifferences {
		switch d.Winner {
		case "GEO", "Traditional", "Tie", "":
		default:
			return fmt.Errorf("comparison %q: unknown winner %q for %q", c.Slug, d.Winner, d.Aspect)
		}
	}
	return nil
}
