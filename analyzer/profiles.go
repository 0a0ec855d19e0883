package analyzer

// GeoScoreTable is the canonical analyze-website scoring table.
var GeoScoreTable = RuleTable{
	Name: "geo-score",
	Base: 0,
	Rules: []Rule{
		{Signal: "citations", Buckets: []Bucket{AtLeast(5, 30), AtLeast(3, 20), AtLeast(1, 10)}},
		{Signal: "statistics", Buckets: []Bucket{AtLeast(10, 25), AtLeast(5, 15), AtLeast(2, 8)}},
		{Signal: "faqSections", Buckets: []Bucket{AtLeast(1, 10)}},
		{Signal: "hasSchema", Buckets: []Bucket{Exactly(1, 5)}},
		{Signal: "h1", Buckets: []Bucket{Exactly(1, 5)}},
		{Signal: "h2", Buckets: []Bucket{Between(3, 10, 5)}},
		{Signal: "wordCount", Buckets: []Bucket{AtLeast(1500, 10), AtLeast(800, 5)}},
		{Signal: "hasMetaDescription", Buckets: []Bucket{Exactly(1, 5)}},
		{Signal: "titleLength", Buckets: []Bucket{Between(11, 69, 5)}},
	},
}

// Geo audit category tables.
var (
	StructureTable = RuleTable{
		Name: "Content Structure",
		Base: 100,
		Rules: []Rule{
			{Signal: "h1", Buckets: []Bucket{Exactly(0, -20), AtLeast(2, -10)}},
			{Signal: "headingDeficit", Buckets: []Bucket{Exactly(1, -15)}},
			{Signal: "h2", Buckets: []Bucket{Exactly(0, -10)}},
			{Signal: "faqOrQA", Buckets: []Bucket{Exactly(1, 10)}},
			{Signal: "lists", Buckets: []Bucket{AtLeast(1, 5)}},
			{Signal: "tableOfContents", Buckets: []Bucket{Exactly(1, 5)}},
		},
	}

	SemanticTable = RuleTable{
		Name: "Semantic Clarity",
		Base: 60,
		Rules: []Rule{
			{Signal: "referencesSchema", Buckets: []Bucket{Exactly(1, 20)}},
			{Signal: "articleSchema", Buckets: []Bucket{Exactly(1, 10)}},
			{Signal: "faqSchema", Buckets: []Bucket{Exactly(1, 10)}},
			{Signal: "conversational", Buckets: []Bucket{AtLeast(6, 15)}},
			{Signal: "definitions", Buckets: []Bucket{Exactly(1, 10)}},
			{Signal: "boldKeywords", Buckets: []Bucket{AtLeast(6, 5)}},
		},
	}

	CitationsTable = RuleTable{
		Name: "AI Citations",
		Base: 50,
		Rules: []Rule{
			{Signal: "auditStatistics", Buckets: []Bucket{AtLeast(4, 20), AtLeast(1, 10)}},
			{Signal: "citationMarkup", Buckets: []Bucket{Exactly(1, 15)}},
			{Signal: "quotes", Buckets: []Bucket{Exactly(1, 15)}},
			{Signal: "examples", Buckets: []Bucket{Exactly(1, 10)}},
			{Signal: "codeBlocks", Buckets: []Bucket{AtLeast(1, 5)}},
		},
	}

	DepthTable = RuleTable{
		Name: "Content Depth",
		Base: 70,
		Rules: []Rule{
			{Signal: "auditWordCount", Buckets: []Bucket{AtLeast(2001, 20), AtLeast(1001, 10), Below(500, -20)}},
			{Signal: "introduction", Buckets: []Bucket{Exactly(1, 5)}},
			{Signal: "conclusion", Buckets: []Bucket{Exactly(1, 5)}},
			{Signal: "outlineHeadings", Buckets: []Bucket{AtLeast(6, 10)}},
		},
	}
)

// PlatformProfile adjusts the geo score for one AI assistant: the named
// signal multiplied by Weight is added and the result capped at 100.
type PlatformProfile struct {
	Name   string
	Signal string
	Weight int
}

// Apply returns the platform visibility for a page with the given geo score.
func (p PlatformProfile) Apply(geoScore int, s *PageSignals) int {
	v, err := SignalValue(p.Signal, s)
	if err != nil {
		return clamp(geoScore, 0, 100)
	}
	return clamp(geoScore+v*p.Weight, 0, 100)
}

var (
	Perplexity = PlatformProfile{Name: "Perplexity", Signal: "citations", Weight: 3}
	ChatGPT    = PlatformProfile{Name: "ChatGPT", Signal: "faqSections", Weight: 5}
	Claude     = PlatformProfile{Name: "Claude", Signal: "statistics", Weight: 2}
	Gemini     = PlatformProfile{Name: "Gemini", Signal: "hasSchema", Weight: 10}
	BingChat   = PlatformProfile{Name: "Bing Chat", Signal: "hasMetaDescription", Weight: 10}
)

// TrackedPlatforms lists the assistants reported by the visibility tracker, in response order.
var TrackedPlatforms = []PlatformProfile{ChatGPT, Claude, Perplexity, BingChat, Gemini}

// Visibility computes the analyze-website aiVisibility block.
func Visibility(geoScore int, s *PageSignals) AIVisibility {
	return AIVisibility{
		Perplexity: Perplexity.Apply(geoScore, s),
		ChatGPT:    ChatGPT.Apply(geoScore, s),
		Claude:     Claude.Apply(geoScore, s),
		Gemini:     Gemini.Apply(geoScore, s),
	}
}
