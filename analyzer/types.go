package analyzer

// HeadingCounts holds the number of opening <h1>..<h6> tags.
type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
	H4 int `json:"h4"`
	H5 int `json:"h5"`
	H6 int `json:"h6"`
}

// Total counts every heading level.
func (h HeadingCounts) Total() int {
	return h.H1 + h.H2 + h.H3 + h.H4 + h.H5 + h.H6
}

// Outline counts the h1..h3 headings used for structure checks.
func (h HeadingCounts) Outline() int {
	return h.H1 + h.H2 + h.H3
}

type LinkCounts struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// AuditSignals are the extra markers the geo audit reads.
type AuditSignals struct {
	Lists            int  `json:"lists"`
	QAHeadings       int  `json:"qaHeadings"`
	MentionsFAQ      bool `json:"mentionsFaq"`
	ReferencesSchema bool `json:"referencesSchema"`
	ArticleSchema    bool `json:"articleSchema"`
	FAQSchema        bool `json:"faqSchema"`
	CitationMarkup   bool `json:"citationMarkup"`
	Quotes           bool `json:"quotes"`
	Examples         bool `json:"examples"`
	CodeBlocks       int  `json:"codeBlocks"`
	Definitions      bool `json:"definitions"`
	BoldKeywords     int  `json:"boldKeywords"`
	Conversational   int  `json:"conversational"`
	TableOfContents  bool `json:"tableOfContents"`
	Introduction     bool `json:"introduction"`
	Conclusion       bool `json:"conclusion"`
	OpenGraph        bool `json:"openGraph"`
	TwitterCard      bool `json:"twitterCard"`
	// Statistics and WordCount use the audit's own, broader counting rules.
	Statistics int `json:"statistics"`
	WordCount  int `json:"wordCount"`
}

// PageSignals is everything the pattern extractor counts on one page.
type PageSignals struct {
	Citations          int           `json:"citations"`
	Statistics         int           `json:"statistics"`
	FAQSections        int           `json:"faqSections"`
	HasSchema          bool          `json:"hasSchema"`
	Headings           HeadingCounts `json:"headings"`
	WordCount          int           `json:"wordCount"`
	Links              LinkCounts    `json:"links"`
	Images             int           `json:"images"`
	HasMetaDescription bool          `json:"hasMetaDescription"`
	Title              string        `json:"title"`
	Audit              AuditSignals  `json:"audit"`
}

// HeadingSummary is the heading block of the analyze-website response.
type HeadingSummary struct {
	H1    int `json:"h1"`
	H2    int `json:"h2"`
	H3    int `json:"h3"`
	Total int `json:"total"`
}

type Metrics struct {
	Citations       int            `json:"citations"`
	Statistics      int            `json:"statistics"`
	FAQSections     int            `json:"faqSections"`
	HasSchema       bool           `json:"hasSchema"`
	Headings        HeadingSummary `json:"headings"`
	WordCount       int            `json:"wordCount"`
	MetaDescription bool           `json:"metaDescription"`
	Title           string         `json:"title"`
	Images          int            `json:"images"`
	Links           LinkCounts     `json:"links"`
}

// AIVisibility is the per-assistant visibility estimate.
type AIVisibility struct {
	Perplexity int `json:"perplexity"`
	ChatGPT    int `json:"chatgpt"`
	Claude     int `json:"claude"`
	Gemini     int `json:"gemini"`
}

// WebsiteAnalysis is the analyze-website result.
type WebsiteAnalysis struct {
	URL             string       `json:"url"`
	GeoScore        int          `json:"geoScore"`
	Metrics         Metrics      `json:"metrics"`
	Recommendations []string     `json:"recommendations"`
	AIVisibility    AIVisibility `json:"aiVisibility"`
}

// CategoryResult is one scored category of a geo audit.
type CategoryResult struct {
	Score           int            `json:"score"`
	Category        string         `json:"category"`
	Issues          []string       `json:"issues"`
	Recommendations []string       `json:"recommendations"`
	Details         map[string]any `json:"details"`
}

// AuditReport is the geo-audit result.
type AuditReport struct {
	OverallScore int              `json:"overallScore"`
	Results      []CategoryResult `json:"results"`
	Summary      string           `json:"summary"`
	Timestamp    string           `json:"timestamp"`
}
