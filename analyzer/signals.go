package analyzer

import (
	"net/url"
	"regexp"
	"strings"
)

const faqPatternCap = 5

var (
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\[\d+\]`),
		regexp.MustCompile(`(?i)<cite[^>]*>`),
		regexp.MustCompile(`(?i)References:`),
		regexp.MustCompile(`(?i)Bibliography:`),
		regexp.MustCompile(`(?i)Sources:`),
	}

	statisticPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s*%`),
		regexp.MustCompile(`\$[\d,]+\.?\d*`),
		regexp.MustCompile(`\d{1,3}(,\d{3})+`),
		regexp.MustCompile(`(?i)\d+\s*(million|billion|thousand)`),
		regexp.MustCompile(`(?i)\d+x\s`),
		regexp.MustCompile(`\d+\+`),
	}

	// each pattern contributes at most faqPatternCap matches
	faqPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)frequently asked questions`),
		regexp.MustCompile(`FAQ`),
		regexp.MustCompile(`(?i)<(div|section)[^>]*class="[^"]*faq[^"]*"`),
		regexp.MustCompile(`(?i)Q:\s*<|Question:`),
		regexp.MustCompile(`(?i)A:\s*<|Answer:`),
	}

	headingPatterns = [6]*regexp.Regexp{
		regexp.MustCompile(`(?i)<h1[^>]*>`),
		regexp.MustCompile(`(?i)<h2[^>]*>`),
		regexp.MustCompile(`(?i)<h3[^>]*>`),
		regexp.MustCompile(`(?i)<h4[^>]*>`),
		regexp.MustCompile(`(?i)<h5[^>]*>`),
		regexp.MustCompile(`(?i)<h6[^>]*>`),
	}

	schemaPattern          = regexp.MustCompile(`(?i)<script[^>]*type="application/ld\+json"[^>]*>`)
	titlePattern           = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)
	metaDescriptionPattern = regexp.MustCompile(`(?i)<meta[^>]*name="description"[^>]*content="[^"]+"`)
	imagePattern           = regexp.MustCompile(`(?i)<img[^>]*>`)
	linkPattern            = regexp.MustCompile(`(?i)<a[^>]*href=["']([^"']+)["']`)

	scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockPattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
)

var (
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<ol[^>]*>`),
		regexp.MustCompile(`(?i)<ul[^>]*>`),
	}
	conversationalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)how to`),
		regexp.MustCompile(`(?i)what is`),
		regexp.MustCompile(`(?i)why does`),
		regexp.MustCompile(`(?i)when should`),
		regexp.MustCompile(`(?i)can you`),
		regexp.MustCompile(`(?i)explain`),
		regexp.MustCompile(`(?i)guide to`),
		regexp.MustCompile(`(?i)tips for`),
	}

	qaHeadingPattern     = regexp.MustCompile(`(?i)\?</h[2-6]>`)
	faqMentionPattern    = regexp.MustCompile(`(?i)FAQ|frequently asked|common questions`)
	longQuotePattern     = regexp.MustCompile(`"[^"]{50,}"`)
	bracketCitePattern   = regexp.MustCompile(`\[\d+\]`)
	examplePattern       = regexp.MustCompile(`(?i)example|case study|for instance|such as`)
	codePattern          = regexp.MustCompile(`(?i)<code[^>]*>`)
	definitionPattern    = regexp.MustCompile(`(?i)is defined as|refers to|means that|is a type of`)
	boldPattern          = regexp.MustCompile(`(?i)<strong[^>]*>|<b[^>]*>`)
	tocPattern           = regexp.MustCompile(`(?i)table of contents|toc|contents`)
	introductionPattern  = regexp.MustCompile(`(?i)<h[2-6][^>]*>.*introduction|overview`)
	conclusionPattern    = regexp.MustCompile(`(?i)<h[2-6][^>]*>.*conclusion`)
	openGraphPattern     = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:`)
	twitterCardPattern   = regexp.MustCompile(`(?i)<meta[^>]*name=["']twitter:`)
	articleSchemaMarkers = []string{`"@type":"Article"`, `"@type":"BlogPosting"`}
	faqSchemaMarkers     = []string{`"@type":"FAQPage"`, `"@type":"Question"`}
)

// The audit counts any bare number as a statistic and keeps script text in its word count.
var (
	auditStatisticPattern = regexp.MustCompile(`\d+(\.\d+)?%|\d{1,3}(,\d{3})*(\.\d+)?|\$\d+|€\d+|£\d+`)
	anyTagPattern         = regexp.MustCompile(`<[^>]*>`)
)

func countAll(patterns []*regexp.Regexp, html string) int {
	total := 0
	for _, p := range patterns {
		total += len(p.FindAllStringIndex(html, -1))
	}
	return total
}

func containsAny(html string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(html, m) {
			return true
		}
	}
	return false
}

// Extract runs the pattern battery over html. pageURL decides which links are internal.
func Extract(html, pageURL string) PageSignals {
	signals := PageSignals{
		Citations:          countAll(citationPatterns, html),
		Statistics:         countAll(statisticPatterns, html),
		HasSchema:          schemaPattern.MatchString(html),
		WordCount:          WordCount(html),
		Images:             len(imagePattern.FindAllStringIndex(html, -1)),
		HasMetaDescription: metaDescriptionPattern.MatchString(html),
		Links:              countLinks(html, pageURL),
	}

	for _, p := range faqPatterns {
		signals.FAQSections += min(len(p.FindAllStringIndex(html, -1)), faqPatternCap)
	}

	counts := [6]int{}
	for i, p := range headingPatterns {
		counts[i] = len(p.FindAllStringIndex(html, -1))
	}
	signals.Headings = HeadingCounts{H1: counts[0], H2: counts[1], H3: counts[2], H4: counts[3], H5: counts[4], H6: counts[5]}

	if m := titlePattern.FindStringSubmatch(html); m != nil {
		signals.Title = strings.TrimSpace(m[1])
	}

	signals.Audit = extractAudit(html)
	return signals
}

func extractAudit(html string) AuditSignals {
	return AuditSignals{
		Lists:            countAll(listPatterns, html),
		QAHeadings:       len(qaHeadingPattern.FindAllStringIndex(html, -1)),
		MentionsFAQ:      faqMentionPattern.MatchString(html),
		ReferencesSchema: containsAny(html, "schema.org", "application/ld+json"),
		ArticleSchema:    containsAny(html, articleSchemaMarkers...),
		FAQSchema:        containsAny(html, faqSchemaMarkers...),
		CitationMarkup:   containsAny(html, "<cite", "citation") || bracketCitePattern.MatchString(html),
		Quotes:           containsAny(html, "<blockquote", "<q") || longQuotePattern.MatchString(html),
		Examples:         examplePattern.MatchString(html),
		CodeBlocks:       len(codePattern.FindAllStringIndex(html, -1)),
		Definitions:      definitionPattern.MatchString(html),
		BoldKeywords:     len(boldPattern.FindAllStringIndex(html, -1)),
		Conversational:   countAll(conversationalPatterns, html),
		TableOfContents:  tocPattern.MatchString(html),
		Introduction:     introductionPattern.MatchString(html),
		Conclusion:       conclusionPattern.MatchString(html),
		OpenGraph:        openGraphPattern.MatchString(html),
		TwitterCard:      twitterCardPattern.MatchString(html),
		Statistics:       len(auditStatisticPattern.FindAllStringIndex(html, -1)),
		WordCount:        len(strings.Fields(anyTagPattern.ReplaceAllString(html, " "))),
	}
}

// WordCount strips script and style blocks, turns tags into spaces and counts
// whitespace separated tokens.
func WordCount(html string) int {
	text := scriptBlockPattern.ReplaceAllString(html, "")
	text = styleBlockPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, " ")
	return len(strings.Fields(text))
}

func bareHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func countLinks(html, pageURL string) LinkCounts {
	var counts LinkCounts

	source := ""
	if u, err := url.Parse(NormalizeURL(pageURL)); err == nil {
		source = bareHost(u.Hostname())
	}

	for _, m := range linkPattern.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			counts.Internal++
			continue
		}
		u, err := url.Parse(href)
		if err == nil && source != "" && bareHost(u.Hostname()) == source {
			counts.Internal++
		} else {
			counts.External++
		}
	}
	return counts
}
