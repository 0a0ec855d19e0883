package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestBuildAuditEmptyPage(t *testing.T) {
	report := BuildAudit(PageSignals{}, auditTime)

	require.Len(t, report.Results, 4)
	assert.Equal(t, "Content Structure", report.Results[0].Category)
	assert.Equal(t, "Semantic Clarity", report.Results[1].Category)
	assert.Equal(t, "AI Citations", report.Results[2].Category)
	assert.Equal(t, "Content Depth", report.Results[3].Category)

	// 100-20-10, 60, 50, 70-20
	assert.Equal(t, 70, report.Results[0].Score)
	assert.Equal(t, 60, report.Results[1].Score)
	assert.Equal(t, 50, report.Results[2].Score)
	assert.Equal(t, 50, report.Results[3].Score)

	// 230 / 4 = 57.5 rounds up
	assert.Equal(t, 58, report.OverallScore)
	assert.Equal(t, summaryModerate, report.Summary)
	assert.Equal(t, "2025-03-14T09:26:53.000Z", report.Timestamp)

	assert.Contains(t, report.Results[0].Issues, "Missing H1 tag")
	assert.Contains(t, report.Results[0].Issues, "No H2 subheadings")
	assert.NotContains(t, report.Results[0].Issues, "Insufficient heading structure")
	assert.Contains(t, report.Results[2].Issues, "No statistics or data points found")
	assert.Contains(t, report.Results[3].Issues, "Content too short for comprehensive coverage")
}

func TestBuildAuditStrongPage(t *testing.T) {
	s := PageSignals{
		Headings: HeadingCounts{H1: 1, H2: 4, H3: 2},
		Audit: AuditSignals{
			Statistics:       5,
			WordCount:        2100,
			Lists:            2,
			MentionsFAQ:      true,
			TableOfContents:  true,
			ReferencesSchema: true,
			ArticleSchema:    true,
			FAQSchema:        true,
			Conversational:   6,
			Definitions:      true,
			BoldKeywords:     6,
			CitationMarkup:   true,
			Quotes:           true,
			Examples:         true,
			CodeBlocks:       1,
			Introduction:     true,
			Conclusion:       true,
		},
	}

	report := BuildAudit(s, auditTime)
	assert.Equal(t, 100, report.OverallScore)
	assert.Equal(t, summaryExcellent, report.Summary)

	fallbacks := []string{
		"Excellent content structure! Maintain current approach",
		"Good semantic optimization! Consider adding more structured data",
		"Strong citation profile! AI platforms will likely reference this content",
		"Excellent content depth! Very comprehensive coverage",
	}
	for i, r := range report.Results {
		assert.Equal(t, 100, r.Score, r.Category)
		assert.Empty(t, r.Issues, r.Category)
		assert.Equal(t, []string{fallbacks[i]}, r.Recommendations, r.Category)
	}

	assert.Equal(t, 7, report.Results[0].Details["totalHeadings"])
	assert.Equal(t, 7, report.Results[3].Details["sections"])
}

func TestStructureHeadingDeficit(t *testing.T) {
	s := PageSignals{
		Headings: HeadingCounts{H1: 1, H2: 1},
		Audit:    AuditSignals{WordCount: 900},
	}
	// 900/300 = 3 headings expected, 2 present
	r := structureResult(&s)
	assert.Equal(t, 85, r.Score)
	assert.Contains(t, r.Issues, "Insufficient heading structure")

	s.Headings.H3 = 1
	r = structureResult(&s)
	assert.Equal(t, 100, r.Score)
	assert.NotContains(t, r.Issues, "Insufficient heading structure")
}

func TestQAFormatCountsAsFAQ(t *testing.T) {
	s := PageSignals{Headings: HeadingCounts{H1: 1, H2: 3}, Audit: AuditSignals{QAHeadings: 3}}
	r := structureResult(&s)
	assert.Equal(t, 100, r.Score)
	assert.NotContains(t, r.Issues, "No FAQ section detected")
	// recommendation only looks at explicit FAQ mentions
	assert.Contains(t, r.Recommendations, "Add an FAQ section to address common questions")
}

func TestDepthWordCountBands(t *testing.T) {
	for wc, want := range map[int]int{499: 50, 500: 70, 1000: 70, 1001: 80, 2000: 80, 2001: 90} {
		s := PageSignals{Audit: AuditSignals{WordCount: wc}}
		assert.Equal(t, want, DepthTable.Score(&s), "wordCount=%d", wc)
	}
}

func TestAuditSummaryBands(t *testing.T) {
	assert.Equal(t, summaryExcellent, AuditSummary(80))
	assert.Equal(t, summaryGood, AuditSummary(79.75))
	assert.Equal(t, summaryGood, AuditSummary(60))
	assert.Equal(t, summaryModerate, AuditSummary(40))
	assert.Equal(t, summaryPoor, AuditSummary(39.75))
}

func TestAuditCountsBareNumbersAndScriptText(t *testing.T) {
	html := `<html><head><script>var x = 1;</script></head><body>` +
		`<p>In 2023 we surveyed 150 firms across 12 regions and 40 cities</p></body></html>`
	s := Extract(html, "https://example.com")

	assert.Equal(t, 0, s.Statistics)
	assert.Greater(t, s.Audit.Statistics, 3)
	assert.Equal(t, 12, s.WordCount)
	assert.Equal(t, 16, s.Audit.WordCount)

	report := BuildAudit(s, auditTime)
	assert.Equal(t, 70, report.Results[2].Score)
	assert.Equal(t, s.Audit.Statistics, report.Results[2].Details["statistics"])
	assert.Equal(t, 16, report.Results[3].Details["wordCount"])
}
