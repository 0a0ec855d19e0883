package analyzer

import (
	"math"
	"time"
)

// Summary bands for the overall audit score.
const (
	summaryExcellent = "Excellent GEO optimization! Your content is well-optimized for AI search engines and likely to be cited frequently."
	summaryGood      = "Good foundation with room for improvement. Focus on the recommended areas to boost AI visibility."
	summaryModerate  = "Moderate optimization level. Significant improvements needed in multiple areas for better AI performance."
	summaryPoor      = "Content needs substantial optimization for AI platforms. Start with structural improvements and semantic clarity."
)

// AuditSummary returns the summary sentence for an average category score.
func AuditSummary(avg float64) string {
	switch {
	case avg >= 80:
		return summaryExcellent
	case avg >= 60:
		return summaryGood
	case avg >= 40:
		return summaryModerate
	default:
		return summaryPoor
	}
}

func orDefault(recs []string, fallback string) []string {
	if len(recs) == 0 {
		return []string{fallback}
	}
	return recs
}

func structureResult(s *PageSignals) CategoryResult {
	a := s.Audit
	h := s.Headings
	hasFAQ := a.MentionsFAQ || a.QAHeadings > 2
	deficit := h.Outline() < a.WordCount/300

	issues := []string{}
	if h.H1 == 0 {
		issues = append(issues, "Missing H1 tag")
	}
	if h.H1 > 1 {
		issues = append(issues, "Multiple H1 tags found")
	}
	if h.H2 == 0 {
		issues = append(issues, "No H2 subheadings")
	}
	if !hasFAQ {
		issues = append(issues, "No FAQ section detected")
	}
	if deficit {
		issues = append(issues, "Insufficient heading structure")
	}
	if a.Lists == 0 {
		issues = append(issues, "No lists found for better readability")
	}

	var recs []string
	if h.H1 != 1 {
		recs = append(recs, "Use exactly one H1 tag with your main keyword")
	}
	if h.H2 < 3 {
		recs = append(recs, "Add more H2 subheadings to break up content")
	}
	if !a.MentionsFAQ {
		recs = append(recs, "Add an FAQ section to address common questions")
	}
	if a.Lists < 2 {
		recs = append(recs, "Use numbered or bulleted lists for better scanability")
	}
	if !a.TableOfContents && a.WordCount > 1500 {
		recs = append(recs, "Add a table of contents for long content")
	}

	return CategoryResult{
		Score:           StructureTable.Score(s),
		Category:        StructureTable.Name,
		Issues:          issues,
		Recommendations: orDefault(recs, "Excellent content structure! Maintain current approach"),
		Details: map[string]any{
			"h1Count":       h.H1,
			"h2Count":       h.H2,
			"totalHeadings": h.Outline(),
			"wordCount":     a.WordCount,
			"hasFAQ":        a.MentionsFAQ,
		},
	}
}

func semanticResult(s *PageSignals) CategoryResult {
	a := s.Audit

	issues := []string{}
	if !a.ReferencesSchema {
		issues = append(issues, "No schema markup detected")
	}
	if !a.ArticleSchema && !a.FAQSchema {
		issues = append(issues, "Missing specific schema types")
	}
	if a.Conversational < 3 {
		issues = append(issues, "Limited conversational keywords")
	}
	if !a.Definitions {
		issues = append(issues, "No clear entity definitions found")
	}

	var recs []string
	if !a.ReferencesSchema {
		recs = append(recs, "Add schema.org structured data markup")
	}
	if !a.ArticleSchema {
		recs = append(recs, "Implement Article or BlogPosting schema")
	}
	if a.Conversational < 5 {
		recs = append(recs, "Include more conversational phrases (how to, what is, why does)")
	}
	if !a.Definitions {
		recs = append(recs, "Define key terms and entities clearly in the content")
	}
	if a.BoldKeywords < 5 {
		recs = append(recs, "Bold important keywords and concepts")
	}

	return CategoryResult{
		Score:           SemanticTable.Score(s),
		Category:        SemanticTable.Name,
		Issues:          issues,
		Recommendations: orDefault(recs, "Good semantic optimization! Consider adding more structured data"),
		Details: map[string]any{
			"hasSchema":              a.ReferencesSchema,
			"conversationalKeywords": a.Conversational,
			"definitions":            a.Definitions,
		},
	}
}

func citationsResult(s *PageSignals) CategoryResult {
	a := s.Audit

	issues := []string{}
	if a.Statistics == 0 {
		issues = append(issues, "No statistics or data points found")
	}
	if !a.CitationMarkup {
		issues = append(issues, "No citations or references detected")
	}
	if !a.Quotes {
		issues = append(issues, "No quotes from authorities")
	}
	if !a.Examples {
		issues = append(issues, "Lacking concrete examples")
	}

	var recs []string
	if a.Statistics < 3 {
		recs = append(recs, "Include 3-5 specific statistics with sources")
	}
	if !a.CitationMarkup {
		recs = append(recs, "Add citations to authoritative sources")
	}
	if !a.Quotes {
		recs = append(recs, "Include expert quotes to build authority")
	}
	if !a.Examples {
		recs = append(recs, "Add real-world examples and case studies")
	}

	return CategoryResult{
		Score:           CitationsTable.Score(s),
		Category:        CitationsTable.Name,
		Issues:          issues,
		Recommendations: orDefault(recs, "Strong citation profile! AI platforms will likely reference this content"),
		Details: map[string]any{
			"statistics": a.Statistics,
			"quotes":     a.Quotes,
			"examples":   a.Examples,
		},
	}
}

func depthResult(s *PageSignals) CategoryResult {
	a := s.Audit
	sections := s.Headings.Outline()

	issues := []string{}
	if a.WordCount < 500 {
		issues = append(issues, "Content too short for comprehensive coverage")
	}
	if a.WordCount < 1000 {
		issues = append(issues, "Limited content depth")
	}
	if !a.Introduction {
		issues = append(issues, "Missing clear introduction")
	}
	if !a.Conclusion {
		issues = append(issues, "No conclusion section")
	}

	var recs []string
	if a.WordCount < 1500 {
		recs = append(recs, "Expand content to 1500+ words for better coverage")
	}
	if !a.Introduction {
		recs = append(recs, "Add a clear introduction section")
	}
	if !a.Conclusion {
		recs = append(recs, "Include a conclusion summarizing key points")
	}
	if sections < 5 {
		recs = append(recs, "Add more sections for comprehensive coverage")
	}

	return CategoryResult{
		Score:           DepthTable.Score(s),
		Category:        DepthTable.Name,
		Issues:          issues,
		Recommendations: orDefault(recs, "Excellent content depth! Very comprehensive coverage"),
		Details: map[string]any{
			"wordCount":          a.WordCount,
			"sections":           sections,
			"hasTableOfContents": a.TableOfContents,
		},
	}
}

// BuildAudit builds the four-category geo audit for already extracted signals.
func BuildAudit(s PageSignals, now time.Time) *AuditReport {
	results := []CategoryResult{
		structureResult(&s),
		semanticResult(&s),
		citationsResult(&s),
		depthResult(&s),
	}

	total := 0
	for _, r := range results {
		total += r.Score
	}
	avg := float64(total) / float64(len(results))

	return &AuditReport{
		OverallScore: int(math.Round(avg)),
		Results:      results,
		Summary:      AuditSummary(avg),
		Timestamp:    now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
