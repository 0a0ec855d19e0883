package analyzer

import "fmt"

// Recommendations maps the deficits of a page to the analyze-website advice, highest priority first.
func Recommendations(s *PageSignals) []string {
	recs := make([]string, 0, 7)

	if s.Citations < 3 {
		recs = append(recs, fmt.Sprintf("Add %d more citations to authoritative sources for +40%% AI visibility", 3-s.Citations))
	}
	if s.Statistics < 5 {
		recs = append(recs, fmt.Sprintf("Include %d more statistics or data points for +32%% visibility boost", 5-s.Statistics))
	}
	if s.FAQSections == 0 {
		recs = append(recs, "Add a FAQ section to improve ChatGPT visibility by up to 35%")
	}
	if !s.HasSchema {
		recs = append(recs, "Implement schema.org markup for better AI comprehension")
	}
	if s.WordCount < 800 {
		recs = append(recs, fmt.Sprintf("Increase content length from %d to 1500+ words for comprehensive coverage", s.WordCount))
	}
	if s.Headings.H1 == 0 {
		recs = append(recs, "Add a clear H1 heading for better content structure")
	}
	if !s.HasMetaDescription {
		recs = append(recs, "Add a meta description for better search snippets")
	}
	return recs
}

// AnalyzeSignals scores already extracted signals. Fetching is not involved,
// so the same signals always produce the same analysis.
func AnalyzeSignals(pageURL string, s PageSignals) *WebsiteAnalysis {
	score := GeoScoreTable.Score(&s)
	return &WebsiteAnalysis{
		URL:      pageURL,
		GeoScore: score,
		Metrics: Metrics{
			Citations:   s.Citations,
			Statistics:  s.Statistics,
			FAQSections: s.FAQSections,
			HasSchema:   s.HasSchema,
			Headings: HeadingSummary{
				H1:    s.Headings.H1,
				H2:    s.Headings.H2,
				H3:    s.Headings.H3,
				Total: s.Headings.Total(),
			},
			WordCount:       s.WordCount,
			MetaDescription: s.HasMetaDescription,
			Title:           s.Title,
			Images:          s.Images,
			Links:           s.Links,
		},
		Recommendations: Recommendations(&s),
		AIVisibility:    Visibility(score, &s),
	}
}
