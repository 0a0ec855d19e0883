package analyzer

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// Signal reads one integer feature from a page. Booleans read as 0 or 1.
type Signal func(*PageSignals) int

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// signals is the registry rules refer to by name.
var signals = map[string]Signal{
	"citations":          func(s *PageSignals) int { return s.Citations },
	"statistics":         func(s *PageSignals) int { return s.Statistics },
	"faqSections":        func(s *PageSignals) int { return s.FAQSections },
	"hasSchema":          func(s *PageSignals) int { return flag(s.HasSchema) },
	"h1":                 func(s *PageSignals) int { return s.Headings.H1 },
	"h2":                 func(s *PageSignals) int { return s.Headings.H2 },
	"outlineHeadings":    func(s *PageSignals) int { return s.Headings.Outline() },
	"wordCount":          func(s *PageSignals) int { return s.WordCount },
	"hasMetaDescription": func(s *PageSignals) int { return flag(s.HasMetaDescription) },
	"titleLength":        func(s *PageSignals) int { return utf16Len(s.Title) },

	"lists":            func(s *PageSignals) int { return s.Audit.Lists },
	"faqOrQA":          func(s *PageSignals) int { return flag(s.Audit.MentionsFAQ || s.Audit.QAHeadings > 2) },
	"tableOfContents":  func(s *PageSignals) int { return flag(s.Audit.TableOfContents) },
	"headingDeficit":   func(s *PageSignals) int { return flag(s.Headings.Outline() < s.Audit.WordCount/300) },
	"referencesSchema": func(s *PageSignals) int { return flag(s.Audit.ReferencesSchema) },
	"articleSchema":    func(s *PageSignals) int { return flag(s.Audit.ArticleSchema) },
	"faqSchema":        func(s *PageSignals) int { return flag(s.Audit.FAQSchema) },
	"conversational":   func(s *PageSignals) int { return s.Audit.Conversational },
	"definitions":      func(s *PageSignals) int { return flag(s.Audit.Definitions) },
	"boldKeywords":     func(s *PageSignals) int { return s.Audit.BoldKeywords },
	"citationMarkup":   func(s *PageSignals) int { return flag(s.Audit.CitationMarkup) },
	"quotes":           func(s *PageSignals) int { return flag(s.Audit.Quotes) },
	"examples":         func(s *PageSignals) int { return flag(s.Audit.Examples) },
	"codeBlocks":       func(s *PageSignals) int { return s.Audit.CodeBlocks },
	"introduction":     func(s *PageSignals) int { return flag(s.Audit.Introduction) },
	"auditStatistics":  func(s *PageSignals) int { return s.Audit.Statistics },
	"auditWordCount":   func(s *PageSignals) int { return s.Audit.WordCount },
	"conclusion":       func(s *PageSignals) int { return flag(s.Audit.Conclusion) },
}

// utf16Len counts UTF-16 code units, so an emoji counts as two.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// SignalValue looks up a registered signal by name.
func SignalValue(name string, s *PageSignals) (int, error) {
	fn, ok := signals[name]
	if !ok {
		return 0, fmt.Errorf("unknown signal %q", name)
	}
	return fn(s), nil
}

// Bucket awards Points when the signal value lies in [Min, Max].
type Bucket struct {
	Min    int
	Max    int
	Points int
}

func (b Bucket) matches(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Bucket constructors. Below(n) matches values strictly under n.
func AtLeast(n, points int) Bucket { return Bucket{Min: n, Max: math.MaxInt, Points: points} }
func Below(n, points int) Bucket { return Bucket{Min: math.MinInt, Max: n - 1, Points: points} }
func Between(lo, hi, points int) Bucket { return Bucket{Min: lo, Max: hi, Points: points} }
func Exactly(n, points int) Bucket { return Bucket{Min: n, Max: n, Points: points} }

// Rule reads one signal. Buckets are checked in order and the first match wins.
type Rule struct {
	Signal  string
	Buckets []Bucket
}

// Points returns the contribution of the rule for s.
func (r Rule) Points(s *PageSignals) int {
	fn, ok := signals[r.Signal]
	if !ok {
		return 0
	}
	v := fn(s)
	for _, b := range r.Buckets {
		if b.matches(v) {
			return b.Points
		}
	}
	return 0
}

// RuleTable is a base value plus additive rules, clamped to [0,100].
type RuleTable struct {
	Name  string
	Base  int
	Rules []Rule
}

// Score evaluates the table. It has no side effects.
func (t RuleTable) Score(s *PageSignals) int {
	total := t.Base
	for _, r := range t.Rules {
		total += r.Points(s)
	}
	return clamp(total, 0, 100)
}

// Validate reports rules that refer to unregistered signals.
func (t RuleTable) Validate() error {
	for _, r := range t.Rules {
		if _, ok := signals[r.Signal]; !ok {
			return fmt.Errorf("table %s: unknown signal %q", t.Name, r.Signal)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
