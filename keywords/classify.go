package keywords

import "strings"

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func wordCount(k string) int {
	return len(strings.Split(k, " "))
}

// SearchVolume estimates a volume band from the keyword length.
func SearchVolume(k string) string {
	switch n := wordCount(k); {
	case n <= 2:
		return "10K+"
	case n <= 4:
		return "1K-5K"
	case n <= 6:
		return "500-1K"
	default:
		return "100-500"
	}
}

func Difficulty(k string) string {
	lower := strings.ToLower(k)
	switch {
	case containsAny(lower, "best", "top", "review", "vs", "comparison"):
		return "High"
	case containsAny(lower, "how to", "what is", "tutorial", "guide", "tips"):
		return "Low"
	default:
		return "Medium"
	}
}

// Intent checks the rules in order; the first match wins.
func Intent(k string) string {
	lower := strings.ToLower(k)
	switch {
	case containsAny(lower, "how", "tutorial", "guide"):
		return "Tutorial"
	case containsAny(lower, "what", "why", "when"):
		return "Informational"
	case containsAny(lower, "vs", "comparison", "alternative"):
		return "Comparative"
	case containsAny(lower, "best", "top", "review"):
		return "Commercial"
	case containsAny(lower, "case study", "example"):
		return "Research"
	default:
		return "General"
	}
}

var conversationalPrefixes = []string{"how to", "what is", "why does", "can you", "explain"}

// AIOptimized reports whether k names an AI product, reads like a prompt or
// is a long-tail phrase of five words or more.
func AIOptimized(k string) bool {
	lower := strings.ToLower(k)
	if containsAny(lower, "chatgpt", "claude", "ai", "llm", "generative", "perplexity", "gpt") {
		return true
	}
	for _, p := range conversationalPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return wordCount(k) >= 5
}
