package content

import "strings"

// canonicalPlatforms are served as-is.
var canonicalPlatforms = map[string]struct{}{
	"gpt-4o":          {},
	"claude-4-1-opus": {},
	"gemini-2-5-pro":  {},
	"deepseek-r1":     {},
	"llama-4":         {},
	"openai-o3":       {},
	"chatgpt":         {},
	"claude":          {},
	"perplexity":      {},
	"google-gemini":   {},
}

// platformAliases maps legacy and alternate platform slugs to canonical ones.
var platformAliases = map[string]string{
	"gpt4o":      "gpt-4o",
	"gpt-4-o":    "gpt-4o",
	"chatgpt-4o": "gpt-4o",

	"claude-4-1":    "claude-4-1-opus",
	"claude-opus":   "claude-4-1-opus",
	"claude-4":      "claude-4-1-opus",
	"claude-4-opus": "claude-4-1-opus",

	"gemini":     "gemini-2-5-pro",
	"gemini-pro": "gemini-2-5-pro",
	"gemini-2":   "gemini-2-5-pro",
	"gemini-2-5": "gemini-2-5-pro",
	"gemini-2.5": "gemini-2-5-pro",

	"gemini-1-5-pro": "google-gemini",
	"bard":           "google-gemini",
	"google-bard":    "google-gemini",

	"deepseek":     "deepseek-r1",
	"deepseek-r-1": "deepseek-r1",
	"deep-seek-r1": "deepseek-r1",

	"llama":        "llama-4",
	"llama4":       "llama-4",
	"meta-llama":   "llama-4",
	"meta-llama-4": "llama-4",

	"o3":         "openai-o3",
	"openai-o-3": "openai-o3",
	"openai-03":  "openai-o3",

	"gpt":            "chatgpt",
	"gpt-4":          "chatgpt",
	"gpt-3":          "chatgpt",
	"gpt-3.5":        "chatgpt",
	"gpt-4-turbo":    "chatgpt",
	"openai":         "chatgpt",
	"openai-chatgpt": "chatgpt",

	"claude-2":         "claude",
	"claude-3":         "claude",
	"claude-instant":   "claude",
	"anthropic":        "claude",
	"anthropic-claude": "claude",

	"perplexity-ai":     "perplexity",
	"perplexity-search": "perplexity",

	"copilot":      "microsoft-copilot",
	"bing-chat":    "microsoft-copilot",
	"bing-copilot": "microsoft-copilot",
	"ms-copilot":   "microsoft-copilot",

	"copilot-x":  "github-copilot",
	"gh-copilot": "github-copilot",

	"dalle":    "dall-e",
	"dalle-2":  "dall-e",
	"dalle-3":  "dall-e",
	"dall-e-2": "dall-e",
	"dall-e-3": "dall-e",

	"mj":          "midjourney",
	"mid-journey": "midjourney",

	"jasper-ai": "jasper",
	"jarvis":    "jasper",

	"copyai": "copy-ai",
	"notion": "notion-ai",

	"eleven-labs": "elevenlabs",
	"11labs":      "elevenlabs",

	"runway":    "runwayml",
	"runway-ml": "runwayml",
}

// CanonicalPlatformSlug resolves slug to the slug the platform is served under.
// Canonical slugs resolve to themselves; unknown slugs report false.
func CanonicalPlatformSlug(slug string) (string, bool) {
	if _, ok := canonicalPlatforms[slug]; ok {
		return slug, true
	}
	canonical, ok := platformAliases[strings.ToLower(slug)]
	return canonical, ok
}
