package content

type Tip struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
}

var tips = []Tip{
	{1, "Optimize for AI Context", "Structure your content to provide clear context and relevance for AI models", "content", "lightbulb"},
	{2, "Use Semantic Markup", "Implement structured data and semantic HTML to help AI understand your content", "technical", "code"},
	{3, "Focus on Authority", "Build topical authority with comprehensive, well-researched content", "strategy", "star"},
	{4, "Natural Language Optimization", "Write in conversational tone that aligns with how users query AI systems", "content", "chat"},
	{5, "Entity Recognition", "Clearly define and relate entities, concepts, and their relationships", "technical", "link"},
	{6, "Multi-Modal Content", "Include diverse content types - text, images, videos, and structured data", "strategy", "grid"},
}

// Tips returns a copy of the GEO tips list.
func Tips() []Tip {
	return append([]Tip(nil), tips...)
}
