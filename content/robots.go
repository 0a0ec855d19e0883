package content

import "fmt"

// aiCrawlers are explicitly welcomed in robots.txt.
var aiCrawlers = []string{"GPTBot", "ChatGPT-User", "CCBot", "anthropic-ai", "Claude-Web"}

// RobotsTxt renders the site's robots.txt.
func RobotsTxt(baseURL string) string {
	body := fmt.Sprintf(`# Generative Engine Optimization Robots.txt
# Allow all crawlers

User-agent: *
Allow: /

# Sitemaps
Sitemap: %[1]s/sitemap.xml
Sitemap: %[1]s/news-sitemap.xml

# Crawl-delay for respectful crawling
Crawl-delay: 1

# Specific rules for AI crawlers`, baseURL)

	for _, agent := range aiCrawlers {
		body += "\nUser-agent: " + agent + "\nAllow: /\n"
	}
	return body[:len(body)-1]
}
