package content

import (
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	FeedTitle       = "GEO - Generative Engine Optimization"
	FeedDescription = "Master the art of Generative Engine Optimization with cutting-edge strategies and insights for AI-powered search"
	feedGenerator   = "GEO Platform RSS Generator"
	feedMaxItems    = 20
	feedTTLMinutes  = 3600
	rssDateLayout   = "Mon, 02 Jan 2006 15:04:05 GMT"
)

var feedCategories = []string{"Technology", "SEO", "AI", "Marketing"}

type rssFeed struct {
	XMLName      xml.Name   `xml:"rss"`
	Version      string     `xml:"version,attr"`
	ContentNS    string     `xml:"xmlns:content,attr"`
	DublinCoreNS string     `xml:"xmlns:dc,attr"`
	AtomNS       string     `xml:"xmlns:atom,attr"`
	MediaNS      string     `xml:"xmlns:media,attr"`
	Channel      rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string     `xml:"title"`
	Description    string     `xml:"description"`
	Link           string     `xml:"link"`
	Language       string     `xml:"language"`
	LastBuildDate  string     `xml:"lastBuildDate"`
	PubDate        string     `xml:"pubDate"`
	TTL            int        `xml:"ttl"`
	AtomLink       atomLink   `xml:"atom:link"`
	Copyright      string     `xml:"copyright"`
	ManagingEditor string     `xml:"managingEditor"`
	WebMaster      string     `xml:"webMaster"`
	Categories     []string   `xml:"category"`
	Generator      string     `xml:"generator"`
	Docs           string     `xml:"docs"`
	Image          rssImage   `xml:"image"`
	Items          []*rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width"`
	Height int    `xml:"height"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssContent struct {
	Value string `xml:",cdata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

type rssItem struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Link        string       `xml:"link"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Creator     string       `xml:"dc:creator"`
	Categories  []string     `xml:"category"`
	Content     rssContent   `xml:"content:encoded"`
	Enclosure   rssEnclosure `xml:"enclosure"`
}

// BuildFeed renders the RSS 2.0 document for the newest posts. posts must
// already be sorted newest first.
func BuildFeed(baseURL string, posts []BlogPost, now time.Time) ([]byte, error) {
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	now = now.UTC()
	stamp := now.Format(rssDateLayout)

	feed := rssFeed{
		Version:      "2.0",
		ContentNS:    "http://purl.org/rss/1.0/modules/content/",
		DublinCoreNS: "http://purl.org/dc/elements/1.1/",
		AtomNS:       "http://www.w3.org/2005/Atom",
		MediaNS:      "http://search.yahoo.com/mrss/",
		Channel: rssChannel{
			Title:          FeedTitle,
			Description:    FeedDescription,
			Link:           baseURL,
			Language:       "en-US",
			LastBuildDate:  stamp,
			PubDate:        stamp,
			TTL:            feedTTLMinutes,
			AtomLink:       atomLink{Href: baseURL + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
			Copyright:      fmt.Sprintf("Copyright %d GEO Platform", now.Year()),
			ManagingEditor: "team@generative-engine.org (GEO Content Team)",
			WebMaster:      "tech@generative-engine.org (GEO Tech Team)",
			Categories:     feedCategories,
			Generator:      feedGenerator,
			Docs:           "https://www.rssboard.org/rss-specification",
			Image: rssImage{
				URL:    baseURL + "/logo.png",
				Title:  FeedTitle,
				Link:   baseURL,
				Width:  144,
				Height: 144,
			},
		},
	}

	for _, post := range posts[:min(len(posts), feedMaxItems)] {
		feed.Channel.Items = append(feed.Channel.Items, feedItem(baseURL, post))
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func feedItem(baseURL string, post BlogPost) *rssItem {
	link := baseURL + "/" + post.Slug
	return &rssItem{
		Title:       post.Title,
		Description: post.Description,
		Link:        link,
		GUID:        rssGUID{IsPermaLink: true, Value: link},
		PubDate:     post.Published().Format(rssDateLayout),
		Creator:     post.Author.Name,
		Categories:  post.Tags,
		Content:     rssContent{Value: itemBody(link, post)},
		Enclosure: rssEnclosure{
			URL:  baseURL + "/api/og?title=" + url.QueryEscape(post.Title),
			Type: "image/png",
		},
	}
}

var numbers = message.NewPrinter(language.English)

// itemBody is the HTML placed in content:encoded.
func itemBody(link string, post BlogPost) string {
	var b strings.Builder

	summary := post.Excerpt
	if summary == "" {
		summary = post.Description
	}
	b.WriteString("<h2>Summary</h2>\n<p>" + html.EscapeString(summary) + "</p>\n")

	if len(post.Keywords) > 0 {
		b.WriteString("<h2>Key Topics</h2>\n<ul>\n")
		for _, k := range post.Keywords[:min(len(post.Keywords), 5)] {
			b.WriteString("<li>" + html.EscapeString(k) + "</li>\n")
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("<h2>Article Content</h2>\n")
	b.WriteString(post.Content)
	b.WriteString("\n<hr/>\n")
	fmt.Fprintf(&b, "<p><strong>Reading Time:</strong> %d minutes</p>\n", post.Metrics.ReadingTime)
	b.WriteString("<p><strong>Word Count:</strong> " + numbers.Sprintf("%d", post.Metrics.WordCount) + " words</p>\n")
	b.WriteString("<p><strong>Author:</strong> " + html.EscapeString(post.Author.Name) + "</p>\n")
	if post.Author.Bio != "" {
		b.WriteString("<p><em>" + html.EscapeString(post.Author.Bio) + "</em></p>\n")
	}
	fmt.Fprintf(&b, "<p>Read the full article at: <a href=\"%s\">%s</a></p>", link, link)
	return b.String()
}
