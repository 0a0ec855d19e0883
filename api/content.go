package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geo-platform/backend/content"
)

const (
	cacheControl = "public, max-age=3600, s-maxage=3600"
	topN         = 6
	publication  = "GEO Platform"
)

func (s *Server) feed(c *gin.Context) {
	baseURL := s.deps.Config.Site.BaseURL
	posts, err := content.LoadPosts(s.deps.Config.Content.BlogDir)
	if errors.Is(err, content.ErrNoPosts) {
		c.String(http.StatusNotFound, "No blog posts found")
		return
	}
	if err != nil {
		s.logger.Error("rss feed failed", "error", err)
		c.String(http.StatusInternalServerError, "Error generating RSS feed")
		return
	}

	body, err := content.BuildFeed(baseURL, posts, s.now())
	if err != nil {
		s.logger.Error("rss feed failed", "error", err)
		c.String(http.StatusInternalServerError, "Error generating RSS feed")
		return
	}
	c.Header("Cache-Control", cacheControl)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}

func (s *Server) sitemap(c *gin.Context) {
	baseURL := s.deps.Config.Site.BaseURL
	src := content.LoadSitemapSources(s.deps.Config.Content.BlogDir, s.deps.Catalog, s.logger)
	body, err := content.BuildSitemap(baseURL, src, s.now())
	if err != nil {
		s.logger.Error("sitemap failed", "error", err)
		c.String(http.StatusInternalServerError, "Error generating sitemap")
		return
	}
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "application/xml", body)
}

func (s *Server) newsSitemap(c *gin.Context) {
	posts, err := content.LoadPosts(s.deps.Config.Content.BlogDir)
	if errors.Is(err, content.ErrNoPosts) {
		c.String(http.StatusNotFound, "No blog posts found")
		return
	}
	if err != nil {
		s.logger.Error("news sitemap failed", "error", err)
		c.String(http.StatusInternalServerError, "Error generating news sitemap")
		return
	}

	baseURL := s.deps.Config.Site.BaseURL
	body, err := content.BuildNewsSitemap(baseURL, publication, posts, s.now())
	if err != nil {
		s.logger.Error("news sitemap failed", "error", err)
		c.String(http.StatusInternalServerError, "Error generating news sitemap")
		return
	}
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "application/xml", body)
}

func (s *Server) robots(c *gin.Context) {
	baseURL := s.deps.Config.Site.BaseURL
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, "text/plain", []byte(content.RobotsTxt(baseURL)))
}

func (s *Server) tips(c *gin.Context) {
	c.JSON(http.StatusOK, content.Tips())
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := content.LoadPosts(s.deps.Config.Content.BlogDir)
	if err != nil && !errors.Is(err, content.ErrNoPosts) {
		s.logger.Error("blog listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load blog posts"})
		return
	}
	summaries := content.Summaries(posts)
	c.JSON(http.StatusOK, gin.H{"posts": summaries, "count": len(summaries)})
}

func (s *Server) getPost(c *gin.Context) {
	posts, err := content.LoadPosts(s.deps.Config.Content.BlogDir)
	if err != nil && !errors.Is(err, content.ErrNoPosts) {
		s.logger.Error("blog lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load blog posts"})
		return
	}
	post, err := content.FindPost(posts, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// catalogList answers a catalog listing: filtered by the group query
// parameter, or grouped by category when grouped=true.
func catalogList[T content.Record](s *Server, c *gin.Context, kind, groupParam string, load func() ([]T, error), top func([]T) []T) {
	records, err := load()
	if err != nil {
		s.logger.Error("catalog load failed", "catalog", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + kind})
		return
	}
	if c.Query("grouped") == "true" {
		c.JSON(http.StatusOK, gin.H{"groups": content.GroupByCategory(records), "count": len(records)})
		return
	}
	filtered := content.Filter(records, c.Query(groupParam))
	resp := gin.H{kind: filtered, "count": len(filtered)}
	if top != nil {
		resp["top"] = top(records)
	}
	c.JSON(http.StatusOK, resp)
}

func catalogGet[T content.Record](s *Server, c *gin.Context, kind, notFound string, load func() ([]T, error), slug string) {
	records, err := load()
	if err != nil {
		s.logger.Error("catalog load failed", "catalog", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + kind})
		return
	}
	record, err := content.Find(records, slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) listIndustries(c *gin.Context) {
	catalogList(s, c, "industries", "category", s.deps.Catalog.Industries, func(all []content.Industry) []content.Industry {
		return content.TopIndustries(all, topN)
	})
}

func (s *Server) getIndustry(c *gin.Context) {
	catalogGet(s, c, "industries", "Industry not found", s.deps.Catalog.Industries, c.Param("slug"))
}

func (s *Server) listPlatforms(c *gin.Context) {
	catalogList(s, c, "platforms", "type", s.deps.Catalog.Platforms, func(all []content.Platform) []content.Platform {
		return content.TopPlatforms(all, topN)
	})
}

func (s *Server) getPlatform(c *gin.Context) {
	slug := c.Param("slug")
	if canonical, ok := content.CanonicalPlatformSlug(slug); ok && canonical != slug {
		c.Redirect(http.StatusMovedPermanently, "/api/platforms/"+canonical)
		return
	}
	catalogGet(s, c, "platforms", "Platform not found", s.deps.Catalog.Platforms, slug)
}

func (s *Server) listComparisons(c *gin.Context) {
	catalogList[content.Comparison](s, c, "comparisons", "category", s.deps.Catalog.Comparisons, nil)
}

func (s *Server) getComparison(c *gin.Context) {
	catalogGet(s, c, "comparisons", "Comparison not found", s.deps.Catalog.Comparisons, c.Param("slug"))
}
