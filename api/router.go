// Package api wires the HTTP routes of the GEO platform.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geo-platform/backend/analyzer"
	"github.com/geo-platform/backend/config"
	"github.com/geo-platform/backend/content"
	"github.com/geo-platform/backend/keywords"
	"github.com/geo-platform/backend/logging"
	"github.com/geo-platform/backend/middleware"
	"github.com/geo-platform/backend/stats"
	"github.com/geo-platform/backend/visibility"
)

// Deps are the services the handlers use. Statistics and Usage are optional.
type Deps struct {
	Config      *config.Config
	Analyzer    *analyzer.Analyzer
	Tracker     *visibility.Tracker
	Keywords    *keywords.Researcher
	Catalog     *content.Catalog
	Statistics  *logging.Statistics
	Usage       *stats.Storage
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// analysisTools maps the tool routes to the names recorded in visitor statistics.
var analysisTools = map[string]string{
	"/api/geo-audit":          "geo-audit",
	"/api/analyze-website":    "analyze-website",
	"/api/visibility-tracker": "visibility-tracker",
	"/api/keywords":           "keywords",
}

// ApexHosts are the production hosts served without a www. prefix.
var ApexHosts = []string{"generative-engine.org", "lookatmyprofile.org"}

// LanguageSubdomains are the language sites that are not live yet.
var LanguageSubdomains = []string{"es", "fr", "de", "pt", "it", "ja", "zh", "ko", "uk"}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Catalog == nil {
		deps.Catalog = content.NewCatalog(deps.Config.Content.DataDir)
	}
	return &Server{deps: deps, logger: logger, now: time.Now}
}

// Router builds the gin engine with middleware and every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(s.logger))
	r.Use(middleware.RequestID(s.logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Redirects(middleware.RedirectOptions{
		ApexHosts:          ApexHosts,
		ComingSoonHost:     ApexHosts[0],
		LanguageSubdomains: LanguageSubdomains,
		PlatformSlug:       content.CanonicalPlatformSlug,
	}))
	if s.deps.Statistics != nil {
		r.Use(middleware.StatsMiddleware(s.deps.Statistics, analysisTools, s.logger))
	}

	r.GET("/feed.xml", s.feed)
	r.GET("/sitemap.xml", s.sitemap)
	r.GET("/news-sitemap.xml", s.newsSitemap)
	r.GET("/robots.txt", s.robots)

	api := r.Group("/api")
	if s.deps.RateLimiter != nil {
		api.Use(s.deps.RateLimiter.RateLimit())
	}
	{
		api.GET("/health", s.health)
		api.GET("/statistics", s.statistics)

		api.POST("/geo-audit", s.geoAudit)
		api.POST("/analyze-website", s.analyzeWebsite)
		api.POST("/visibility-tracker", s.trackVisibility)
		api.GET("/visibility-tracker", s.visibilityStatus)
		api.POST("/keywords", s.researchKeywords)

		api.GET("/geo/tips", s.tips)
		api.GET("/blog", s.listPosts)
		api.GET("/blog/:slug", s.getPost)
		api.GET("/industries", s.listIndustries)
		api.GET("/industries/:slug", s.getIndustry)
		api.GET("/platforms", s.listPlatforms)
		api.GET("/platforms/:slug", s.getPlatform)
		api.GET("/comparisons", s.listComparisons)
		api.GET("/comparisons/:slug", s.getComparison)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) statistics(c *gin.Context) {
	out := gin.H{}
	if s.deps.Statistics != nil {
		for k, v := range s.deps.Statistics.GetStatistics() {
			out[k] = v
		}
	}
	if s.deps.Usage != nil {
		out["usage"] = s.deps.Usage.GetCurrentStats()
		out["months"] = s.deps.Usage.GetAllMonths()
	}
	if s.deps.Analyzer != nil {
		out["cache"] = s.deps.Analyzer.GetCacheStats()
	}
	c.JSON(http.StatusOK, out)
}
