package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geo-platform/backend/analyzer"
	"github.com/geo-platform/backend/keywords"
	"github.com/geo-platform/backend/middleware"
	"github.com/geo-platform/backend/stats"
	"github.com/geo-platform/backend/visibility"
)

type urlRequest struct {
	URL string `json:"url" binding:"required"`
}

type domainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

type keywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func failure(c *gin.Context, msg, details string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": details})
}

func (s *Server) geoAudit(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "URL is required")
		return
	}
	c.Set(middleware.TargetKey, req.URL)

	report, err := s.deps.Analyzer.Audit(c.Request.Context(), req.URL)
	if err != nil {
		s.logger.Error("geo audit failed", "url", req.URL, "error", err)
		details := err.Error()
		var fetchErr *analyzer.FetchError
		if errors.As(err, &fetchErr) {
			details = fmt.Sprintf("Failed to fetch URL: %d", fetchErr.StatusCode)
		}
		failure(c, "Failed to analyze URL", details)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) analyzeWebsite(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "URL is required")
		return
	}
	c.Set(middleware.TargetKey, req.URL)

	analysis, err := s.deps.Analyzer.AnalyzeWebsite(c.Request.Context(), req.URL)
	if err != nil {
		s.logger.Error("website analysis failed", "url", req.URL, "error", err)
		failure(c, "Failed to analyze website", err.Error())
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) trackVisibility(c *gin.Context) {
	var req domainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Domain is required")
		return
	}
	c.Set(middleware.TargetKey, req.Domain)

	result, err := s.deps.Tracker.Track(c.Request.Context(), req.Domain)
	if errors.Is(err, visibility.ErrInvalidDomain) {
		badRequest(c, "Invalid domain")
		return
	}
	if err != nil {
		s.logger.Error("visibility tracking failed", "domain", req.Domain, "error", err)
		failure(c, "Failed to track visibility", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) visibilityStatus(c *gin.Context) {
	domain := c.Query("domain")
	if domain == "" {
		badRequest(c, "Domain parameter required")
		return
	}

	status, err := s.deps.Tracker.Status(c.Request.Context(), domain)
	if errors.Is(err, visibility.ErrInvalidDomain) {
		badRequest(c, "Invalid domain")
		return
	}
	if err != nil {
		s.logger.Error("visibility status failed", "domain", domain, "error", err)
		failure(c, "Failed to load tracking status", err.Error())
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) researchKeywords(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Keyword is required")
		return
	}
	c.Set(middleware.TargetKey, req.Keyword)

	found, err := s.deps.Keywords.Research(c.Request.Context(), req.Keyword)
	if errors.Is(err, keywords.ErrEmptyKeyword) {
		badRequest(c, "Keyword is required")
		return
	}
	if err != nil {
		s.logger.Error("keyword research failed", "keyword", req.Keyword, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch keywords"})
		return
	}
	if s.deps.Usage != nil {
		s.deps.Usage.Increment(stats.KeywordLookups, 1)
	}
	c.JSON(http.StatusOK, gin.H{"keywords": found})
}
