package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geo-platform/backend/logging"
)

// TargetKey is the context key handlers use to report the URL or domain they analyzed.
const TargetKey = "analysis.target"

// StatsMiddleware tracks visitors, and tool usage for the given route to tool mapping.
func StatsMiddleware(stats *logging.Statistics, tools map[string]string, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		tool, ok := tools[c.FullPath()]
		if !ok || c.Request.Method != "POST" {
			return
		}
		loadTime := float64(time.Since(start).Milliseconds())
		stats.TrackAnalysis(tool, c.GetString(TargetKey), loadTime, c.Writer.Status() >= 400)

		// Periodically save statistics
		if stats.TotalRequests()%100 == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					logger.Warn("statistics save failed", "error", err)
				}
			}()
		}
	}
}
