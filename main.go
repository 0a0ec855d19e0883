package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/geo-platform/backend/analyzer"
	"github.com/geo-platform/backend/api"
	"github.com/geo-platform/backend/config"
	"github.com/geo-platform/backend/content"
	"github.com/geo-platform/backend/keywords"
	"github.com/geo-platform/backend/logging"
	"github.com/geo-platform/backend/middleware"
	"github.com/geo-platform/backend/stats"
	"github.com/geo-platform/backend/visibility"
)

const statsRetentionMonths = 12

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "geo-platform",
		Short:         "GEO platform backend: content analysis tools, feeds and sitemaps",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "analyze <url>",
			Short: "Score a page the way /api/analyze-website does and print JSON",
			Args:  cobra.ExactArgs(1),
			RunE:  analyzeCmd,
		},
		&cobra.Command{
			Use:   "audit <url>",
			Short: "Run the four-category GEO audit on a page and print JSON",
			Args:  cobra.ExactArgs(1),
			RunE:  auditCmd,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	config.LoadEnv()
	return config.Load(configPath)
}

func fetchOptions(cfg *config.Config) analyzer.FetchOptions {
	opts := analyzer.FetchOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout.Duration,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	}
	if cfg.Fetch.RespectRobots {
		opts.Robots = analyzer.NewRobotsAgent(nil, cfg.Fetch.UserAgent, time.Hour)
	}
	return opts
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCLIAnalyzer(ctx context.Context) (*analyzer.Analyzer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return analyzer.New(ctx, analyzer.Options{
		Fetch:  fetchOptions(cfg),
		Logger: logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format),
	})
}

func analyzeCmd(cmd *cobra.Command, args []string) error {
	a, err := newCLIAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Shutdown()

	result, err := a.AnalyzeWebsite(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analyze %s: %w", args[0], err)
	}
	return printJSON(result)
}

func auditCmd(cmd *cobra.Command, args []string) error {
	a, err := newCLIAnalyzer(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Shutdown()

	report, err := a.Audit(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("audit %s: %w", args[0], err)
	}
	return printJSON(report)
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	usage, err := stats.NewStorage(cfg.Stats.DataDir, logger)
	if err != nil {
		return fmt.Errorf("initialize usage statistics: %w", err)
	}
	usage.Cleanup(statsRetentionMonths)

	statistics, err := logging.NewStatistics(filepath.Join(cfg.Stats.DataDir, "statistics.json"), cfg.Server.DevMode)
	if err != nil {
		return fmt.Errorf("initialize visitor statistics: %w", err)
	}

	geo, err := analyzer.New(ctx, analyzer.Options{
		Fetch:           fetchOptions(cfg),
		CacheTTL:        cfg.Cache.TTL.Duration,
		CacheMaxEntries: cfg.Cache.MaxEntries,
		Stats:           usage,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	store, err := visibility.OpenStore(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("open visibility store: %w", err)
	}

	probers := visibility.NewProbers(visibility.ProbeOptions{
		AnthropicKey:   cfg.AI.AnthropicKey,
		AnthropicModel: cfg.AI.AnthropicModel,
		OpenAIKey:      cfg.AI.OpenAIKey,
		OpenAIModel:    cfg.AI.OpenAIModel,
	})
	logger.Info("visibility tracker configured", "driver", cfg.Store.Driver, "probers", len(probers))

	server := api.NewServer(api.Deps{
		Config:   cfg,
		Analyzer: geo,
		Tracker: visibility.NewTracker(visibility.Options{
			Analyzer:     geo,
			Store:        store,
			Probers:      probers,
			ProbeTimeout: cfg.AI.ProbeTimeout.Duration,
			Stats:        usage,
			Logger:       logger,
		}),
		Keywords: keywords.NewResearcher(keywords.Options{
			GoogleURL:    cfg.Keywords.GoogleURL,
			WikipediaURL: cfg.Keywords.WikipediaURL,
			RedditURL:    cfg.Keywords.RedditURL,
			UserAgent:    "GEO-Platform/1.0",
			Timeout:      cfg.Keywords.Timeout.Duration,
			Logger:       logger,
		}),
		Catalog:     content.NewCatalog(cfg.Content.DataDir),
		Statistics:  statistics,
		Usage:       usage,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	logger.Info("server starting", "addr", ln.Addr().String(), "mode", cfg.Server.GinMode, "site", cfg.Site.BaseURL)
	if err := serveUntilDone(ctx, httpServer, ln, cfg.Server.ShutdownTimeout.Duration, logger); err != nil {
		return err
	}

	if err := statistics.Save(); err != nil {
		logger.Error("failed to save visitor statistics", "error", err)
	}
	if err := usage.Shutdown(); err != nil {
		logger.Error("failed to flush usage statistics", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("failed to close visibility store", "error", err)
	}
	if err := geo.Shutdown(); err != nil {
		logger.Error("failed to release analysis cache", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// serveUntilDone serves on ln until ctx is cancelled and returns only after
// in-flight requests have finished or timeout has passed.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}
