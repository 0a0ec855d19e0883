package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/geo-platform/backend/stats"
)

// CacheStats provides statistics about the analyzer's cache
type CacheStats struct {
	Enabled bool          `json:"enabled"`
	Entries int           `json:"entries"`
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	TTL     time.Duration `json:"ttl"`
}

// Options configures an Analyzer. A zero CacheTTL disables caching; a nil
// Stats skips usage counting.
type Options struct {
	Fetch           FetchOptions
	CacheTTL        time.Duration
	CacheMaxEntries int
	Stats           *stats.Storage
	Logger          *slog.Logger
}

// Analyzer runs the fetch, extract and score pipeline for the analysis routes.
type Analyzer struct {
	fetcher  *Fetcher
	cache    *bigcache.BigCache
	cacheTTL time.Duration
	stats    *stats.Storage
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new Analyzer instance
func New(ctx context.Context, opts Options) (*Analyzer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Analyzer{
		fetcher:  NewFetcher(opts.Fetch),
		cacheTTL: opts.CacheTTL,
		stats:    opts.Stats,
		logger:   logger,
		now:      time.Now,
	}

	if opts.CacheTTL > 0 {
		cfg := bigcache.DefaultConfig(opts.CacheTTL)
		cfg.CleanWindow = time.Minute
		cfg.Verbose = false
		cfg.MaxEntriesInWindow = 1000
		if opts.CacheMaxEntries > 0 {
			cfg.MaxEntriesInWindow = opts.CacheMaxEntries
		}
		cache, err := bigcache.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize analysis cache: %w", err)
		}
		a.cache = cache
	}

	return a, nil
}

// Fetcher exposes the configured fetcher.
func (a *Analyzer) Fetcher() *Fetcher {
	return a.fetcher
}

func (a *Analyzer) count(c stats.Counter) {
	if a.stats != nil {
		a.stats.Increment(c, 1)
	}
}

// Signals fetches rawURL and extracts its page signals, consulting the cache first.
// It returns the normalized URL alongside the signals.
func (a *Analyzer) Signals(ctx context.Context, rawURL string) (string, PageSignals, error) {
	target := NormalizeURL(rawURL)

	if signals, ok := a.cached(target); ok {
		a.count(stats.CacheHits)
		return target, signals, nil
	}
	if a.cache != nil {
		a.count(stats.CacheMisses)
	}

	_, signals, err := a.inspect(ctx, target)
	if err != nil {
		return target, PageSignals{}, err
	}
	return target, signals, nil
}

// Inspect fetches rawURL, bypassing the cache, and returns the page along with its signals.
func (a *Analyzer) Inspect(ctx context.Context, rawURL string) (*Page, PageSignals, error) {
	return a.inspect(ctx, NormalizeURL(rawURL))
}

func (a *Analyzer) inspect(ctx context.Context, target string) (*Page, PageSignals, error) {
	page, err := a.fetcher.Fetch(ctx, target)
	if err != nil {
		a.count(stats.FetchFailures)
		a.logger.Warn("fetch failed", "url", target, "error", err)
		return nil, PageSignals{}, err
	}

	signals := Extract(page.HTML, target)
	a.logger.Debug("page analyzed",
		"url", target,
		"status", page.StatusCode,
		"latency_ms", page.Latency.Milliseconds(),
		"words", signals.WordCount)

	a.store(target, signals)
	return page, signals, nil
}

func (a *Analyzer) cached(key string) (PageSignals, bool) {
	if a.cache == nil {
		return PageSignals{}, false
	}
	data, err := a.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			a.logger.Warn("analysis cache read failed", "key", key, "error", err)
		}
		return PageSignals{}, false
	}
	var signals PageSignals
	if err := json.Unmarshal(data, &signals); err != nil {
		return PageSignals{}, false
	}
	return signals, true
}

func (a *Analyzer) store(key string, signals PageSignals) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return
	}
	if err := a.cache.Set(key, data); err != nil {
		a.logger.Warn("analysis cache write failed", "key", key, "error", err)
	}
}

// AnalyzeWebsite runs the analyze-website pipeline for rawURL.
func (a *Analyzer) AnalyzeWebsite(ctx context.Context, rawURL string) (*WebsiteAnalysis, error) {
	target, signals, err := a.Signals(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	a.count(stats.WebsiteAnalyses)
	return AnalyzeSignals(target, signals), nil
}

// Audit runs the four-category geo audit for rawURL.
func (a *Analyzer) Audit(ctx context.Context, rawURL string) (*AuditReport, error) {
	_, signals, err := a.Signals(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	a.count(stats.GeoAudits)
	return BuildAudit(signals, a.now()), nil
}

// GetCacheStats returns statistics about the analysis cache
func (a *Analyzer) GetCacheStats() CacheStats {
	if a.cache == nil {
		return CacheStats{}
	}
	s := a.cache.Stats()
	return CacheStats{
		Enabled: true,
		Entries: a.cache.Len(),
		Hits:    s.Hits,
		Misses:  s.Misses,
		TTL:     a.cacheTTL,
	}
}

// Shutdown releases the cache.
func (a *Analyzer) Shutdown() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
