package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures everything the GEO platform server needs at start-up.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Stats     StatsConfig     `yaml:"stats"`
	Store     StoreConfig     `yaml:"store"`
	Keywords  KeywordsConfig  `yaml:"keywords"`
	AI        AIConfig        `yaml:"ai"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP listener and gin mode.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	GinMode         string   `yaml:"gin_mode"`
	DevMode         bool     `yaml:"dev_mode"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// SiteConfig describes the public site used in feeds and sitemaps.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"`
	Name    string `yaml:"name"`
}

// ContentConfig points at the JSON content on disk.
type ContentConfig struct {
	BlogDir string `yaml:"blog_dir"`
	DataDir string `yaml:"data_dir"`
}

// FetchConfig controls outbound page fetches for the analysis tools.
type FetchConfig struct {
	UserAgent     string   `yaml:"user_agent"`
	Timeout       Duration `yaml:"timeout"`
	MaxBodyBytes  int64    `yaml:"max_body_bytes"`
	RespectRobots bool     `yaml:"respect_robots"`
}

// RateLimitConfig applies a token bucket per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CacheConfig enables the analysis result cache. A zero TTL disables it.
type CacheConfig struct {
	TTL        Duration `yaml:"ttl"`
	MaxEntries int      `yaml:"max_entries"`
}

// StatsConfig controls where usage statistics are persisted.
type StatsConfig struct {
	DataDir string `yaml:"data_dir"`
}

// StoreConfig selects the SQL database used by the visibility tracker.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// KeywordsConfig points the keyword research tool at its suggestion sources.
type KeywordsConfig struct {
	GoogleURL    string   `yaml:"google_url"`
	WikipediaURL string   `yaml:"wikipedia_url"`
	RedditURL    string   `yaml:"reddit_url"`
	Timeout      Duration `yaml:"timeout"`
}

// AIConfig selects the models used to probe AI platforms. Keys only come from the environment.
type AIConfig struct {
	AnthropicModel string   `yaml:"anthropic_model"`
	OpenAIModel    string   `yaml:"openai_model"`
	AnthropicKey   string   `yaml:"-"`
	OpenAIKey      string   `yaml:"-"`
	ProbeTimeout   Duration `yaml:"probe_timeout"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config populated with the production defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8082",
			GinMode:         "release",
			ShutdownTimeout: DurationFrom(15 * time.Second),
		},
		Site: SiteConfig{
			BaseURL: "https://generative-engine.org",
			Name:    "GEO - Generative Engine Optimization",
		},
		Content: ContentConfig{
			BlogDir: "public/blog-data",
			DataDir: "public/data",
		},
		Fetch: FetchConfig{
			UserAgent:    "Mozilla/5.0 (compatible; GEO-Analyzer/1.0; +https://generative-engine.org)",
			Timeout:      DurationFrom(10 * time.Second),
			MaxBodyBytes: 5 * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
		},
		Stats: StatsConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "data/visibility.db",
		},
		Keywords: KeywordsConfig{
			GoogleURL:    "https://suggestqueries.google.com/complete/search",
			WikipediaURL: "https://en.wikipedia.org/w/api.php",
			RedditURL:    "https://www.reddit.com/search.json",
			Timeout:      DurationFrom(8 * time.Second),
		},
		AI: AIConfig{
			AnthropicModel: "claude-sonnet-4-20250514",
			OpenAIModel:    "gpt-4o",
			ProbeTimeout:   DurationFrom(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadEnv loads .env.development first and falls back to .env.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}
	}
}

// Load reads the optional YAML file at path, applies environment overrides and validates.
// An empty path skips the file and uses the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer fh.Close()
		if err := decodeYAML(fh, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromReader decodes configuration from an arbitrary reader without env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if mode := getenv("GIN_MODE"); mode != "" {
		c.Server.GinMode = mode
	}
	if dev, err := strconv.ParseBool(getenv("DEV_MODE")); err == nil {
		c.Server.DevMode = dev
	}
	if v := getenv("SITE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := getenv("BLOG_DIR"); v != "" {
		c.Content.BlogDir = v
	}
	if v := getenv("DATA_DIR"); v != "" {
		c.Content.DataDir = v
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := getenv("STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	c.AI.AnthropicKey = getenv("ANTHROPIC_API_KEY")
	c.AI.OpenAIKey = getenv("OPENAI_API_KEY")
}

func (c *Config) normalise() {
	c.Site.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Site.BaseURL), "/")
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate enforces the invariants the server relies on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0 (got %s)", c.Server.ShutdownTimeout)
	}
	if c.Site.BaseURL == "" {
		return errors.New("site.base_url must be set")
	}
	if c.Fetch.UserAgent == "" {
		return errors.New("fetch.user_agent must be set")
	}
	if c.Fetch.Timeout.Duration <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0 (got %s)", c.Fetch.Timeout)
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch.max_body_bytes must be > 0 (got %d)", c.Fetch.MaxBodyBytes)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must be >= 0")
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must be >= 0 (got %s)", c.Cache.TTL)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver must be sqlite or postgres (got %q)", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		return errors.New("store.dsn must be set")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
