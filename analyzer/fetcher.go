package analyzer

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (compatible; GEO-Analyzer/1.0; +https://generative-engine.org)"
	DefaultFetchTimeout = 10 * time.Second
	defaultMaxBodyBytes = 5 * 1024 * 1024
)

// FetchError is returned when the target answers with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch website: %d", e.StatusCode)
}

// TimeoutError is returned when the fetch exceeds its deadline.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

// NetworkError wraps transport failures (DNS, refused connections, TLS).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("could not fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Page is a fetched HTML document.
type Page struct {
	URL        string
	FinalURL   string
	HTML       string
	StatusCode int
	FetchedAt  time.Time
	Latency    time.Duration
}

// FetchOptions controls the HTTP fetcher.
type FetchOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Robots       *RobotsAgent
}

// Fetcher downloads raw HTML with a single GET. There are no retries.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	robots       *RobotsAgent
}

// NewFetcher builds a fetcher, filling in defaults for zero options.
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Fetcher{
		client:       &http.Client{Transport: transport},
		userAgent:    opts.UserAgent,
		timeout:      opts.Timeout,
		maxBodyBytes: opts.MaxBodyBytes,
		robots:       opts.Robots,
	}
}

// Client exposes the underlying HTTP client so the robots agent can share it.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// NormalizeURL prefixes https:// unless the value already carries an http or https scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// Fetch normalizes rawURL and downloads it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target := NormalizeURL(rawURL)
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("invalid url %q", rawURL)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.robots != nil && !f.robots.Allowed(ctx, parsed) {
		return nil, &NetworkError{URL: target, Err: ErrDisallowed}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(ctx, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, f.classify(ctx, target, err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:        target,
		FinalURL:   finalURL,
		HTML:       body,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
		Latency:    time.Since(start),
	}, nil
}

func (f *Fetcher) classify(ctx context.Context, target string, err error) error {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{URL: target, Timeout: f.timeout}
	}
	return &NetworkError{URL: target, Err: err}
}

// readBody undoes content encoding and transcodes the body to UTF-8.
func (f *Fetcher) readBody(resp *http.Response) (string, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	utf8Reader, err := charset.NewReader(reader, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset decode: %w", err)
	}

	body, err := io.ReadAll(io.LimitReader(utf8Reader, f.maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return "", fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes)
	}
	return string(body), nil
}
