package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedirectOptions drives the host and path redirects.
type RedirectOptions struct {
	// ApexHosts are the hosts whose www. form is redirected to the bare host.
	ApexHosts []string
	// ComingSoonHost receives the language subdomain redirects.
	ComingSoonHost     string
	LanguageSubdomains []string
	// PlatformSlug maps a requested platform slug to its canonical form.
	PlatformSlug func(slug string) (string, bool)
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// Redirects applies, in order: www to apex (301), language subdomain to the
// coming-soon page (307), platform slug aliases (301). API paths are never redirected.
func Redirects(opts RedirectOptions) gin.HandlerFunc {
	www := make(map[string]string, len(opts.ApexHosts))
	for _, h := range opts.ApexHosts {
		h = strings.ToLower(h)
		www["www."+h] = h
	}
	languages := make(map[string]struct{}, len(opts.LanguageSubdomains))
	for _, l := range opts.LanguageSubdomains {
		languages[strings.ToLower(l)] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.Next()
			return
		}

		host := strings.ToLower(c.Request.Host)
		if h, _, found := strings.Cut(host, ":"); found {
			host = h
		}

		if apex, ok := www[host]; ok {
			target := url.URL{Scheme: requestScheme(c), Host: apex, Path: path, RawQuery: c.Request.URL.RawQuery}
			c.Redirect(http.StatusMovedPermanently, target.String())
			c.Abort()
			return
		}

		subdomain, _, _ := strings.Cut(host, ".")
		if _, ok := languages[subdomain]; ok && opts.ComingSoonHost != "" {
			target := url.URL{
				Scheme:   requestScheme(c),
				Host:     opts.ComingSoonHost,
				Path:     "/coming-soon",
				RawQuery: url.Values{"lang": {subdomain}}.Encode(),
			}
			c.Redirect(http.StatusTemporaryRedirect, target.String())
			c.Abort()
			return
		}

		if opts.PlatformSlug != nil && strings.HasPrefix(path, "/platforms/") {
			slug := strings.TrimSuffix(strings.TrimPrefix(path, "/platforms/"), "/")
			if canonical, ok := opts.PlatformSlug(slug); ok && canonical != slug {
				target := url.URL{Path: "/platforms/" + canonical, RawQuery: c.Request.URL.RawQuery}
				c.Redirect(http.StatusMovedPermanently, target.String())
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
