package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
	"github.com/ternarybob/arbor"

	"github.com/aptakhin/lala-search/internal/interfaces"
	"github.com/aptakhin/lala-search/internal/models"
)

const (
	// robotsCacheTTL bounds how long a host's robots.txt verdict is reused.
	robotsCacheTTL = 15 * time.Minute

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 * 1024 * 1024
)

// Fetcher retrieves URLs with robots.txt admission. One fetcher serves every
// tenant; robots groups are cached per host so a burst of URLs from one site
// costs a single robots.txt fetch.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	robotsCache *gocache.Cache
	logger      arbor.ILogger
}

// NewFetcher creates a fetcher with the given user agent. Redirects follow
// the HTTP client's default policy.
func NewFetcher(userAgent string, timeout time.Duration, logger arbor.ILogger) interfaces.Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		robotsCache: gocache.New(robotsCacheTTL, 2*robotsCacheTTL),
		logger:      logger,
	}
}

// Fetch retrieves one URL. Failures are reported inside the result so the
// caller can classify them: an unparsable URL short-circuits before any
// network traffic, a robots denial returns AllowedByRobots=false with no
// content, and a network failure returns AllowedByRobots=true with the error
// message set.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.CrawlResult, error) {
	result := &models.CrawlResult{URL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		message := fmt.Sprintf("%s %s", models.InvalidURLPrefix, rawURL)
		result.Error = &message
		return result, nil
	}

	group := f.robotsGroup(ctx, parsed)
	if !group.Test(parsed.RequestURI()) {
		f.logger.Debug().
			Str("url", rawURL).
			Str("user_agent", f.userAgent).
			Msg("URL disallowed by robots.txt")
		return result, nil
	}
	result.AllowedByRobots = true

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		message := err.Error()
		result.Error = &message
		return result, nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		message := fmt.Sprintf("request failed: %v", err)
		result.Error = &message
		return result, nil
	}
	defer resp.Body.Close()

	if tag := resp.Header.Get("X-Robots-Tag"); tag != "" {
		result.XRobotsTag = &tag
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		result.Error = &message
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		message := fmt.Sprintf("failed to read body: %v", err)
		result.Error = &message
		return result, nil
	}

	content := string(body)
	result.Content = &content
	return result, nil
}

// robotsGroup returns the cached robots.txt group for the URL's host,
// fetching and parsing robots.txt on a cache miss. A host whose robots.txt
// is missing or unreachable gets a permissive group; robots failures never
// block a crawl.
func (f *Fetcher) robotsGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	host := u.Scheme + "://" + u.Host
	if cached, found := f.robotsCache.Get(host); found {
		return cached.(*robotstxt.Group)
	}

	group := f.fetchRobotsGroup(ctx, host)
	f.robotsCache.Set(host, group, gocache.DefaultExpiration)
	return group
}

func (f *Fetcher) fetchRobotsGroup(ctx context.Context, origin string) *robotstxt.Group {
	permissive := func() *robotstxt.Group {
		data, _ := robotstxt.FromBytes([]byte(""))
		return data.FindGroup(f.userAgent)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return permissive()
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug().Err(err).Str("origin", origin).Msg("robots.txt unreachable, treating as permissive")
		return permissive()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return permissive()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return permissive()
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		f.logger.Debug().Err(err).Str("origin", origin).Msg("Unparsable robots.txt, treating as permissive")
		return permissive()
	}
	return data.FindGroup(f.userAgent)
}
