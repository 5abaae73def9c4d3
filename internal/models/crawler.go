package models

import "strings"

// InvalidURLPrefix marks fetch errors caused by an unparsable URL. The
// pipeline classifies these as terminal before any robots or network work.
const InvalidURLPrefix = "Invalid URL:"

// CrawlResult is the outcome of one fetch attempt. Content is nil when the
// fetch was denied by robots.txt or failed on the network; Error carries the
// failure description in the latter case.
type CrawlResult struct {
	URL             string  `json:"url"`
	AllowedByRobots bool    `json:"allowed_by_robots"`
	Content         *string `json:"content,omitempty"`
	Error           *string `json:"error,omitempty"`
	XRobotsTag      *string `json:"x_robots_tag,omitempty"`
}

// IsInvalidURL reports whether this result failed URL parsing rather than
// fetching.
func (r *CrawlResult) IsInvalidURL() bool {
	return r.Error != nil && strings.HasPrefix(*r.Error, InvalidURLPrefix)
}

// RobotsDirectives holds the per-page indexing directives drawn from
// <meta name="robots"> and the X-Robots-Tag response header.
type RobotsDirectives struct {
	NoIndex  bool `json:"noindex"`
	NoFollow bool `json:"nofollow"`
}

// Merge unions two directive sets; the most restrictive combination wins.
func (d RobotsDirectives) Merge(other RobotsDirectives) RobotsDirectives {
	return RobotsDirectives{
		NoIndex:  d.NoIndex || other.NoIndex,
		NoFollow: d.NoFollow || other.NoFollow,
	}
}
