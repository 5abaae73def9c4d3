package crawler

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/PuerkitoBio/purell"
)

// ExtractTitle returns the first non-empty <title> text, falling back to the
// first non-empty <h1>. Empty when the document has neither.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := ""
	doc.Find("title").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			title = text
			return false
		}
		return true
	})
	if title != "" {
		return title
	}

	doc.Find("h1").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			title = text
			return false
		}
		return true
	})
	return title
}

// StripTags reduces a document to its visible text: every text node in
// document order, whitespace-normalized and joined with single spaces.
// Script and style bodies are not text and are dropped.
func StripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	// Depth-first descent so text lands in document order; a flat Find("*")
	// groups children per element and reorders text around nested inline
	// tags.
	var parts []string
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(i int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				// Fields also collapses internal runs of whitespace.
				if fields := strings.Fields(c.Text()); len(fields) > 0 {
					parts = append(parts, strings.Join(fields, " "))
				}
				return
			}
			walk(c)
		})
	}
	walk(doc.Selection)
	return strings.Join(parts, " ")
}

// ExtractLinks returns every followable absolute link in the document:
// a[href] resolved against baseURL, minus nofollow links and non-HTTP
// schemes, normalized and deduplicated in sorted order.
func ExtractLinks(html string, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || shouldSkipHref(href) {
			return
		}

		// rel is a space-separated token list; only an exact nofollow
		// token opts the link out, not a substring.
		if rel, ok := s.Attr("rel"); ok && hasRelToken(rel, "nofollow") {
			return
		}

		resolved := resolveHref(href, base)
		if resolved == "" {
			return
		}
		seen[resolved] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// shouldSkipHref filters links that can never be crawled.
func shouldSkipHref(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(href, "#")
}

// hasRelToken reports whether the rel attribute contains the token,
// case-insensitively.
func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// resolveHref resolves href against base and normalizes the result. Returns
// empty for unparsable or non-HTTP targets.
func resolveHref(href string, base *url.URL) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	// Drop fragments; they never change the fetched resource.
	resolved.Fragment = ""
	return purell.NormalizeURL(resolved, purell.FlagsSafe)
}
