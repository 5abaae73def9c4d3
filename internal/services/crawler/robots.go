package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aptakhin/lala-search/internal/models"
)

// ExtractMetaRobots reads <meta name="robots"> directives from a document.
// The name attribute matches case-insensitively.
func ExtractMetaRobots(html string) models.RobotsDirectives {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.RobotsDirectives{}
	}

	directives := models.RobotsDirectives{}
	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, "robots") {
			return
		}
		content, _ := s.Attr("content")
		directives = directives.Merge(parseRobotsTokens(content))
	})
	return directives
}

// ParseXRobotsTag parses an X-Robots-Tag response header value. A nil header
// yields no directives.
func ParseXRobotsTag(header *string) models.RobotsDirectives {
	if header == nil {
		return models.RobotsDirectives{}
	}
	return parseRobotsTokens(*header)
}

// CombinedDirectives unions the meta-tag and header directives; the most
// restrictive combination wins.
func CombinedDirectives(html string, xRobotsTag *string) models.RobotsDirectives {
	return ExtractMetaRobots(html).Merge(ParseXRobotsTag(xRobotsTag))
}

// parseRobotsTokens interprets a comma-separated directive list. Tokens are
// case-insensitive; "none" means noindex plus nofollow.
func parseRobotsTokens(content string) models.RobotsDirectives {
	directives := models.RobotsDirectives{}
	for _, token := range strings.Split(content, ",") {
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "noindex":
			directives.NoIndex = true
		case "nofollow":
			directives.NoFollow = true
		case "none":
			directives.NoIndex = true
			directives.NoFollow = true
		}
	}
	return directives
}
