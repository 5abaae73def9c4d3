package search

import (
	"crypto/md5"
	"encoding/hex"
)

// excerptLength is how much cleaned content is kept as the preview excerpt.
const excerptLength = 500

// DocumentID derives the search document id: the hex MD5 of tenant_id+url in
// multi-tenant mode, of the url alone otherwise. The tenant prefix keeps ids
// from colliding when two tenants crawl the same page. MD5 here is a keying
// hash, not a security primitive; any stable 128-bit hash would do.
func DocumentID(tenantID *string, url string) string {
	keyed := url
	if tenantID != nil {
		keyed = *tenantID + url
	}
	sum := md5.Sum([]byte(keyed))
	return hex.EncodeToString(sum[:])
}

// Excerpt truncates cleaned content for the preview field, respecting rune
// boundaries so multi-byte text is never cut mid-character.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength])
}
