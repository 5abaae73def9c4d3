package models

import "time"

// CrawlErrorType classifies a pipeline failure. The string values are
// persisted in the error_type column and drive the retry decision.
type CrawlErrorType string

const (
	ErrorTypeFetch            CrawlErrorType = "fetch"
	ErrorTypeStorage          CrawlErrorType = "storage"
	ErrorTypeDatabase         CrawlErrorType = "database"
	ErrorTypeSearchIndex      CrawlErrorType = "search_index"
	ErrorTypeRobotsDisallowed CrawlErrorType = "robots_disallowed"
	ErrorTypeInvalidURL       CrawlErrorType = "invalid_url"
	ErrorTypeUnknown          CrawlErrorType = "unknown"
)

// IsTerminal reports whether this failure kind should never be retried.
// A robots denial or an unparsable URL will not heal on its own.
func (t CrawlErrorType) IsTerminal() bool {
	return t == ErrorTypeRobotsDisallowed || t == ErrorTypeInvalidURL
}

// ParseCrawlErrorType maps a stored column value back to a CrawlErrorType.
func ParseCrawlErrorType(s string) CrawlErrorType {
	switch CrawlErrorType(s) {
	case ErrorTypeFetch, ErrorTypeStorage, ErrorTypeDatabase, ErrorTypeSearchIndex,
		ErrorTypeRobotsDisallowed, ErrorTypeInvalidURL:
		return CrawlErrorType(s)
	}
	return ErrorTypeUnknown
}

// CrawlError is one recorded pipeline failure, keyed by (domain, occurred_at).
type CrawlError struct {
	Domain       string         `json:"domain"`
	OccurredAt   time.Time      `json:"occurred_at"`
	URL          string         `json:"url"`
	ErrorType    CrawlErrorType `json:"error_type"`
	ErrorMessage string         `json:"error_message"`
	AttemptCount int            `json:"attempt_count"`
	StackTrace   *string        `json:"stack_trace,omitempty"`
}
