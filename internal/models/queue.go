package models

import "time"

// CrawlQueueEntry represents one intent to fetch a URL. The composite key
// (priority, scheduled_at, url) identifies at most one row; retries insert a
// new row with an advanced scheduled_at and attempt count rather than
// mutating the old one.
type CrawlQueueEntry struct {
	Priority      int        `json:"priority"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	URL           string     `json:"url"`
	Domain        string     `json:"domain"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	AttemptCount  int        `json:"attempt_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AddToQueueRequest is the body of POST /queue/add.
type AddToQueueRequest struct {
	URL      string `json:"url"`
	Priority *int   `json:"priority,omitempty"` // defaults to 1
}

// AddToQueueResponse confirms a queued URL.
type AddToQueueResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
}
