package models

import "time"

// SettingCrawlingEnabled is the per-tenant kill switch for queue consumption.
// Stored as "true"/"false"; when the row is absent the environment decides
// the default.
const SettingCrawlingEnabled = "crawling_enabled"

// Setting is one per-tenant key/value row.
type Setting struct {
	Key       string    `json:"setting_key"`
	Value     string    `json:"setting_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CrawlingEnabledResponse is the body of GET/PUT /admin/settings/crawling-enabled.
type CrawlingEnabledResponse struct {
	Enabled bool `json:"enabled"`
}

// SetCrawlingEnabledRequest is the body of PUT /admin/settings/crawling-enabled.
type SetCrawlingEnabledRequest struct {
	Enabled bool `json:"enabled"`
}
