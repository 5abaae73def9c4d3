package models

import "time"

// AllowedDomain is one admission-list row. Only URLs whose host matches a row
// in this table are ever queued.
type AllowedDomain struct {
	Domain  string     `json:"domain"`
	AddedBy string     `json:"added_by,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
	AddedAt *time.Time `json:"added_at,omitempty"`
}

// AddDomainRequest is the body of POST /admin/allowed-domains.
type AddDomainRequest struct {
	Domain string  `json:"domain"`
	Notes  *string `json:"notes,omitempty"`
}

// AddDomainResponse confirms an allow-list insert.
type AddDomainResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Domain  string `json:"domain"`
}

// ListDomainsResponse is the body of GET /admin/allowed-domains.
type ListDomainsResponse struct {
	Domains []AllowedDomain `json:"domains"`
	Count   int             `json:"count"`
}

// DeleteDomainResponse confirms an allow-list removal. Deleting a domain that
// was never listed succeeds; the operation is idempotent.
type DeleteDomainResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Domain  string `json:"domain"`
}
