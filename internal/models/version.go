package models

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Agent          string `json:"agent"`
	Version        string `json:"version"`
	DeploymentMode string `json:"deployment_mode"`
}
