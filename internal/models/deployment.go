package models

import "fmt"

// DeploymentMode controls single-tenant vs multi-tenant operation.
//
// Single-tenant runs one keyspace per installation, the default for
// self-hosted deployments. Multi-tenant runs one keyspace per customer;
// handlers scope queries to the authenticated tenant's keyspace.
type DeploymentMode string

const (
	DeploymentSingleTenant DeploymentMode = "single_tenant"
	DeploymentMultiTenant  DeploymentMode = "multi_tenant"
)

// ParseDeploymentMode validates a DEPLOYMENT_MODE value. The caller treats an
// error as fatal at startup.
func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch DeploymentMode(s) {
	case DeploymentSingleTenant, DeploymentMultiTenant:
		return DeploymentMode(s), nil
	}
	return "", fmt.Errorf("deployment mode must be 'single_tenant' or 'multi_tenant', got: %q", s)
}

// IsMultiTenant reports whether handlers must resolve a tenant keyspace per
// request.
func (m DeploymentMode) IsMultiTenant() bool {
	return m == DeploymentMultiTenant
}

func (m DeploymentMode) String() string {
	return string(m)
}
