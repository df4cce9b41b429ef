// Package tenant defines the tenant domain model for multi-tenancy.
package tenant

import "time"

// Status represents the lifecycle state of a tenant subscription.
type Status string

const (
	// StatusDraft is a tenant that was registered but never prepared.
	StatusDraft Status = "draft"
	// StatusPreparing is a tenant whose environment is being set up.
	StatusPreparing Status = "preparing"
	// StatusActive is a tenant with an active subscription. Only active
	// tenants pass the dispatch gate.
	StatusActive Status = "active"
)

// Tenant represents a provisioned customer account. Name is the business
// name and is the unique key used by gated actions.
type Tenant struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	RUT             string          `json:"rut,omitempty"`
	Plan            string          `json:"plan,omitempty"`
	Products        []string        `json:"products,omitempty"`
	ServicesEnabled map[string]bool `json:"services_enabled,omitempty"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	ProvisionedAt   *time.Time      `json:"provisioned_at,omitempty"`
}

// Active reports whether the tenant subscription allows gated actions.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// CreateRequest holds the fields required to register a new tenant.
type CreateRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	RUT      string   `json:"rut"`
	Plan     string   `json:"plan"`
	Products []string `json:"products"`
}
