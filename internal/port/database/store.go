// Package database defines the tenant store port (interface).
package database

import (
	"context"

	"github.com/smarterbot/smartermcp/internal/domain/tenant"
)

// Store is the port interface for the persistent tenant table.
type Store interface {
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	GetTenantByName(ctx context.Context, name string) (*tenant.Tenant, error)
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	// ProvisionTenant marks a tenant active and stamps provisioned_at.
	ProvisionTenant(ctx context.Context, id string) (*tenant.Tenant, error)
}
