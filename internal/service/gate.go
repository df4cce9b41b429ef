package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
	"github.com/smarterbot/smartermcp/internal/port/database"
)

// TenantStatus is the outcome of a tenant gate check. Found and Active are
// distinct so the boundary can answer 404 vs 403.
type TenantStatus struct {
	Found  bool
	Active bool
	Tenant *tenant.Tenant
}

// TenantGate answers whether a tenant may execute actions. Every check is a
// fresh store query; subscription state is never cached.
type TenantGate struct {
	store database.Store
}

// NewTenantGate creates a tenant gate backed by the given store.
func NewTenantGate(store database.Store) *TenantGate {
	return &TenantGate{store: store}
}

// CheckActive looks a tenant up by name and reports its subscription state.
// An unknown tenant is not an error.
func (g *TenantGate) CheckActive(ctx context.Context, name string) (TenantStatus, error) {
	t, err := g.store.GetTenantByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TenantStatus{}, nil
		}
		return TenantStatus{}, fmt.Errorf("tenant lookup %q: %w", name, err)
	}
	return TenantStatus{Found: true, Active: t.Active(), Tenant: t}, nil
}
