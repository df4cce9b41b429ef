package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
)

// mockStore implements database.Store for tests. Unset function fields
// fail with domain.ErrNotFound.
type mockStore struct {
	tenants map[string]*tenant.Tenant // by name

	listFn      func(ctx context.Context) ([]tenant.Tenant, error)
	getFn       func(ctx context.Context, id string) (*tenant.Tenant, error)
	createFn    func(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	provisionFn func(ctx context.Context, id string) (*tenant.Tenant, error)
	byNameErr   error

	byNameCalls int
}

func (m *mockStore) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	out := make([]tenant.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockStore) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetTenantByName(_ context.Context, name string) (*tenant.Tenant, error) {
	m.byNameCalls++
	if m.byNameErr != nil {
		return nil, m.byNameErr
	}
	if t, ok := m.tenants[name]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ProvisionTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	if m.provisionFn != nil {
		return m.provisionFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func activeTenant(name string) *tenant.Tenant {
	return &tenant.Tenant{ID: "id-" + name, Name: name, Status: tenant.StatusActive}
}

func preparingTenant(name string) *tenant.Tenant {
	return &tenant.Tenant{ID: "id-" + name, Name: name, Status: tenant.StatusPreparing}
}

func TestCheckActiveStates(t *testing.T) {
	store := &mockStore{tenants: map[string]*tenant.Tenant{
		"acme": activeTenant("acme"),
		"beta": preparingTenant("beta"),
	}}
	gate := NewTenantGate(store)
	ctx := context.Background()

	st, err := gate.CheckActive(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Found || !st.Active || st.Tenant == nil {
		t.Errorf("active tenant: %+v", st)
	}

	st, err = gate.CheckActive(ctx, "beta")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Found || st.Active {
		t.Errorf("preparing tenant: %+v", st)
	}

	st, err = gate.CheckActive(ctx, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if st.Found || st.Active {
		t.Errorf("unknown tenant: %+v", st)
	}
}

func TestCheckActiveQueriesFreshEachCall(t *testing.T) {
	store := &mockStore{tenants: map[string]*tenant.Tenant{"acme": activeTenant("acme")}}
	gate := NewTenantGate(store)
	ctx := context.Background()

	if _, err := gate.CheckActive(ctx, "acme"); err != nil {
		t.Fatal(err)
	}
	store.tenants["acme"].Status = tenant.StatusPreparing
	st, err := gate.CheckActive(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if st.Active {
		t.Error("gate must observe the store's current state, not a cached one")
	}
	if store.byNameCalls != 2 {
		t.Errorf("byNameCalls = %d, want 2", store.byNameCalls)
	}
}

func TestCheckActiveStoreFailure(t *testing.T) {
	store := &mockStore{byNameErr: errors.New("connection refused")}
	gate := NewTenantGate(store)

	if _, err := gate.CheckActive(context.Background(), "acme"); err == nil {
		t.Fatal("expected store failure to surface")
	}
}
