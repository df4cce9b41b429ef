package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
	"github.com/smarterbot/smartermcp/internal/port/messagequeue"
)

type mockPublisher struct {
	published []struct {
		subject string
		data    []byte
	}
	err error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data []byte) error {
	m.published = append(m.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mockProvisioner struct {
	dbName string
	err    error
	calls  int
}

func (m *mockProvisioner) CreateTenantDatabase(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.dbName, m.err
}

func (m *mockProvisioner) TenantURL(name string) string {
	return "https://" + name + ".odoo.smarterbot.store"
}

func TestCreateTenantPublishesEvent(t *testing.T) {
	created := &tenant.Tenant{ID: "t-1", Name: "acme", Status: tenant.StatusPreparing, CreatedAt: time.Now()}
	store := &mockStore{
		createFn: func(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
			if req.Name != "acme" {
				t.Errorf("store got name %q", req.Name)
			}
			return created, nil
		},
	}
	events := &mockPublisher{}
	svc := NewTenantService(store, nil, events)

	got, err := svc.Create(context.Background(), tenant.CreateRequest{Name: "acme", Email: "ops@acme.cl"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "t-1" {
		t.Errorf("tenant = %+v", got)
	}

	if len(events.published) != 1 {
		t.Fatalf("published %d events, want 1", len(events.published))
	}
	if events.published[0].subject != messagequeue.SubjectTenantCreated {
		t.Errorf("subject = %q", events.published[0].subject)
	}
	var ev map[string]any
	if err := json.Unmarshal(events.published[0].data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev["name"] != "acme" || ev["status"] != "preparing" {
		t.Errorf("event = %v", ev)
	}
}

func TestCreateTenantValidation(t *testing.T) {
	svc := NewTenantService(&mockStore{}, nil, nil)

	if _, err := svc.Create(context.Background(), tenant.CreateRequest{Email: "a@b.cl"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing name: err = %v", err)
	}
	if _, err := svc.Create(context.Background(), tenant.CreateRequest{Name: "acme"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing email: err = %v", err)
	}
}

func TestProvisionMarksActiveAndPublishes(t *testing.T) {
	prep := preparingTenant("acme")
	active := activeTenant("acme")
	store := &mockStore{
		tenants: map[string]*tenant.Tenant{"acme": prep},
		provisionFn: func(_ context.Context, id string) (*tenant.Tenant, error) {
			if id != prep.ID {
				t.Errorf("provision id = %q", id)
			}
			return active, nil
		},
	}
	prov := &mockProvisioner{dbName: "acme_1700000000000"}
	events := &mockPublisher{}
	svc := NewTenantService(store, prov, events)

	got, err := svc.Provision(context.Background(), prep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Active() {
		t.Errorf("tenant not active: %+v", got)
	}
	if prov.calls != 1 {
		t.Errorf("provisioner calls = %d, want 1", prov.calls)
	}

	if len(events.published) != 1 {
		t.Fatalf("published %d events, want 1", len(events.published))
	}
	if events.published[0].subject != messagequeue.SubjectTenantProvisioned {
		t.Errorf("subject = %q", events.published[0].subject)
	}
	var ev map[string]any
	if err := json.Unmarshal(events.published[0].data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev["database"] != "acme_1700000000000" {
		t.Errorf("event = %v", ev)
	}
	if ev["url"] != "https://acme.odoo.smarterbot.store" {
		t.Errorf("event url = %v", ev["url"])
	}
}

func TestProvisionAlreadyActive(t *testing.T) {
	store := &mockStore{tenants: map[string]*tenant.Tenant{"acme": activeTenant("acme")}}
	svc := NewTenantService(store, &mockProvisioner{}, nil)

	if _, err := svc.Provision(context.Background(), "id-acme"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestProvisionDatabaseFailureLeavesTenantPreparing(t *testing.T) {
	store := &mockStore{
		tenants: map[string]*tenant.Tenant{"acme": preparingTenant("acme")},
		provisionFn: func(context.Context, string) (*tenant.Tenant, error) {
			t.Error("store must not be marked provisioned after a database failure")
			return nil, nil
		},
	}
	prov := &mockProvisioner{err: errors.New("duplicate_database failed")}
	svc := NewTenantService(store, prov, nil)

	if _, err := svc.Provision(context.Background(), "id-acme"); err == nil {
		t.Fatal("expected provisioning failure")
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	created := preparingTenant("acme")
	store := &mockStore{
		createFn: func(context.Context, tenant.CreateRequest) (*tenant.Tenant, error) {
			return created, nil
		},
	}
	events := &mockPublisher{err: errors.New("nats down")}
	svc := NewTenantService(store, nil, events)

	if _, err := svc.Create(context.Background(), tenant.CreateRequest{Name: "acme", Email: "a@b.cl"}); err != nil {
		t.Fatalf("publish failure must be best-effort: %v", err)
	}
}
