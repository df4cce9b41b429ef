package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
	"github.com/smarterbot/smartermcp/internal/port/database"
	"github.com/smarterbot/smartermcp/internal/port/messagequeue"
)

// DatabaseProvisioner creates the dedicated backing database for a tenant.
type DatabaseProvisioner interface {
	CreateTenantDatabase(ctx context.Context, tenantName string) (string, error)
	TenantURL(tenantName string) string
}

// TenantService manages the tenant lifecycle: registration in the
// `preparing` state and promotion to `active` once provisioned.
type TenantService struct {
	store       database.Store
	provisioner DatabaseProvisioner    // nil disables database creation
	events      messagequeue.Publisher // nil disables event publishing
}

// NewTenantService creates a tenant service. Provisioner and publisher are
// optional.
func NewTenantService(store database.Store, provisioner DatabaseProvisioner, events messagequeue.Publisher) *TenantService {
	return &TenantService{store: store, provisioner: provisioner, events: events}
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// Get returns one tenant by id.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// Create registers a new tenant in the preparing state and emits the
// created event.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("tenant name is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("tenant email is required: %w", domain.ErrValidation)
	}

	t, err := s.store.CreateTenant(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	slog.Info("tenant created", "id", t.ID, "name", t.Name, "plan", t.Plan)
	s.publish(ctx, messagequeue.SubjectTenantCreated, t, "")
	return t, nil
}

// Provision creates the tenant's backing database when a provisioner is
// configured, marks the tenant active, and emits the provisioned event.
func (s *TenantService) Provision(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if t.Active() {
		return nil, fmt.Errorf("tenant %q is already provisioned: %w", t.Name, domain.ErrConflict)
	}

	var dbName string
	if s.provisioner != nil {
		dbName, err = s.provisioner.CreateTenantDatabase(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("provision database: %w", err)
		}
		slog.Info("tenant database created", "tenant", t.Name, "database", dbName)
	}

	t, err = s.store.ProvisionTenant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark provisioned: %w", err)
	}

	slog.Info("tenant provisioned", "id", t.ID, "name", t.Name)
	s.publish(ctx, messagequeue.SubjectTenantProvisioned, t, dbName)
	return t, nil
}

// tenantEvent is the JSON payload published on tenant lifecycle subjects.
type tenantEvent struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Database string    `json:"database,omitempty"`
	URL      string    `json:"url,omitempty"`
	At       time.Time `json:"at"`
}

// publish emits a lifecycle event. Publishing is best-effort: failures are
// logged and never fail the request.
func (s *TenantService) publish(ctx context.Context, subject string, t *tenant.Tenant, dbName string) {
	if s.events == nil {
		return
	}

	ev := tenantEvent{
		ID:       t.ID,
		Name:     t.Name,
		Status:   string(t.Status),
		Database: dbName,
		At:       time.Now().UTC(),
	}
	if s.provisioner != nil && subject == messagequeue.SubjectTenantProvisioned {
		ev.URL = s.provisioner.TenantURL(t.Name)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal tenant event", "subject", subject, "error", err)
		return
	}
	if err := s.events.Publish(ctx, subject, data); err != nil {
		slog.Warn("publish tenant event failed", "subject", subject, "tenant", t.Name, "error", err)
	}
}
