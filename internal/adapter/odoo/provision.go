package odoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smarterbot/smartermcp/internal/config"
)

// Provisioner creates dedicated Odoo databases for new tenants by
// duplicating a master template database.
type Provisioner struct {
	client        *Client
	masterDB      string
	adminPassword string
	baseDomain    string
	now           func() time.Time // for testing
}

// NewProvisioner creates a Provisioner sharing the given client's transport.
func NewProvisioner(client *Client, cfg config.Odoo) *Provisioner {
	return &Provisioner{
		client:        client,
		masterDB:      cfg.MasterDB,
		adminPassword: cfg.AdminPassword,
		baseDomain:    cfg.BaseDomain,
		now:           time.Now,
	}
}

// CreateTenantDatabase duplicates the master database into a new database
// named after the tenant, returning the created database name.
func (p *Provisioner) CreateTenantDatabase(ctx context.Context, tenantName string) (string, error) {
	if tenantName == "" {
		return "", fmt.Errorf("tenant name is required")
	}

	dbName := fmt.Sprintf("%s_%d", Subdomain(tenantName), p.now().UnixMilli())
	raw, err := p.client.call(ctx, "db", "duplicate_database",
		[]any{p.masterDB, dbName, p.adminPassword, tenantName})
	if err != nil {
		return "", fmt.Errorf("duplicate database for %q: %w", tenantName, err)
	}

	// Some Odoo versions echo the created name back; trust our own when not.
	created := strings.Trim(string(raw), `"`)
	if created == "" || created == "null" || created == "true" {
		created = dbName
	}
	return created, nil
}

// TenantURL returns the public URL a tenant reaches its instance at.
func (p *Provisioner) TenantURL(tenantName string) string {
	return "https://" + Subdomain(tenantName) + "." + p.baseDomain
}

// Subdomain normalizes a business name into a DNS label: lowercase with
// whitespace removed.
func Subdomain(tenantName string) string {
	return strings.ToLower(strings.Join(strings.Fields(tenantName), ""))
}
