package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
)

const tenantColumns = `id, name, email, phone, rut, plan, products, services_enabled, status, created_at, provisioned_at`

// scannable abstracts pgx.Row and pgx.Rows for the shared scan helper.
type scannable interface {
	Scan(dest ...any) error
}

func scanTenant(row scannable) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var productsJSON, servicesJSON []byte
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.RUT, &t.Plan,
		&productsJSON, &servicesJSON, &t.Status, &t.CreatedAt, &t.ProvisionedAt)
	if err != nil {
		return nil, err
	}
	if productsJSON != nil {
		_ = json.Unmarshal(productsJSON, &t.Products)
	}
	if servicesJSON != nil {
		_ = json.Unmarshal(servicesJSON, &t.ServicesEnabled)
	}
	return &t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) GetTenantByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get tenant %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tenant %q: %w", name, err)
	}
	return t, nil
}

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	products, err := json.Marshal(req.Products)
	if err != nil {
		return nil, fmt.Errorf("marshal products: %w", err)
	}

	t, err := scanTenant(s.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, email, phone, rut, plan, products, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+tenantColumns,
		uuid.NewString(), req.Name, req.Email, req.Phone, req.RUT, req.Plan,
		products, tenant.StatusPreparing))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("create tenant %q: %w", req.Name, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create tenant %q: %w", req.Name, err)
	}
	return t, nil
}

func (s *Store) ProvisionTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`UPDATE tenants SET status = $2, provisioned_at = now()
		 WHERE id = $1
		 RETURNING `+tenantColumns,
		id, tenant.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("provision tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("provision tenant %s: %w", id, err)
	}
	return t, nil
}
