package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/smarterbot/smartermcp/internal/domain/credential"
	"github.com/smarterbot/smartermcp/internal/middleware"
	"github.com/smarterbot/smartermcp/internal/service"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, tokens *service.TokenService) {
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Tenant lifecycle
		r.Get("/tenants", h.ListTenants)
		r.Post("/tenants", h.CreateTenant)
		r.Post("/tenants/{id}/provision", h.ProvisionTenant)

		// Gated dispatch
		r.Post("/mcp/execute", h.ExecuteAction)

		// Connector operations require a bearer credential carrying the
		// odoo execution scope.
		r.With(
			middleware.Auth(tokens),
			middleware.RequirePermissions(credential.PermOdooExecute),
		).Post("/mcp/odoo", h.ExecuteOdoo)

		// Credentials
		r.Post("/token/generate", h.GenerateToken)

		// Release updates
		r.Get("/updates", h.ListUpdates)
		r.Get("/updates/{service}", h.GetUpdate)
	})
}
