package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/smarterbot/smartermcp/internal/adapter/odoo"
	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/action"
	"github.com/smarterbot/smartermcp/internal/domain/credential"
	"github.com/smarterbot/smartermcp/internal/domain/tenant"
	"github.com/smarterbot/smartermcp/internal/middleware"
	"github.com/smarterbot/smartermcp/internal/secrets"
	"github.com/smarterbot/smartermcp/internal/service"
)

// Handlers bundles the services the HTTP surface exposes.
type Handlers struct {
	Version string

	Tenants    *service.TenantService
	Gate       *service.TenantGate
	Dispatcher *service.Dispatcher
	Connector  *odoo.Client
	Secrets    *secrets.Gate
	Tokens     *service.TokenService
	Updates    *service.UpdateService
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "smartermcp",
		"version": h.Version,
	})
}

// ListTenants returns all registered tenants.
func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Tenants.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

// CreateTenant registers a new tenant in the preparing state.
func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r, defaultBodyLimit)
	if !ok {
		return
	}

	t, err := h.Tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ProvisionTenant promotes a tenant to active, creating its backing
// database when configured.
func (h *Handlers) ProvisionTenant(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if !requireField(w, id, "tenant id") {
		return
	}

	t, err := h.Tenants.Provision(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ExecuteAction runs a gated action through the dispatcher and maps the
// envelope state to an HTTP status.
func (h *Handlers) ExecuteAction(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[action.Request](w, r, defaultBodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.Tenant, "tenant") || !requireField(w, req.Action, "action") {
		return
	}

	res, err := h.Dispatcher.Dispatch(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, res.Error)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, res)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		writeJSON(w, statusForState(res.State), res)
	}
}

// odooRequest is the body of POST /api/mcp/odoo.
type odooRequest struct {
	Tenant    string          `json:"tenant"`
	Operation string          `json:"operation"`
	Context   json.RawMessage `json:"context,omitempty"`
}

// ExecuteOdoo runs one connector operation for the authenticated tenant.
func (h *Handlers) ExecuteOdoo(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[odooRequest](w, r, defaultBodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.Tenant, "tenant") || !requireField(w, req.Operation, "operation") {
		return
	}

	// A credential for one tenant must not act as another.
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Tenant != req.Tenant {
		writeJSON(w, http.StatusForbidden, action.Result{
			State: action.StateForbidden,
			Error: "credential does not match tenant",
		})
		return
	}

	status, err := h.Gate.CheckActive(r.Context(), req.Tenant)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !status.Found {
		writeJSON(w, http.StatusNotFound, action.Blocked("tenant not found"))
		return
	}
	if !status.Active {
		writeJSON(w, http.StatusForbidden, action.Blocked("tenant has no active subscription"))
		return
	}
	if !h.Secrets.HasSecrets("odoo") {
		writeJSON(w, http.StatusForbidden, action.Blocked(`provider "odoo" is not configured`))
		return
	}

	res, known := h.Connector.Run(r.Context(), req.Operation, req.Context)
	if !known {
		writeJSON(w, http.StatusBadRequest, action.Blocked("unsupported operation "+req.Operation))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// tokenRequest is the body of POST /api/token/generate.
type tokenRequest struct {
	Tenant      string   `json:"tenant"`
	UserID      string   `json:"userId"`
	Permissions []string `json:"permissions,omitempty"`
}

// GenerateToken issues a credential for an active tenant.
func (h *Handlers) GenerateToken(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tokenRequest](w, r, defaultBodyLimit)
	if !ok {
		return
	}
	if !requireField(w, req.Tenant, "tenant") || !requireField(w, req.UserID, "userId") {
		return
	}

	status, err := h.Gate.CheckActive(r.Context(), req.Tenant)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !status.Found {
		writeJSON(w, http.StatusNotFound, action.Blocked("tenant not found"))
		return
	}
	if !status.Active {
		writeJSON(w, http.StatusForbidden, action.Blocked("tenant has no active subscription"))
		return
	}

	perms := req.Permissions
	if len(perms) == 0 {
		perms = []string{credential.PermOdooExecute}
	}

	token, err := h.Tokens.Issue(req.Tenant, req.UserID, perms)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	claims, err := h.Tokens.Validate(token)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     token,
		"expiresAt": time.Unix(claims.Expiry, 0).UTC().Format(time.RFC3339),
	})
}

// ListUpdates checks every tracked service for newer releases.
func (h *Handlers) ListUpdates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Updates.CheckAll(r.Context()))
}

// GetUpdate checks one tracked service for a newer release.
func (h *Handlers) GetUpdate(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "service")
	info, err := h.Updates.Check(r.Context(), name)
	if err != nil {
		writeDomainError(w, err, "service not tracked")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// statusForState maps an envelope state to its HTTP status.
func statusForState(s action.State) int {
	switch s {
	case action.StateComplete:
		return http.StatusOK
	case action.StateSafeBlock, action.StateForbidden:
		return http.StatusForbidden
	case action.StateUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
