package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smarterbot/smartermcp/internal/adapter/otel"
	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/action"
	"github.com/smarterbot/smartermcp/internal/secrets"
)

// Handler executes one action kind. The returned payload is wrapped into a
// COMPLETE envelope; a returned error becomes an ERROR envelope.
type Handler func(ctx context.Context, req action.Request) (any, error)

// Dispatcher runs the gated execution pipeline: tenant active, provider
// secrets present, action kind known, then the registered handler.
type Dispatcher struct {
	tenants  *TenantGate
	secrets  *secrets.Gate
	handlers map[action.Kind]Handler
	metrics  *otel.Metrics
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher(tenants *TenantGate, gate *secrets.Gate) *Dispatcher {
	return &Dispatcher{
		tenants:  tenants,
		secrets:  gate,
		handlers: make(map[action.Kind]Handler),
	}
}

// Register binds a handler to an action kind. Later registrations replace
// earlier ones.
func (d *Dispatcher) Register(kind action.Kind, h Handler) {
	d.handlers[kind] = h
}

// SetMetrics attaches dispatch outcome instruments.
func (d *Dispatcher) SetMetrics(m *otel.Metrics) {
	d.metrics = m
}

// Dispatch runs one action through the gates. The error return is non-nil
// only for request validation (domain.ErrValidation), an unknown tenant
// (domain.ErrNotFound), or a store failure; the envelope describes the
// outcome either way.
func (d *Dispatcher) Dispatch(ctx context.Context, req action.Request) (action.Result, error) {
	start := time.Now()
	if d.metrics != nil {
		d.metrics.ActionsDispatched.Add(ctx, 1)
		defer func() {
			d.metrics.DispatchDuration.Record(ctx, time.Since(start).Seconds())
		}()
	}

	if req.Tenant == "" || req.Action == "" {
		return action.Blocked("tenant and action are required"), domain.ErrValidation
	}

	status, err := d.tenants.CheckActive(ctx, req.Tenant)
	if err != nil {
		d.countFailed(ctx)
		return action.Failed("tenant lookup failed"), err
	}
	if !status.Found {
		d.countBlocked(ctx)
		return action.Blocked(fmt.Sprintf("tenant %q not found", req.Tenant)), domain.ErrNotFound
	}
	if !status.Active {
		d.countBlocked(ctx)
		slog.Info("action blocked: tenant inactive", "tenant", req.Tenant, "action", req.Action)
		return action.Blocked(fmt.Sprintf("tenant %q has no active subscription", req.Tenant)), nil
	}

	provider := action.Provider(req.Action)
	if !d.secrets.HasSecrets(provider) {
		d.countBlocked(ctx)
		slog.Warn("action blocked: provider secrets missing", "tenant", req.Tenant, "provider", provider)
		return action.Blocked(fmt.Sprintf("provider %q is not configured", provider)), nil
	}

	kind, ok := action.ParseKind(req.Action)
	if !ok {
		d.countBlocked(ctx)
		return action.Blocked(fmt.Sprintf("unsupported action %q", req.Action)), nil
	}

	handler, ok := d.handlers[kind]
	if !ok {
		d.countBlocked(ctx)
		return action.Blocked(fmt.Sprintf("no handler for action %q", req.Action)), nil
	}

	res := d.run(ctx, handler, req)
	if res.Success {
		if d.metrics != nil {
			d.metrics.ActionsCompleted.Add(ctx, 1)
		}
	} else {
		d.countFailed(ctx)
	}
	return res, nil
}

// run executes a handler, converting panics and errors into ERROR envelopes.
func (d *Dispatcher) run(ctx context.Context, h Handler, req action.Request) (res action.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("action handler panicked", "tenant", req.Tenant, "action", req.Action, "panic", r)
			res = action.Failed(fmt.Sprintf("internal failure executing %q", req.Action))
		}
	}()

	payload, err := h(ctx, req)
	if err != nil {
		slog.Error("action handler failed", "tenant", req.Tenant, "action", req.Action, "error", err)
		return action.Failed(err.Error())
	}
	return action.Complete(payload)
}

func (d *Dispatcher) countBlocked(ctx context.Context) {
	if d.metrics != nil {
		d.metrics.ActionsBlocked.Add(ctx, 1)
	}
}

func (d *Dispatcher) countFailed(ctx context.Context) {
	if d.metrics != nil {
		d.metrics.ActionsFailed.Add(ctx, 1)
	}
}
