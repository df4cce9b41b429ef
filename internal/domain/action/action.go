// Package action defines the gated-dispatch vocabulary: action kinds,
// the result envelope, and the state machine for rejections.
package action

import (
	"encoding/json"
	"strings"
)

// State classifies the outcome of a dispatched action.
type State string

const (
	// StateComplete is the only success state.
	StateComplete State = "COMPLETE"
	// StateError is an execution failure inside a handler or remote call.
	StateError State = "ERROR"
	// StateSafeBlock is a deliberate policy rejection: inactive subscription,
	// missing provider secrets, or an unsupported action. Not an error.
	StateSafeBlock State = "SAFE-BLOCK"
	// StateForbidden is an authorization failure with valid authentication.
	StateForbidden State = "FORBIDDEN"
	// StateUnauthorized is an authentication failure.
	StateUnauthorized State = "UNAUTHORIZED"
)

// Kind is a closed set of supported actions. Unsupported wire names never
// map to a Kind, so the dispatcher cannot reach a handler for them.
type Kind string

const (
	// KindOdooCreateTenant provisions a dedicated Odoo database for a tenant.
	KindOdooCreateTenant Kind = "odoo.create_tenant"
)

// ParseKind maps a wire action name to a Kind. The second return is false
// for any name outside the closed set.
func ParseKind(name string) (Kind, bool) {
	switch Kind(name) {
	case KindOdooCreateTenant:
		return KindOdooCreateTenant, true
	}
	return "", false
}

// Provider returns the namespace segment before the first '.' of an action
// name, identifying the external system it targets.
func Provider(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Request is the transient contract for one gated action execution.
type Request struct {
	Tenant  string          `json:"tenant"`
	Action  string          `json:"action"`
	Context json.RawMessage `json:"context,omitempty"`
}

// Result is the normalized envelope returned by the dispatcher.
// Invariant: Success is true if and only if State is StateComplete.
type Result struct {
	Success bool   `json:"success"`
	State   State  `json:"state"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Complete returns a success envelope carrying the handler payload.
func Complete(payload any) Result {
	return Result{Success: true, State: StateComplete, Result: payload}
}

// Blocked returns a SAFE-BLOCK envelope with the policy reason.
func Blocked(reason string) Result {
	return Result{Success: false, State: StateSafeBlock, Error: reason}
}

// Failed returns an ERROR envelope with the execution failure message.
func Failed(msg string) Result {
	return Result{Success: false, State: StateError, Error: msg}
}
