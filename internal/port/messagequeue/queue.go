// Package messagequeue defines the event publishing port (interface).
package messagequeue

import "context"

// Publisher is the port interface for tenant lifecycle event publishing.
// Publishing is best-effort: callers log failures and continue.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the connection.
	Close() error
}

// Subjects for tenant lifecycle events.
const (
	SubjectTenantCreated     = "tenants.created"
	SubjectTenantProvisioned = "tenants.provisioned"
)
