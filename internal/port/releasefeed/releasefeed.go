// Package releasefeed defines the release metadata fetcher port (interface).
package releasefeed

import (
	"context"

	"github.com/smarterbot/smartermcp/internal/domain/release"
)

// Fetcher retrieves the latest published release of an upstream project.
type Fetcher interface {
	// LatestRelease fetches release metadata for a repo in "owner/name" form.
	LatestRelease(ctx context.Context, repo string) (*release.Release, error)
}
