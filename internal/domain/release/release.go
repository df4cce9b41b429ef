// Package release defines the release-update domain model and the
// dotted-numeric version ordering used to decide whether an update exists.
package release

import (
	"strconv"
	"strings"
	"time"
)

// Info is the update status of one tracked service.
type Info struct {
	Service        string     `json:"service"`
	CurrentVersion string     `json:"currentVersion"`
	LatestVersion  string     `json:"latestVersion,omitempty"`
	HasUpdate      bool       `json:"hasUpdate"`
	ReleaseURL     string     `json:"releaseUrl,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	ReleaseNotes   string     `json:"releaseNotes,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Release is the latest published release of an upstream project.
type Release struct {
	TagName     string    `json:"tag_name"`
	HTMLURL     string    `json:"html_url"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	TarballURL  string    `json:"tarball_url"`
}

// Version returns the bare version from the release tag. Both "v2.1.0"
// and monorepo-style "n8n@2.1.0" tags reduce to "2.1.0".
func (r *Release) Version() string {
	tag := r.TagName
	if i := strings.LastIndex(tag, "@"); i >= 0 {
		tag = tag[i+1:]
	}
	return strings.TrimPrefix(tag, "v")
}

// Compare orders two dotted-numeric version strings. Missing trailing
// components count as 0, so "1.2" == "1.2.0". Returns -1, 0, or 1.
func Compare(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")

	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		var na, nb int
		if i < len(pa) {
			na, _ = strconv.Atoi(pa[i])
		}
		if i < len(pb) {
			nb, _ = strconv.Atoi(pb[i])
		}
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
	}
	return 0
}
