package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/n8n-io/n8n/releases/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tag_name": "n8n@2.1.0",
			"html_url": "https://github.com/n8n-io/n8n/releases/tag/n8n%402.1.0",
			"body": "notes",
			"published_at": "2026-08-01T12:00:00Z",
			"tarball_url": "https://api.github.com/repos/n8n-io/n8n/tarball/n8n%402.1.0"
		}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.SetBaseURL(srv.URL)

	rel, err := c.LatestRelease(context.Background(), "n8n-io/n8n")
	if err != nil {
		t.Fatalf("latest release: %v", err)
	}
	if rel.TagName != "n8n@2.1.0" {
		t.Errorf("tag = %q", rel.TagName)
	}
	if rel.PublishedAt.IsZero() {
		t.Error("published_at not parsed")
	}
}

func TestLatestReleaseAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.SetBaseURL(srv.URL)

	if _, err := c.LatestRelease(context.Background(), "nobody/nothing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestLatestReleaseMissingTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.SetBaseURL(srv.URL)

	if _, err := c.LatestRelease(context.Background(), "a/b"); err == nil {
		t.Fatal("expected error for release without a tag")
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	c.SetBaseURL(srv.URL)
	c.SetToken("ghp_test")

	if _, err := c.LatestRelease(context.Background(), "a/b"); err != nil {
		t.Fatalf("latest release: %v", err)
	}
	if got != "Bearer ghp_test" {
		t.Errorf("authorization = %q", got)
	}
}
