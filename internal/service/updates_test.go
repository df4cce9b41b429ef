package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/release"
)

type mockFetcher struct {
	mu       sync.Mutex
	releases map[string]*release.Release // by repo
	errs     map[string]error
	calls    map[string]int
}

func (m *mockFetcher) LatestRelease(_ context.Context, repo string) (*release.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[repo]++
	if err, ok := m.errs[repo]; ok {
		return nil, err
	}
	if rel, ok := m.releases[repo]; ok {
		return rel, nil
	}
	return nil, errors.New("no release configured")
}

func (m *mockFetcher) callCount(repo string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[repo]
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func updatesConfig() config.Updates {
	return config.Updates{
		Services: map[string]config.TrackedService{
			"n8n":  {Repo: "n8n-io/n8n", CurrentVersion: "2.0.3"},
			"odoo": {Repo: "odoo/odoo", CurrentVersion: "17.0"},
		},
		FetchTimeout: 5 * time.Second,
		CacheTTL:     time.Minute,
	}
}

func TestCheckAllReportsUpdates(t *testing.T) {
	fetcher := &mockFetcher{releases: map[string]*release.Release{
		"n8n-io/n8n": {TagName: "n8n@2.1.0", HTMLURL: "https://github.com/n8n-io/n8n/releases"},
		"odoo/odoo":  {TagName: "17.0"},
	}}
	svc := NewUpdateService(updatesConfig(), fetcher, nil)

	infos := svc.CheckAll(context.Background())
	if len(infos) != 2 {
		t.Fatalf("got %d infos", len(infos))
	}

	n8n, odoo := infos["n8n"], infos["odoo"]
	if n8n.Service != "n8n" || !n8n.HasUpdate || n8n.LatestVersion != "2.1.0" {
		t.Errorf("n8n = %+v", n8n)
	}
	if odoo.Service != "odoo" || odoo.HasUpdate {
		t.Errorf("odoo = %+v", odoo)
	}
}

func TestCheckAllIsolatesFailures(t *testing.T) {
	fetcher := &mockFetcher{
		releases: map[string]*release.Release{"odoo/odoo": {TagName: "18.0"}},
		errs:     map[string]error{"n8n-io/n8n": errors.New("rate limited")},
	}
	svc := NewUpdateService(updatesConfig(), fetcher, nil)

	infos := svc.CheckAll(context.Background())
	if len(infos) != 2 {
		t.Fatalf("got %d infos", len(infos))
	}

	n8n, odoo := infos["n8n"], infos["odoo"]
	if n8n.Error == "" || n8n.HasUpdate {
		t.Errorf("failed service must carry error and no update: %+v", n8n)
	}
	if odoo.Error != "" || !odoo.HasUpdate {
		t.Errorf("healthy service affected by sibling failure: %+v", odoo)
	}
}

func TestCheckUnknownService(t *testing.T) {
	svc := NewUpdateService(updatesConfig(), &mockFetcher{}, nil)
	if _, err := svc.Check(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCheckUsesCache(t *testing.T) {
	fetcher := &mockFetcher{releases: map[string]*release.Release{
		"n8n-io/n8n": {TagName: "v2.1.0"},
	}}
	svc := NewUpdateService(updatesConfig(), fetcher, newMemoryCache())

	first, err := svc.Check(context.Background(), "n8n")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Check(context.Background(), "n8n")
	if err != nil {
		t.Fatal(err)
	}
	if fetcher.callCount("n8n-io/n8n") != 1 {
		t.Errorf("fetch count = %d, want 1 (second check served from cache)", fetcher.callCount("n8n-io/n8n"))
	}
	if first.LatestVersion != second.LatestVersion {
		t.Errorf("cache changed the answer: %+v vs %+v", first, second)
	}
}

func TestCheckDoesNotCacheFailures(t *testing.T) {
	fetcher := &mockFetcher{errs: map[string]error{"n8n-io/n8n": errors.New("timeout")}}
	svc := NewUpdateService(updatesConfig(), fetcher, newMemoryCache())

	for range 2 {
		if _, err := svc.Check(context.Background(), "n8n"); err != nil {
			t.Fatal(err)
		}
	}
	if fetcher.callCount("n8n-io/n8n") != 2 {
		t.Errorf("fetch count = %d, want 2 (failures must retry)", fetcher.callCount("n8n-io/n8n"))
	}
}
