package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/domain"
	"github.com/smarterbot/smartermcp/internal/domain/release"
	"github.com/smarterbot/smartermcp/internal/port/cache"
	"github.com/smarterbot/smartermcp/internal/port/releasefeed"
)

// UpdateService compares the tracked services' running versions against
// their latest upstream releases.
type UpdateService struct {
	services     map[string]config.TrackedService
	fetcher      releasefeed.Fetcher
	cache        cache.Cache // nil disables caching
	fetchTimeout time.Duration
	cacheTTL     time.Duration
}

// NewUpdateService creates an update service. Cache is optional.
func NewUpdateService(cfg config.Updates, fetcher releasefeed.Fetcher, c cache.Cache) *UpdateService {
	return &UpdateService{
		services:     cfg.Services,
		fetcher:      fetcher,
		cache:        c,
		fetchTimeout: cfg.FetchTimeout,
		cacheTTL:     cfg.CacheTTL,
	}
}

// CheckAll fetches the latest release for every tracked service
// concurrently, keyed by service name. A fetch failure marks only that
// service; the rest of the batch is unaffected.
func (s *UpdateService) CheckAll(ctx context.Context) map[string]release.Info {
	var mu sync.Mutex
	infos := make(map[string]release.Info, len(s.services))

	g, ctx := errgroup.WithContext(ctx)
	for name, svc := range s.services {
		g.Go(func() error {
			info := s.check(ctx, name, svc)
			mu.Lock()
			infos[name] = info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return infos
}

// Check fetches the latest release for one tracked service. Unknown service
// names return domain.ErrNotFound.
func (s *UpdateService) Check(ctx context.Context, name string) (release.Info, error) {
	svc, ok := s.services[name]
	if !ok {
		return release.Info{}, fmt.Errorf("service %q is not tracked: %w", name, domain.ErrNotFound)
	}
	return s.check(ctx, name, svc), nil
}

func (s *UpdateService) check(ctx context.Context, name string, svc config.TrackedService) release.Info {
	if info, ok := s.cached(ctx, name); ok {
		return info
	}

	info := release.Info{
		Service:        name,
		CurrentVersion: svc.CurrentVersion,
	}

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	rel, err := s.fetcher.LatestRelease(fetchCtx, svc.Repo)
	if err != nil {
		slog.Warn("release check failed", "service", name, "repo", svc.Repo, "error", err)
		info.Error = err.Error()
		return info
	}

	latest := rel.Version()
	info.LatestVersion = latest
	info.HasUpdate = release.Compare(svc.CurrentVersion, latest) < 0
	info.ReleaseURL = rel.HTMLURL
	info.ReleaseNotes = rel.Body
	if !rel.PublishedAt.IsZero() {
		at := rel.PublishedAt
		info.PublishedAt = &at
	}

	s.store(ctx, name, info)
	return info
}

// cached returns a previously stored successful check.
func (s *UpdateService) cached(ctx context.Context, name string) (release.Info, bool) {
	if s.cache == nil {
		return release.Info{}, false
	}
	data, found, err := s.cache.Get(ctx, cacheKey(name))
	if err != nil || !found {
		return release.Info{}, false
	}
	var info release.Info
	if err := json.Unmarshal(data, &info); err != nil {
		return release.Info{}, false
	}
	return info, true
}

// store caches a successful check. Failures are not cached so the next
// request retries the upstream.
func (s *UpdateService) store(ctx context.Context, name string, info release.Info) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(name), data, s.cacheTTL); err != nil {
		slog.Warn("cache release info failed", "service", name, "error", err)
	}
}

func cacheKey(name string) string {
	return "release:" + name
}
