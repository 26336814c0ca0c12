package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/observability"
)

const defaultRefresh = 5 * time.Second

// Source yields the catalog a request should see.
type Source interface {
	Snapshot(ctx context.Context) *Catalog
}

// Lister is the read side of the service repository.
type Lister interface {
	List(ctx context.Context) ([]domain.Service, error)
}

// Live serves the catalog stored in a repository, reloading it at most once
// per refresh interval. When a reload fails the last good catalog is kept.
type Live struct {
	repo     Lister
	refresh  time.Duration
	now      func() time.Time
	logger   observability.EventLogger
	mu       sync.Mutex
	current  *Catalog
	loadedAt time.Time
}

// LiveOption configures a Live source.
type LiveOption func(*Live)

// WithRefresh sets how long a loaded catalog is served before reloading.
func WithRefresh(d time.Duration) LiveOption {
	return func(l *Live) {
		if d >= 0 {
			l.refresh = d
		}
	}
}

// WithLiveLogger sets the logger for reload failures.
func WithLiveLogger(logger observability.EventLogger) LiveOption {
	return func(l *Live) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) LiveOption {
	return func(l *Live) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLive returns a source backed by repo. fallback is served until the
// first successful load.
func NewLive(repo Lister, fallback *Catalog, opts ...LiveOption) *Live {
	l := &Live{
		repo:    repo,
		refresh: defaultRefresh,
		now:     time.Now,
		logger:  func(context.Context, string, map[string]any) {},
		current: fallback,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.current == nil {
		l.current = &Catalog{bySlug: map[string]int{}}
	}
	return l
}

// Snapshot returns the current catalog, reloading it when stale.
func (l *Live) Snapshot(ctx context.Context) *Catalog {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.loadedAt.IsZero() && now.Sub(l.loadedAt) < l.refresh {
		return l.current
	}
	l.loadedAt = now

	services, err := l.repo.List(ctx)
	if err == nil {
		var c *Catalog
		if c, err = New(services); err == nil {
			l.current = c
			return c
		}
	}
	l.logger(ctx, "catalog.reload.failed", map[string]any{"error": err.Error()})
	return l.current
}
