package catalog

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	services := c.All()
	require.Len(t, services, 7)
	assert.Equal(t, "Market Research", services[0].Name)
	assert.Equal(t, "Lead Generation", services[6].Name)

	svc, ok := c.Lookup("business-strategy")
	require.True(t, ok)
	assert.Equal(t, "$2,999", svc.PriceDisplay)
	assert.Equal(t, 2999.0, svc.Price)

	_, ok = c.Lookup("time-travel")
	assert.False(t, ok)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "services: [",
		"missing slug":   "services:\n  - name: X\n    price: 1\n",
		"missing name":   "services:\n  - slug: x\n    price: 1\n",
		"negative price": "services:\n  - slug: x\n    name: X\n    price: -1\n",
		"duplicate slug": "services:\n  - slug: x\n    name: X\n  - slug: x\n    name: Y\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services:\n  - slug: audit\n    name: Audit\n    price: 250\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.All(), 1)

	c, err = Load("")
	require.NoError(t, err)
	assert.Len(t, c.All(), 7)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalizeDefaultsImageAndBoundsPrice(t *testing.T) {
	svc, err := Normalize(domain.Service{Slug: " audit ", Name: " Audit ", Price: 250})
	require.NoError(t, err)
	assert.Equal(t, "audit", svc.Slug)
	assert.Equal(t, "Audit", svc.Name)
	assert.Equal(t, DefaultImage, svc.Image)

	for _, price := range []float64{-1, math.NaN(), math.Inf(1), cart.MaxPrice + 1} {
		_, err := Normalize(domain.Service{Slug: "x", Name: "X", Price: price})
		assert.ErrorIs(t, err, ErrInvalidCatalog, "price %v", price)
	}
}

type stubLister struct {
	services []domain.Service
	err      error
	calls    int
}

func (s *stubLister) List(context.Context) ([]domain.Service, error) {
	s.calls++
	return s.services, s.err
}

func TestLiveReloadsAfterRefresh(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubLister{services: []domain.Service{{Slug: "audit", Name: "Audit", Price: 250}}}
	live := NewLive(repo, Default(), WithRefresh(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	c := live.Snapshot(ctx)
	require.Len(t, c.All(), 1)
	svc, ok := c.Lookup("audit")
	require.True(t, ok)
	assert.Equal(t, DefaultImage, svc.Image)

	repo.services = append(repo.services, domain.Service{Slug: "seo", Name: "SEO", Price: 99})
	assert.Len(t, live.Snapshot(ctx).All(), 1)
	assert.Equal(t, 1, repo.calls)

	now = now.Add(time.Minute)
	assert.Len(t, live.Snapshot(ctx).All(), 2)
	assert.Equal(t, 2, repo.calls)
}

func TestLiveKeepsLastGoodCatalogOnFailure(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubLister{err: errors.New("disk gone")}
	var events []string
	live := NewLive(repo, Default(),
		WithRefresh(time.Second),
		WithClock(func() time.Time { return now }),
		WithLiveLogger(func(_ context.Context, event string, _ map[string]any) { events = append(events, event) }),
	)
	ctx := context.Background()

	assert.Len(t, live.Snapshot(ctx).All(), 7, "fallback served before the first load")

	repo.err = nil
	repo.services = []domain.Service{{Slug: "audit", Name: "Audit", Price: 250}}
	now = now.Add(time.Second)
	assert.Len(t, live.Snapshot(ctx).All(), 1)

	repo.services = []domain.Service{{Slug: "dup", Name: "A"}, {Slug: "dup", Name: "B"}}
	now = now.Add(time.Second)
	assert.Len(t, live.Snapshot(ctx).All(), 1, "invalid rows keep the previous catalog")
	assert.Equal(t, []string{"catalog.reload.failed", "catalog.reload.failed"}, events)
}
