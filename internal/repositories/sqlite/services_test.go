package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

func seedServices() []domain.Service {
	return []domain.Service{
		{Slug: "market-research", Name: "Market Research", Description: "Insights", PriceDisplay: "Starting from $2,999", Price: 2999, Image: "market_research.png"},
		{Slug: "marketing", Name: "Marketing", Description: "Campaigns", PriceDisplay: "Design Your Bundle", Price: 1499, Image: "lead_generation.png"},
	}
}

func TestServicesSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Services()

	n, err := repo.Seed(ctx, seedServices())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Seed(ctx, []domain.Service{{Slug: "other", Name: "Other", Image: "x.png"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, seedServices(), list)
}

func TestServicesSeedRefillsEmptiedTable(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Services()

	_, err := repo.Seed(ctx, seedServices()[:1])
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "market-research"))

	// An emptied table is seeded again, matching a fresh install.
	n, err := repo.Seed(ctx, seedServices())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestServicesInsertAppendsAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Services()
	_, err := repo.Seed(ctx, seedServices())
	require.NoError(t, err)

	audit := domain.Service{Slug: "audit", Name: "Audit", Description: "Review", PriceDisplay: "$250", Price: 250, Image: "placeholder.png"}
	require.NoError(t, repo.Insert(ctx, audit))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, audit, list[2])

	err = repo.Insert(ctx, audit)
	assert.ErrorIs(t, err, repositories.ErrConflict)
}

func TestServicesUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Services()
	_, err := repo.Seed(ctx, seedServices())
	require.NoError(t, err)

	svc, err := repo.Get(ctx, "marketing")
	require.NoError(t, err)
	svc.Price = 1799
	svc.PriceDisplay = "$1,799"
	require.NoError(t, repo.Update(ctx, svc))

	got, err := repo.Get(ctx, "marketing")
	require.NoError(t, err)
	assert.Equal(t, 1799.0, got.Price)
	assert.Equal(t, "$1,799", got.PriceDisplay)

	require.NoError(t, repo.Delete(ctx, "marketing"))
	_, err = repo.Get(ctx, "marketing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "marketing"), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, domain.Service{Slug: "ghost", Name: "Ghost"}), repositories.ErrNotFound)
}
