package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

func TestDependencyHealthRepository(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "sqlite", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	})
	require.NoError(t, err)

	report, err := repo.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusDegraded, report.Status)
	assert.Equal(t, domain.HealthStatusOK, report.Checks["sqlite"].Status)
	assert.Equal(t, "connection refused", report.Checks["redis"].Detail)
}

func TestDependencyHealthRepositoryTimeout(t *testing.T) {
	repo, err := NewDependencyHealthRepository([]DependencyCheck{
		{Name: "firestore", Timeout: 10 * time.Millisecond, Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	})
	require.NoError(t, err)

	report, err := repo.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusError, report.Status)
	assert.Equal(t, "timeout", report.Checks["firestore"].Detail)
}

func TestDependencyHealthRepositoryValidates(t *testing.T) {
	_, err := NewDependencyHealthRepository([]DependencyCheck{{Name: "x"}})
	assert.Error(t, err)

	repo, err := NewDependencyHealthRepository(nil)
	require.NoError(t, err)
	report, err := repo.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HealthStatusOK, report.Status)
}
