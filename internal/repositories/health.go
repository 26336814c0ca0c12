package repositories

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

const defaultDependencyTimeout = 1500 * time.Millisecond

// DependencyCheck describes a dependency probe executed during readiness checks.
type DependencyCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(context.Context) error
}

// DependencyHealthOption customises the dependency-backed health repository.
type DependencyHealthOption func(*dependencyHealthRepository)

// WithDependencyClock injects a custom clock primarily for tests.
func WithDependencyClock(clock func() time.Time) DependencyHealthOption {
	return func(repo *dependencyHealthRepository) {
		if clock != nil {
			repo.now = clock
		}
	}
}

type dependencyHealthRepository struct {
	checks []DependencyCheck
	now    func() time.Time
}

var _ HealthRepository = (*dependencyHealthRepository)(nil)

// NewDependencyHealthRepository runs checks concurrently on every Collect.
// Checks with a blank name or nil func are rejected up front.
func NewDependencyHealthRepository(checks []DependencyCheck, opts ...DependencyHealthOption) (HealthRepository, error) {
	for _, check := range checks {
		if strings.TrimSpace(check.Name) == "" || check.Check == nil {
			return nil, errors.New("health repository: dependency check requires a name and a func")
		}
	}
	repo := &dependencyHealthRepository{
		checks: append([]DependencyCheck(nil), checks...),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// Collect probes every dependency in parallel. Any error-level probe makes
// the report an error; otherwise any failure degrades it.
func (r *dependencyHealthRepository) Collect(ctx context.Context) (domain.HealthReport, error) {
	probed := make([]domain.HealthCheck, len(r.checks))
	var wg sync.WaitGroup
	wg.Add(len(r.checks))
	for i := range r.checks {
		go func() {
			defer wg.Done()
			probed[i] = r.probe(ctx, r.checks[i])
		}()
	}
	wg.Wait()

	report := domain.HealthReport{
		Status:      domain.HealthStatusOK,
		Checks:      make(map[string]domain.HealthCheck, len(r.checks)),
		GeneratedAt: r.now(),
	}
	for i, check := range r.checks {
		report.Checks[check.Name] = probed[i]
		report.Status = worse(report.Status, probed[i].Status)
	}
	return report, nil
}

func (r *dependencyHealthRepository) probe(ctx context.Context, check DependencyCheck) domain.HealthCheck {
	timeout := check.Timeout
	if timeout <= 0 {
		timeout = defaultDependencyTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := r.now()
	err := check.Check(probeCtx)
	finished := r.now()

	status, detail := domain.HealthStatusOK, "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		status, detail = domain.HealthStatusError, "timeout"
	case errors.Is(err, context.Canceled):
		status, detail = domain.HealthStatusError, "cancelled"
	default:
		status, detail = domain.HealthStatusDegraded, err.Error()
	}
	return domain.HealthCheck{Status: status, Detail: detail, Latency: finished.Sub(started), CheckedAt: finished}
}

func worse(a, b domain.HealthStatus) domain.HealthStatus {
	rank := func(s domain.HealthStatus) int {
		switch s {
		case domain.HealthStatusError:
			return 2
		case domain.HealthStatusDegraded:
			return 1
		}
		return 0
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
