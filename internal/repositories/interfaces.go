package repositories

import (
	"context"
	"errors"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("repositories: not found")
	// ErrConflict is returned when an insert collides with an existing key.
	ErrConflict = errors.New("repositories: already exists")
)

// OrderRepository persists orders accepted by the order endpoint.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, limit int) ([]domain.Order, error)
}

// ContactRepository persists contact/quote requests.
type ContactRepository interface {
	Insert(ctx context.Context, contact domain.Contact) error
	List(ctx context.Context, limit int) ([]domain.Contact, error)
}

// ServiceRepository manages the services offered in the catalog. List keeps
// insertion order. Seed only writes when the table is empty and reports how
// many rows it inserted.
type ServiceRepository interface {
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, slug string) (domain.Service, error)
	Insert(ctx context.Context, service domain.Service) error
	Update(ctx context.Context, service domain.Service) error
	Delete(ctx context.Context, slug string) error
	Seed(ctx context.Context, services []domain.Service) (int, error)
}

// HealthRepository probes runtime dependencies for readiness.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
