package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/events"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

var errOrderRepositoryRequired = errors.New("order service: repository is required")

// ErrOrderMissingInformation indicates items, name or email was not supplied.
var ErrOrderMissingInformation = errors.New("order service: missing required information")

// OrderServiceDeps wires the order service.
type OrderServiceDeps struct {
	Repository  repositories.OrderRepository
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type orderService struct {
	repo    repositories.OrderRepository
	events  events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
	newID   func() string
}

// NewOrderService constructs an OrderService enforcing dependency validation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Repository == nil {
		return nil, errOrderRepositoryRequired
	}
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &orderService{
		repo:    deps.Repository,
		events:  publisher,
		metrics: deps.Metrics,
		now:     func() time.Time { return clock().UTC() },
		logger:  logger,
		newID:   idGen,
	}, nil
}

// PlaceOrder stores the order as submitted and announces it. Only the
// presence of items, name and email is checked.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	name := strings.TrimSpace(cmd.Name)
	email := strings.TrimSpace(cmd.Email)
	if len(cmd.Items) == 0 || name == "" || email == "" {
		s.metrics.OrderRejected()
		return domain.Order{}, ErrOrderMissingInformation
	}

	order := domain.Order{
		ID:        s.newID(),
		Items:     append([]domain.LineItem(nil), cmd.Items...),
		Total:     cmd.Total,
		Name:      name,
		Email:     email,
		Message:   cmd.Message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("order service: store order: %w", err)
	}
	s.metrics.OrderPlaced()
	s.logger(ctx, "order.placed", map[string]any{"orderId": order.ID, "items": len(order.Items), "total": order.Total})

	if _, err := s.events.PublishOrderPlaced(ctx, events.OrderPlaced{
		OrderID:   order.ID,
		Email:     order.Email,
		Total:     order.Total,
		ItemCount: len(order.Items),
		PlacedAt:  order.CreatedAt,
	}); err != nil {
		s.logger(ctx, "order.event.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	}
	return order, nil
}

// ListOrders returns the most recent orders first.
func (s *orderService) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.repo.List(ctx, limit)
}
