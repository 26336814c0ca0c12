package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/events"
)

type memoryOrders struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (m *memoryOrders) Insert(_ context.Context, order domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	return nil
}

func (m *memoryOrders) FindByID(context.Context, string) (domain.Order, error) {
	return domain.Order{}, errors.New("not implemented")
}

func (m *memoryOrders) List(context.Context, int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...), nil
}

type memoryContacts struct {
	contacts []domain.Contact
}

func (m *memoryContacts) Insert(_ context.Context, contact domain.Contact) error {
	m.contacts = append(m.contacts, contact)
	return nil
}

func (m *memoryContacts) List(context.Context, int) ([]domain.Contact, error) {
	return m.contacts, nil
}

type recordingPublisher struct {
	events []events.OrderPlaced
	err    error
}

func (r *recordingPublisher) PublishOrderPlaced(_ context.Context, event events.OrderPlaced) (string, error) {
	r.events = append(r.events, event)
	return "msg-1", r.err
}

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

func TestPlaceOrder(t *testing.T) {
	repo := &memoryOrders{}
	publisher := &recordingPublisher{}
	svc, err := NewOrderService(OrderServiceDeps{
		Repository:  repo,
		Events:      publisher,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "01ORDER" },
	})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []domain.LineItem{{ID: "seo", Name: "SEO", Price: 299, Quantity: 2}},
		Total: 598,
		Name:  " Ada ",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "01ORDER", order.ID)
	assert.Equal(t, "Ada", order.Name)
	assert.Equal(t, fixedNow, order.CreatedAt)
	require.Len(t, repo.orders, 1)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.OrderPlaced{OrderID: "01ORDER", Email: "ada@example.com", Total: 598, ItemCount: 1, PlacedAt: fixedNow}, publisher.events[0])
}

func TestPlaceOrderMissingInformation(t *testing.T) {
	repo := &memoryOrders{}
	svc, err := NewOrderService(OrderServiceDeps{Repository: repo})
	require.NoError(t, err)

	items := []domain.LineItem{{ID: "a", Name: "A", Price: 1, Quantity: 1}}
	for _, cmd := range []PlaceOrderCommand{
		{Name: "Ada", Email: "ada@example.com"},
		{Items: items, Email: "ada@example.com"},
		{Items: items, Name: "Ada", Email: "  "},
	} {
		_, err := svc.PlaceOrder(context.Background(), cmd)
		assert.ErrorIs(t, err, ErrOrderMissingInformation)
	}
	assert.Empty(t, repo.orders)
}

func TestPlaceOrderSurvivesEventFailure(t *testing.T) {
	var logged []string
	svc, err := NewOrderService(OrderServiceDeps{
		Repository: &memoryOrders{},
		Events:     &recordingPublisher{err: errors.New("topic not found")},
		Logger:     func(_ context.Context, event string, _ map[string]any) { logged = append(logged, event) },
	})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []domain.LineItem{{ID: "a", Name: "A", Price: 1, Quantity: 1}}, Name: "Ada", Email: "a@b.c",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"order.placed", "order.event.failed"}, logged)
}

func TestPlaceOrderRepositoryError(t *testing.T) {
	boom := errors.New("disk full")
	svc, err := NewOrderService(OrderServiceDeps{Repository: &memoryOrders{err: boom}})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), PlaceOrderCommand{
		Items: []domain.LineItem{{ID: "a", Name: "A", Price: 1, Quantity: 1}}, Name: "Ada", Email: "a@b.c",
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewServicesRequireRepository(t *testing.T) {
	_, err := NewOrderService(OrderServiceDeps{})
	assert.Error(t, err)
	_, err = NewContactService(ContactServiceDeps{})
	assert.Error(t, err)
}

func TestSubmitContact(t *testing.T) {
	repo := &memoryContacts{}
	svc, err := NewContactService(ContactServiceDeps{
		Repository:  repo,
		Clock:       func() time.Time { return fixedNow },
		IDGenerator: func() string { return "01CONTACT" },
	})
	require.NoError(t, err)

	contact, err := svc.SubmitContact(context.Background(), SubmitContactCommand{
		Name:    "Grace <b>Hopper</b>",
		Email:   "grace@example.com",
		Message: "Tom & Jerry need <script>alert(1)</script>a quote",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", contact.Name)
	assert.Equal(t, "Tom & Jerry need a quote", contact.Message)
	assert.Equal(t, "01CONTACT", contact.ID)

	listed, err := svc.ListContacts(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSubmitContactMissingFields(t *testing.T) {
	svc, err := NewContactService(ContactServiceDeps{Repository: &memoryContacts{}})
	require.NoError(t, err)

	for _, cmd := range []SubmitContactCommand{
		{Email: "e", Message: "m"},
		{Name: "n", Message: "m"},
		{Name: "n", Email: "e", Message: "<p></p>"},
	} {
		_, err := svc.SubmitContact(context.Background(), cmd)
		assert.ErrorIs(t, err, ErrContactMissingFields)
	}
}
