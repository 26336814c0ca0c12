package payments

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// StaticPayer is reported for every approval by the static widget.
var StaticPayer = Payer{Name: "Test Buyer", Email: "buyer@example.com"}

const defaultStaticCapacity = 4096

type staticOrder struct {
	amount   Amount
	visitor  string
	placedAs string
}

// StaticWidget approves every order it created. Used for local development.
// It remembers at most capacity orders; the oldest are forgotten first.
type StaticWidget struct {
	mu       sync.Mutex
	orders   map[string]*staticOrder
	order    []string
	capacity int
	now      func() time.Time
}

// NewStaticWidget returns an empty static widget.
func NewStaticWidget() *StaticWidget {
	return &StaticWidget{
		orders:   make(map[string]*staticOrder),
		capacity: defaultStaticCapacity,
		now:      time.Now,
	}
}

// Button implements Widget.
func (w *StaticWidget) Button(amount Amount) Button {
	return buttonFor("static", "", amount)
}

// CreateOrder implements Widget.
func (w *StaticWidget) CreateOrder(_ context.Context, visitorID string, amount Amount) (OrderRef, error) {
	if amount.Minor <= 0 {
		return OrderRef{}, ErrInvalidAmount
	}
	id := "pay_" + strings.ToLower(ulid.MustNew(ulid.Timestamp(w.now()), rand.Reader).String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.orders[id] = &staticOrder{amount: amount, visitor: visitorID}
	w.order = append(w.order, id)
	for len(w.order) > w.capacity {
		delete(w.orders, w.order[0])
		w.order = w.order[1:]
	}
	return OrderRef{ID: id, Provider: "static", Amount: amount}, nil
}

// Approve implements Widget.
func (w *StaticWidget) Approve(_ context.Context, orderID string) (Payer, error) {
	w.mu.Lock()
	order, ok := w.orders[orderID]
	var snapshot staticOrder
	if ok {
		snapshot = *order
	}
	w.mu.Unlock()
	switch {
	case !ok:
		return Payer{}, ErrOrderNotFound
	case snapshot.placedAs != "":
		return Payer{}, ErrConsumed
	}
	payer := StaticPayer
	payer.OrderID = orderID
	payer.Status = "succeeded"
	payer.Amount = snapshot.amount
	payer.Visitor = snapshot.visitor
	return payer, nil
}

// Consume implements Widget.
func (w *StaticWidget) Consume(_ context.Context, orderID, placedOrderID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, ok := w.orders[orderID]
	switch {
	case !ok:
		return ErrOrderNotFound
	case order.placedAs != "":
		return ErrConsumed
	}
	order.placedAs = placedOrderID
	return nil
}
