package services

import (
	"context"

	"github.com/ignitoosolutions/ignito1/internal/domain"
)

// PlaceOrderCommand is the decoded body of an order submission.
type PlaceOrderCommand struct {
	Items   []domain.LineItem
	Total   float64
	Name    string
	Email   string
	Message string
}

// SubmitContactCommand is the decoded body of a contact submission.
type SubmitContactCommand struct {
	Name    string
	Email   string
	Message string
}

// OrderService accepts and lists orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
}

// ContactService accepts and lists contact requests.
type ContactService interface {
	SubmitContact(ctx context.Context, cmd SubmitContactCommand) (domain.Contact, error)
	ListContacts(ctx context.Context, limit int) ([]domain.Contact, error)
}
