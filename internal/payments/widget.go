// Package payments provides the payment-button widget embedded on the
// checkout page. The widget is told the amount to charge; it never computes it.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ignitoosolutions/ignito1/internal/format"
)

// Routes the checkout page's button calls back into.
const (
	CreateOrderPath = "/checkout/payment/orders"
	approvePathFmt  = "/checkout/payment/orders/%s/approve"
)

var (
	// ErrInvalidAmount is returned when asked to charge nothing.
	ErrInvalidAmount = errors.New("payments: amount must be positive")
	// ErrOrderNotFound is returned when approving an unknown payment order.
	ErrOrderNotFound = errors.New("payments: order not found")
	// ErrNotApproved is returned when the processor has not authorised the payment.
	ErrNotApproved = errors.New("payments: payment not approved")
	// ErrConsumed is returned when a payment has already placed an order.
	ErrConsumed = errors.New("payments: payment already used")
)

// Amount is the single authoritative charge amount. Value keeps full
// precision; Minor is the amount in cents every display and charge uses.
type Amount struct {
	Value    float64
	Minor    int64
	Currency string
}

// NewAmount rounds value to minor units once.
func NewAmount(value float64, currency string) Amount {
	return Amount{
		Value:    value,
		Minor:    format.ToMinor(value),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
	}
}

// Display formats the amount with two decimals, e.g. "$12.50".
func (a Amount) Display() string {
	return format.Currency(a.Minor, a.Currency)
}

// Button is what the checkout page embeds.
type Button struct {
	Provider       string
	Label          string
	Amount         Amount
	PublishableKey string
	CreateURL      string
}

// OrderRef identifies a payment order created for an amount.
type OrderRef struct {
	ID           string
	Provider     string
	ClientSecret string
	Amount       Amount
}

// Payer carries the details reported when a payment is approved. Amount is
// what the processor actually authorised and Visitor is who created the order.
type Payer struct {
	OrderID string
	Name    string
	Email   string
	Status  string
	Amount  Amount
	Visitor string
}

// Widget is the externally supplied payment collaborator. A payment order
// belongs to the visitor that created it and places at most one order.
type Widget interface {
	Button(amount Amount) Button
	CreateOrder(ctx context.Context, visitorID string, amount Amount) (OrderRef, error)
	Approve(ctx context.Context, orderID string) (Payer, error)
	Consume(ctx context.Context, orderID, placedOrderID string) error
}

// ApprovePath is the route the button posts to once the payer approves.
func ApprovePath(orderID string) string {
	return fmt.Sprintf(approvePathFmt, url.PathEscape(orderID))
}

// Logger is the logging hook widgets accept.
type Logger func(ctx context.Context, event string, fields map[string]any)

func buttonFor(provider, publishableKey string, amount Amount) Button {
	return Button{
		Provider:       provider,
		Label:          "Pay " + amount.Display(),
		Amount:         amount,
		PublishableKey: publishableKey,
		CreateURL:      CreateOrderPath,
	}
}
