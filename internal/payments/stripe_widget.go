package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Update(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// PaymentIntent metadata keys binding an intent to a visitor and, once
// placed, to the order it paid for.
const (
	metadataVisitor = "ignito_visitor"
	metadataOrder   = "ignito_order_id"
)

// StripeConfig configures the Stripe widget.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	Backends       *stripe.Backends
	Logger         Logger

	intents stripePaymentIntentAPI
}

// StripeWidget charges through Stripe PaymentIntents.
type StripeWidget struct {
	intents        stripePaymentIntentAPI
	publishableKey string
	logger         Logger
}

// NewStripeWidget constructs the Stripe widget.
func NewStripeWidget(cfg StripeConfig) (*StripeWidget, error) {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" && cfg.intents == nil {
		return nil, errors.New("stripe: secret key is required")
	}

	intents := cfg.intents
	if intents == nil {
		intents = client.New(key, cfg.Backends).PaymentIntents
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &StripeWidget{
		intents:        intents,
		publishableKey: strings.TrimSpace(cfg.PublishableKey),
		logger:         logger,
	}, nil
}

// Button implements Widget.
func (w *StripeWidget) Button(amount Amount) Button {
	return buttonFor("stripe", w.publishableKey, amount)
}

// CreateOrder creates a PaymentIntent for exactly amount.Minor.
func (w *StripeWidget) CreateOrder(ctx context.Context, visitorID string, amount Amount) (OrderRef, error) {
	if amount.Minor <= 0 {
		return OrderRef{}, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Minor),
		Currency: stripe.String(strings.ToLower(amount.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataVisitor, visitorID)

	intent, err := w.intents.New(params)
	if err != nil {
		return OrderRef{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	w.logger(ctx, "payments.stripe.intent.created", map[string]any{
		"paymentIntent": intent.ID,
		"amount":        amount.Minor,
	})
	return OrderRef{
		ID:           intent.ID,
		Provider:     "stripe",
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

// Approve looks up the PaymentIntent and reports the payer from its latest charge.
func (w *StripeWidget) Approve(ctx context.Context, orderID string) (Payer, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Payer{}, ErrOrderNotFound
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	intent, err := w.intents.Get(orderID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return Payer{}, ErrOrderNotFound
		}
		return Payer{}, fmt.Errorf("stripe: lookup payment intent: %w", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture, stripe.PaymentIntentStatusProcessing:
	default:
		return Payer{}, ErrNotApproved
	}
	if intent.Metadata[metadataOrder] != "" {
		return Payer{}, ErrConsumed
	}

	currency := strings.ToUpper(string(intent.Currency))
	payer := Payer{
		OrderID: intent.ID,
		Status:  string(intent.Status),
		Amount:  Amount{Value: float64(intent.Amount) / 100, Minor: intent.Amount, Currency: currency},
		Visitor: intent.Metadata[metadataVisitor],
	}
	if charge := intent.LatestCharge; charge != nil && charge.BillingDetails != nil {
		payer.Name = charge.BillingDetails.Name
		payer.Email = charge.BillingDetails.Email
	}
	if payer.Email == "" {
		payer.Email = intent.ReceiptEmail
	}
	w.logger(ctx, "payments.stripe.intent.approved", map[string]any{
		"paymentIntent": intent.ID,
		"status":        intent.Status,
	})
	return payer, nil
}

// Consume records placedOrderID on the intent so later approvals see it as used.
func (w *StripeWidget) Consume(ctx context.Context, orderID, placedOrderID string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddMetadata(metadataOrder, placedOrderID)
	if _, err := w.intents.Update(orderID, params); err != nil {
		return fmt.Errorf("stripe: mark payment intent used: %w", err)
	}
	w.logger(ctx, "payments.stripe.intent.consumed", map[string]any{
		"paymentIntent": orderID,
		"orderId":       placedOrderID,
	})
	return nil
}
